package entity

import "time"

const (
	MinRating = 1
	MaxRating = 10

	// DateLayout - формат поля date (ISO календарная дата)
	DateLayout = "2006-01-02"
)

// Review - одно посещение паба с оценками пинты
type Review struct {
	ID             string `json:"id" gorm:"primaryKey;type:varchar(64)"`                      // присваивается хранилищем
	Date           string `json:"date" gorm:"type:varchar(10);not null;index:idx_reviews_date"` // YYYY-MM-DD, не меняется после создания
	Name           string `json:"name" gorm:"not null"`                                         // название заведения, ключ группировки
	RatingGuinness int    `json:"ratingGuinness" gorm:"not null"`
	RatingPour     int    `json:"ratingPour" gorm:"not null"`
	RatingService  int    `json:"ratingService" gorm:"not null"`
	Smoking        bool   `json:"smoking" gorm:"not null"`
	Price          int    `json:"price" gorm:"not null"` // 0 = цена неизвестна
	Comment        string `json:"comment"`
	ImagePath      string `json:"imagePath,omitempty"` // /uploads/<имя>
}

func (Review) TableName() string {
	return "reviews"
}

// ApplyDraft переносит изменяемые поля; id, date и imagePath не трогает
func (r *Review) ApplyDraft(d *ReviewDraft) {
	r.Name = d.Name
	r.RatingGuinness = d.RatingGuinness
	r.RatingPour = d.RatingPour
	r.RatingService = d.RatingService
	r.Smoking = d.Smoking
	r.Price = d.Price
	r.Comment = d.Comment
}

// ReviewView - отзыв с производными метриками, которые не хранятся
type ReviewView struct {
	Review
	Score      float64 `json:"score"`      // среднее трёх оценок, 1 знак
	ValueIndex *int    `json:"valueIndex"` // null, если цена неизвестна
}

// Place - группа посещений с одинаковым (trim, lower) названием
type Place struct {
	Key          string       `json:"key"`
	Name         string       `json:"name"`
	Latest       ReviewView   `json:"latest"`
	Visits       []ReviewView `json:"visits"` // date desc
	VisitCount   int          `json:"visitCount"`
	AverageScore float64      `json:"averageScore"`
}

// Summary - данные страницы "топ"
type Summary struct {
	TopPicks    []ReviewView `json:"topPicks"`
	TotalPlaces int          `json:"totalPlaces"`
	TotalVisits int          `json:"totalVisits"`
	TopScore    *float64     `json:"topScore"`
	BestValue   *ReviewView  `json:"bestValue"`
	Cheapest    *ReviewView  `json:"cheapest"`
}

const (
	EventReviewCreated = "REVIEW_CREATED"
	EventReviewUpdated = "REVIEW_UPDATED"
	EventReviewDeleted = "REVIEW_DELETED"
)

type ReviewEvent struct {
	EventType string    `json:"event_type"`
	ReviewID  string    `json:"review_id"`
	Name      string    `json:"name,omitempty"`
	Score     float64   `json:"score,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
