package entity

import (
	"io"
)

// ReviewForm - сырые поля формы (multipart или urlencoded) до разбора
type ReviewForm struct {
	Name           string `form:"name"`
	RatingGuinness string `form:"ratingGuinness"`
	RatingPour     string `form:"ratingPour"`
	RatingService  string `form:"ratingService"`
	Smoking        string `form:"smoking"`
	Price          string `form:"price"`
	Comment        string `form:"comment"`
}

// ReviewDraft - типизированные поля отзыва после ParseReviewForm
type ReviewDraft struct {
	Name           string `json:"name" validate:"required,max=200"`
	RatingGuinness int    `json:"ratingGuinness" validate:"rating"`
	RatingPour     int    `json:"ratingPour" validate:"rating"`
	RatingService  int    `json:"ratingService" validate:"rating"`
	Smoking        bool   `json:"smoking"`
	Price          int    `json:"price" validate:"min=0"`
	Comment        string `json:"comment" validate:"max=2000"`
}

// ImageUpload - единственный файл из поля "image"
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// MessageResponse - ответ на create/update/delete
type MessageResponse struct {
	Message string  `json:"message"`
	Review  *Review `json:"review,omitempty"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
