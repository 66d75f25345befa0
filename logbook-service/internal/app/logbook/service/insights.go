package service

import (
	"math"
	"sort"
	"strings"

	"stoutlog/logbook-service/internal/app/logbook/entity"
)

const (
	topPicksLimit   = 3
	valueIndexScale = 50
)

// Score - среднее трёх под-оценок без округления
func Score(r *entity.Review) float64 {
	return float64(r.RatingGuinness+r.RatingPour+r.RatingService) / 3
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// ComposeView считает отображаемые метрики; valueIndex считается от неокругленной оценки
func ComposeView(r entity.Review) entity.ReviewView {
	score := Score(&r)
	view := entity.ReviewView{
		Review: r,
		Score:  round1(score),
	}

	if r.Price > 0 && score > 0 {
		idx := int(math.Round(score / float64(r.Price) * valueIndexScale))
		view.ValueIndex = &idx
	}

	return view
}

func ComposeViews(reviews []entity.Review) []entity.ReviewView {
	views := make([]entity.ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, ComposeView(r))
	}
	return views
}

// PlaceKey - ключ группировки: trim + нижний регистр
func PlaceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GroupPlaces собирает посещения одного заведения.
// Посещения внутри места: date desc, при равной дате id desc.
// Места: по дате последнего посещения desc, затем по ключу.
func GroupPlaces(reviews []entity.Review) []entity.Place {
	byKey := make(map[string][]entity.ReviewView)
	keys := []string{}

	for _, r := range reviews {
		key := PlaceKey(r.Name)
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], ComposeView(r))
	}

	places := make([]entity.Place, 0, len(keys))
	for _, key := range keys {
		visits := byKey[key]
		sort.SliceStable(visits, func(i, j int) bool {
			if visits[i].Date != visits[j].Date {
				return visits[i].Date > visits[j].Date
			}
			return visits[i].ID > visits[j].ID
		})

		total := 0.0
		for i := range visits {
			total += Score(&visits[i].Review)
		}

		places = append(places, entity.Place{
			Key:          key,
			Name:         strings.TrimSpace(visits[0].Name),
			Latest:       visits[0],
			Visits:       visits,
			VisitCount:   len(visits),
			AverageScore: round1(total / float64(len(visits))),
		})
	}

	sort.SliceStable(places, func(i, j int) bool {
		if places[i].Latest.Date != places[j].Latest.Date {
			return places[i].Latest.Date > places[j].Latest.Date
		}
		return places[i].Key < places[j].Key
	})

	return places
}

// FilterPlaces оставляет места, чей ключ содержит запрос; пустой запрос оставляет все
func FilterPlaces(places []entity.Place, query string) []entity.Place {
	q := PlaceKey(query)
	if q == "" {
		return places
	}

	filtered := make([]entity.Place, 0, len(places))
	for _, p := range places {
		if strings.Contains(p.Key, q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Summarize строит сводку. Кандидаты просматриваются по убыванию оценки
// (стабильно), поэтому при равенстве побеждает первый в этом порядке.
func Summarize(reviews []entity.Review) entity.Summary {
	views := ComposeViews(reviews)
	sort.SliceStable(views, func(i, j int) bool {
		return Score(&views[i].Review) > Score(&views[j].Review)
	})

	summary := entity.Summary{
		TopPicks:    views[:min(topPicksLimit, len(views))],
		TotalVisits: len(views),
	}

	keys := make(map[string]struct{})
	bestRatio := -1.0
	for i := range views {
		v := &views[i]
		keys[PlaceKey(v.Name)] = struct{}{}

		if v.Price <= 0 {
			continue
		}

		score := Score(&v.Review)
		if score > 0 {
			if ratio := score / float64(v.Price); ratio > bestRatio {
				bestRatio = ratio
				summary.BestValue = v
			}
		}

		if summary.Cheapest == nil || v.Price < summary.Cheapest.Price {
			summary.Cheapest = v
		}
	}
	summary.TotalPlaces = len(keys)

	if len(views) > 0 {
		top := views[0].Score
		summary.TopScore = &top
	}

	return summary
}
