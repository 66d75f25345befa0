package entity

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	FieldName           = "name"
	FieldRatingGuinness = "ratingGuinness"
	FieldRatingPour     = "ratingPour"
	FieldRatingService  = "ratingService"
	FieldPrice          = "price"
	FieldComment        = "comment"
	FieldImage          = "image"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= MinRating && n <= MaxRating
	})
	return v
}

// ValidationError собирает ошибки по полям формы
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "invalid review: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// ParseReviewForm - единственная точка приведения полей формы к типам.
// Одинаково используется при создании и при обновлении отзыва.
func ParseReviewForm(form *ReviewForm) (*ReviewDraft, error) {
	verr := &ValidationError{}

	draft := &ReviewDraft{
		Name:    strings.TrimSpace(form.Name),
		Comment: strings.TrimSpace(form.Comment),
		Smoking: form.Smoking == "true",
	}

	draft.RatingGuinness = parseRating(verr, FieldRatingGuinness, form.RatingGuinness)
	draft.RatingPour = parseRating(verr, FieldRatingPour, form.RatingPour)
	draft.RatingService = parseRating(verr, FieldRatingService, form.RatingService)

	if price := strings.TrimSpace(form.Price); price != "" {
		n, err := strconv.Atoi(price)
		if err != nil {
			verr.add(FieldPrice, "must be a whole number")
		}
		draft.Price = n
	}

	if err := validate.Struct(draft); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("failed to validate review: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), describe(fe))
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return draft, nil
}

func parseRating(verr *ValidationError, field, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		verr.add(field, "is required")
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.add(field, "must be a whole number")
		return 0
	}
	return n
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "rating":
		if fe.Value().(int) < MinRating {
			return "must be at least " + strconv.Itoa(MinRating)
		}
		return "must be at most " + strconv.Itoa(MaxRating)
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	default:
		return "is " + fe.Tag()
	}
}
