// Soundwave - Media Discovery and Playlist Platform
// Copyright 2026 Soundwave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soundwavehq/soundwave

// Package validation provides request validation built on go-playground/validator.
// A single validator instance is shared process-wide; it caches struct metadata
// and is safe for concurrent use.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/soundwavehq/soundwave/internal/models"
)

var (
	validate *validator.Validate
	once     sync.Once
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validator returns the shared validator instance, creating it on first use.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Tag names in error messages come from the json tag, not the Go
		// field name.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation("mediatype", validateMediaType)
		_ = validate.RegisterValidation("slug", validateSlug)
	})
	return validate
}

func validateMediaType(fl validator.FieldLevel) bool {
	return models.MediaType(fl.Field().String()).Valid()
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// RequestValidationError wraps validator errors for one request payload.
type RequestValidationError struct {
	Fields []FieldError
}

// FieldError describes one failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ToAPIError converts the validation failure to the API error envelope.
func (e *RequestValidationError) ToAPIError() *models.APIError {
	return &models.APIError{
		Code:    models.ErrCodeValidation,
		Message: "request validation failed",
		Details: e.Fields,
	}
}

// ValidateStruct validates a request payload and converts any failure to a
// RequestValidationError.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &RequestValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters or items", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters or items", fe.Field(), fe.Param())
	case "mediatype":
		return fmt.Sprintf("%s must be one of: movie, music", fe.Field())
	case "slug":
		return fmt.Sprintf("%s must be a lowercase hyphenated slug", fe.Field())
	default:
		return fmt.Sprintf("%s failed validation rule %q", fe.Field(), fe.Tag())
	}
}
