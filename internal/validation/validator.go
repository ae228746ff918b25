// Fieldhub - IoT Project and Device Registry
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldhub

// Package validation provides entity validation using go-playground/validator v10.
//
// A thread-safe singleton validator carries the custom `nomarkup` rule
// that rejects values resembling script or markup injection. Entity
// structs declare rules via `validate` tags and report field names via
// `label` tags, so violations surface with wire-level field identifiers:
//
//	type Project struct {
//	    Name string `validate:"required,max=255,nomarkup" label:"hproject-name"`
//	}
//
// Validation failures are returned as *EntityValidationError carrying the
// full list of violations for the call; validation never partial-applies.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/fieldhub/internal/models"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// markupPatterns match inputs resembling script or markup injection.
// Kept deliberately broad: any tag-like sequence, script URLs, and inline
// event handlers are all rejected.
var markupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*[a-z!]`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon[a-z]+\s*=`),
	regexp.MustCompile(`(?i)&#x?[0-9a-f]+;?`),
	regexp.MustCompile(`(?i)expression\s*\(`),
}

// ContainsMarkup reports whether the value matches any injection pattern.
func ContainsMarkup(value string) bool {
	for _, re := range markupPatterns {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// getValidator returns the singleton validator, initializing it on first use.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Surface `label` tags as field names so violations carry the
		// wire-level identifiers asserted by clients.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			label := fld.Tag.Get("label")
			if label == "" || label == "-" {
				return fld.Name
			}
			return label
		})

		// nomarkup rejects script/markup injection patterns.
		_ = validate.RegisterValidation("nomarkup", func(fl validator.FieldLevel) bool {
			return !ContainsMarkup(fl.Field().String())
		})
	})
	return validate
}

// EntityValidationError carries every field violation for one call.
type EntityValidationError struct {
	violations []models.FieldViolation
}

// Error implements the error interface.
func (e *EntityValidationError) Error() string {
	if len(e.violations) == 0 {
		return "validation failed"
	}

	messages := make([]string, len(e.violations))
	for i, v := range e.violations {
		messages[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return strings.Join(messages, "; ")
}

// Violations returns the list of field violations.
func (e *EntityValidationError) Violations() []models.FieldViolation {
	return e.violations
}

// ValidateEntity validates an entity struct against its `validate` tags.
// Returns nil when valid, or *EntityValidationError with the full list of
// violations.
func ValidateEntity(entity interface{}) error {
	err := getValidator().Struct(entity)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: a nil or non-struct value reached us.
		return &EntityValidationError{violations: []models.FieldViolation{
			{Field: "", Message: err.Error()},
		}}
	}

	violations := make([]models.FieldViolation, 0, len(validationErrs))
	for _, fe := range validationErrs {
		violations = append(violations, models.FieldViolation{
			Field:        fe.Field(),
			Message:      violationMessage(fe),
			InvalidValue: fe.Value(),
		})
	}

	return &EntityValidationError{violations: violations}
}

// violationMessage maps a validator tag failure to a stable message.
func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be null or empty"
	case "max":
		return fmt.Sprintf("length must be between 0 and %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "nomarkup":
		return "must not contain script or markup"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
