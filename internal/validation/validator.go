// VoxLink Insights - Live Chat Admin Analytics & Metrics Engine
// Copyright 2026 VoxLink
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/voxlink/insights

// Package validation provides struct validation via go-playground/validator
// v10: a thread-safe singleton instance, a custom rfc3339date validator for
// query date bounds, and translation of field errors into readable messages.
//
//	if err := validation.ValidateStruct(&input); err != nil {
//	    return err
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed validation with structured detail.
type FieldError struct {
	field   string
	tag     string
	param   string
	message string
}

// Field returns the struct field that failed.
func (e *FieldError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string { return e.tag }

// Param returns the tag parameter (e.g. "100" for "max=100").
func (e *FieldError) Param() string { return e.param }

func (e *FieldError) Error() string { return e.message }

// InputError is the combined validation failure for one input struct.
type InputError struct {
	fields []FieldError
}

// Fields returns the individual field failures.
func (e *InputError) Fields() []FieldError { return e.fields }

func (e *InputError) Error() string {
	if len(e.fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.fields))
	for i := range e.fields {
		messages[i] = e.fields[i].message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator, initializing it on first
// use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// rfc3339date accepts a plain date or a full RFC 3339 timestamp,
		// matching what the analytics range parser takes.
		err := validate.RegisterValidation("rfc3339date", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			if _, err := time.Parse("2006-01-02", value); err == nil {
				return true
			}
			_, err := time.Parse(time.RFC3339, value)
			return err == nil
		})
		if err != nil {
			panic(fmt.Sprintf("failed to register rfc3339date validator: %v", err))
		}
	})
	return validate
}

// ValidateStruct validates s against its validate tags. Returns nil on
// success, *InputError otherwise.
func ValidateStruct(s interface{}) *InputError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &InputError{fields: []FieldError{{
			field:   "unknown",
			tag:     "unknown",
			message: err.Error(),
		}}}
	}

	fields := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = FieldError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			message: translateError(fe),
		}
	}
	return &InputError{fields: fields}
}

var plainTemplates = map[string]string{
	"required":    "%s is required",
	"email":       "%s must be a valid email address",
	"rfc3339date": "%s must be a date (2006-01-02) or RFC 3339 timestamp",
}

var paramTemplates = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if template, ok := plainTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := paramTemplates[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	isString := fe.Kind().String() == "string"
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
