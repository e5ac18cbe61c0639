// Popfeast - Movie and Series Favorites with Offline Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/popfeast

// Package validation wraps a singleton go-playground/validator instance used
// by both HTTP surfaces to check favorite requests before they reach the
// sync engine or the database.
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondError(w, http.StatusBadRequest, verr.Message())
//	    return
//	}
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Messages returned to HTTP clients. They are part of the remote wire
// contract and match what favorites clients already display.
const (
	MsgRequired        = "item_id & item_type required"
	MsgInvalidItemType = "invalid item_type"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value interface{}
}

// RequestValidationError collects every failed rule of one struct.
type RequestValidationError struct {
	fields []FieldError
}

// Fields returns the individual failures.
func (ve *RequestValidationError) Fields() []FieldError {
	return ve.fields
}

// Error implements error.
func (ve *RequestValidationError) Error() string {
	if len(ve.fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve.fields))
	for i, f := range ve.fields {
		parts[i] = f.Field + " failed " + f.Tag
		if f.Param != "" {
			parts[i] += "=" + f.Param
		}
	}
	return strings.Join(parts, "; ")
}

// Message maps the failures onto the client-facing error text. A missing
// identifier wins over a bad type because the request cannot name a
// favorite at all.
func (ve *RequestValidationError) Message() string {
	invalidType := false
	for _, f := range ve.fields {
		if f.Tag == "required" {
			return MsgRequired
		}
		if f.Tag == "oneof" && (f.Field == "item_type" || f.Field == "type") {
			invalidType = true
		}
	}
	if invalidType {
		return MsgInvalidItemType
	}
	return ve.Error()
}

// GetValidator returns the shared validator. Field names in errors come from
// json tags so they match what clients sent.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct validates s and returns nil or the collected failures.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestValidationError{fields: []FieldError{{Field: "request", Tag: "invalid"}}}
	}

	out := &RequestValidationError{fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.fields = append(out.fields, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return out
}
