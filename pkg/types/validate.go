package types

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Accepted layouts for the date field of a record.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
			return Status(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
			_, ok := ParseDate(fl.Field().String())
			return ok
		})
		validate = v
	})
	return validate
}

// ParseDate parses a record date. It reports false when s matches none of
// the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize lower-cases the status of r and defaults it to draft.
func Normalize(r Record) {
	r.SetRecordStatus(NormalizeStatus(r.RecordStatus()))
}

// Validate checks the required and constrained fields of r. It returns a
// *ValidationError naming the offending json fields, or nil.
func Validate(r Record) error {
	if r == nil {
		return &ValidationError{}
	}
	if rv := reflect.ValueOf(r); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return &ValidationError{Kind: r.Kind()}
	}
	err := recordValidator().Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Kind: r.Kind(), Invalid: []string{err.Error()}}
	}
	ve := &ValidationError{Kind: r.Kind()}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			ve.Missing = append(ve.Missing, fe.Field())
		} else {
			ve.Invalid = append(ve.Invalid, fe.Field())
		}
	}
	return ve
}
