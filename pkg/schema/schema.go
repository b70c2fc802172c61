// Package schema is the typed contract every domain.Record must satisfy
// before it leaves the engine. Rules live in the validate tags on
// domain.Record and its value types; this package runs them and turns
// violations into errors that name the offending field.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"propertydata/pkg/domain"
	"propertydata/pkg/serrors"
)

// ValidationError describes the first rule a record broke.
type ValidationError struct {
	// Field is the top level record field, e.g. "landArea".
	Field domain.Field
	// Path is the full JSON path of the offending value, e.g. "landArea.unit".
	Path string
	// Rule is the validator tag that failed, e.g. "oneof".
	Rule  string
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: value %v violates rule %q", e.Path, e.Value, e.Rule)
}

var (
	validate     *validator.Validate //nolint: gochecknoglobals
	validateOnce sync.Once           //nolint: gochecknoglobals
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})
	})

	return validate
}

// Validate checks the whole record. A violation is returned as an
// ErrValidation error wrapping a *ValidationError.
func Validate(rec domain.Record) error {
	err := instance().Struct(rec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return serrors.Wrap(serrors.ErrInternal, err, "could not validate record")
	}

	first := verrs[0]
	path := first.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	top, _, _ := strings.Cut(path, ".")
	top, _, _ = strings.Cut(top, "[")

	verr := &ValidationError{
		Field: domain.Field(top),
		Path:  path,
		Rule:  first.Tag(),
		Value: first.Value(),
	}

	return serrors.Wrap(serrors.ErrValidation, verr, "record failed schema")
}

// ValidateField checks value against the rules of f alone. value must have
// the field's Go type; a type mismatch is a violation with rule "type".
func ValidateField(f domain.Field, value any) error {
	var rec domain.Record
	if err := domain.Set(&rec, f, value); err != nil {
		if errors.Is(err, serrors.ErrBadRequest) {
			return err
		}

		return serrors.Wrap(serrors.ErrValidation, &ValidationError{
			Field: f, Path: string(f), Rule: "type", Value: value,
		}, "value failed schema")
	}

	return Validate(rec)
}

// FieldOf extracts the offending field from an error returned by this
// package. ok is false for any other error.
func FieldOf(err error) (domain.Field, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Field, true
	}

	return "", false
}
