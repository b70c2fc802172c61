package parse

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
	"propertydata/pkg/schema"
)

// FieldConfig is a Config bound to the record field it fills, with the
// value type erased so configs of different types fit in one slice.
type FieldConfig interface {
	Field() domain.Field
	// Value runs the config against doc.
	Value(doc *goquery.Document) (any, bool)
}

type fieldConfig[T any] struct {
	field domain.Field
	cfg   Config[T]
}

// Field binds cfg to f.
func Field[T any](f domain.Field, cfg Config[T]) FieldConfig {
	return fieldConfig[T]{field: f, cfg: cfg}
}

func (c fieldConfig[T]) Field() domain.Field { return c.field }

func (c fieldConfig[T]) Value(doc *goquery.Document) (any, bool) {
	v, ok := Parse(doc, c.cfg)
	if !ok {
		return nil, false
	}

	return v, true
}

// Record runs every config against doc independently and assembles the
// accepted values into a record. A value whose type does not fit its field
// is dropped. The assembled record must pass schema.Validate; a violation is
// returned as an ErrValidation error naming the field, together with the
// record as parsed.
func Record(ctx context.Context, doc *goquery.Document, configs []FieldConfig) (domain.Record, error) {
	var rec domain.Record
	for _, c := range configs {
		v, ok := c.Value(doc)
		if !ok {
			continue
		}
		if err := domain.Set(&rec, c.Field(), v); err != nil {
			logger.Debug(ctx, "dropping parsed value", zap.Stringer("field", c.Field()), zap.Error(err))
		}
	}

	if err := schema.Validate(rec); err != nil {
		return rec, err
	}

	return rec, nil
}
