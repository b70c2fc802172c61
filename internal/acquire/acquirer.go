package acquire

import (
	"context"

	"go.uber.org/zap"

	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
	"propertydata/pkg/metrics"
	"propertydata/pkg/schema"
)

// Acquirer is a FieldAcquirer with its value type erased, so acquirers of
// different fields fit in one list.
type Acquirer interface {
	Field() domain.Field
	AcquireValue(ctx context.Context, addr domain.Address) (any, bool)
}

// FieldAcquirer tries its fetchers in order and keeps the first value found.
type FieldAcquirer[T any] struct {
	field    domain.Field
	fetchers []FieldFetcher[T]
}

var _ Acquirer = (*FieldAcquirer[int])(nil)

// NewFieldAcquirer returns an acquirer for field trying fetchers in the
// given order.
func NewFieldAcquirer[T any](field domain.Field, fetchers ...FieldFetcher[T]) *FieldAcquirer[T] {
	return &FieldAcquirer[T]{field: field, fetchers: fetchers}
}

func (a *FieldAcquirer[T]) Field() domain.Field { return a.field }

// Acquire returns the first value found. Fetchers after it are not called.
// A failed fetcher is logged and the next one tried. ok is false when no
// fetcher found a value, or when the value found does not pass the schema.
func (a *FieldAcquirer[T]) Acquire(ctx context.Context, addr domain.Address) (T, bool) {
	var zero T
	ctx = logger.WithFields(ctx, zap.Stringer("field", a.field))

	for i, f := range a.fetchers {
		res := f.Fetch(ctx, addr)
		fields := []zap.Field{zap.Int("attempt", i+1)}
		if s, ok := f.(interface{ Source() domain.Source }); ok {
			fields = append(fields, zap.Stringer("source", s.Source()))
		}

		switch {
		case res.IsFound():
			v, _ := res.Value()
			if err := schema.ValidateField(a.field, v); err != nil {
				logger.Warn(ctx, "acquired value failed schema, dropping it", append(fields, zap.Error(err))...)
				metrics.FieldOutcomes.WithLabelValues(a.field.String(), metrics.ResultAbsent).Inc()

				return zero, false
			}
			logger.Debug(ctx, "field acquired", fields...)
			metrics.FieldOutcomes.WithLabelValues(a.field.String(), metrics.ResultFound).Inc()

			return v, true
		case res.IsNotFound():
			logger.Debug(ctx, "field not found on page", fields...)
		default:
			logger.Warn(ctx, "could not fetch field", append(fields, zap.Error(res.Err()))...)
		}
	}

	metrics.FieldOutcomes.WithLabelValues(a.field.String(), metrics.ResultAbsent).Inc()

	return zero, false
}

// AcquireValue is Acquire with the value boxed.
func (a *FieldAcquirer[T]) AcquireValue(ctx context.Context, addr domain.Address) (any, bool) {
	v, ok := a.Acquire(ctx, addr)
	if !ok {
		return nil, false
	}

	return v, true
}
