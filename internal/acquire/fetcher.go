// Package acquire turns pages into field values. A Fetcher reads one field
// from one source; a FieldAcquirer walks a field's fetchers in priority order
// and keeps the first value found.
package acquire

import (
	"context"
	"reflect"

	"go.uber.org/zap"

	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
	"propertydata/pkg/parse"
	"propertydata/pkg/schema"
	"propertydata/pkg/scraper"
	"propertydata/pkg/serrors"
)

// Retriever returns the page of an address on a source. *fetch.Retriever
// implements it.
type Retriever interface {
	Retrieve(ctx context.Context, addr domain.Address, source domain.Source, s scraper.Scraper) (string, error)
}

// FieldFetcher produces one field value for an address.
type FieldFetcher[T any] interface {
	Fetch(ctx context.Context, addr domain.Address) Result[T]
}

// FetchFunc adapts a plain function to FieldFetcher.
type FetchFunc[T any] func(ctx context.Context, addr domain.Address) Result[T]

func (f FetchFunc[T]) Fetch(ctx context.Context, addr domain.Address) Result[T] {
	return f(ctx, addr)
}

// Fetcher reads one field from one source's page.
type Fetcher[T any] struct {
	field     domain.Field
	source    domain.Source
	scraper   scraper.Scraper
	cfg       parse.Config[T]
	retriever Retriever
}

// NewFetcher binds field to source. T must be the Go type the record stores
// for field.
func NewFetcher[T any](field domain.Field,
	source domain.Source,
	s scraper.Scraper,
	cfg parse.Config[T],
	retriever Retriever) (*Fetcher[T], error) {
	want := domain.FieldType(field)
	if want == nil {
		return nil, serrors.With(serrors.ErrBadRequest, "unknown field %q", field)
	}
	if got := reflect.TypeFor[T](); got != want {
		return nil, serrors.With(serrors.ErrInternal, "fetcher for %s produces %s, field stores %s", field, got, want)
	}
	if !source.Valid() {
		return nil, serrors.With(serrors.ErrBadRequest, "unknown source %q", source)
	}
	if s == nil || retriever == nil {
		return nil, serrors.With(serrors.ErrInternal, "fetcher for %s on %s needs a scraper and a retriever", field, source)
	}

	return &Fetcher[T]{field: field, source: source, scraper: s, cfg: cfg, retriever: retriever}, nil
}

// MustFetcher is like NewFetcher but panics on a binding error. It is meant
// for static source catalogs.
func MustFetcher[T any](field domain.Field,
	source domain.Source,
	s scraper.Scraper,
	cfg parse.Config[T],
	retriever Retriever) *Fetcher[T] {
	f, err := NewFetcher(field, source, s, cfg, retriever)
	if err != nil {
		panic(err)
	}

	return f
}

func (f *Fetcher[T]) Field() domain.Field   { return f.field }
func (f *Fetcher[T]) Source() domain.Source { return f.source }

// Fetch retrieves the page, parses the field and checks it against the
// schema. A parse miss or a schema violation is NotFound; a page that could
// not be retrieved is Failed.
func (f *Fetcher[T]) Fetch(ctx context.Context, addr domain.Address) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = Failed[T](serrors.With(serrors.ErrInternal, "fetching %s from %s panicked: %v", f.field, f.source, p))
		}
	}()

	html, err := f.retriever.Retrieve(ctx, addr, f.source, f.scraper)
	if err != nil {
		return Failed[T](err)
	}

	v, ok := parse.ParseHTML(html, f.cfg)
	if !ok {
		return NotFound[T]()
	}

	if err := schema.ValidateField(f.field, v); err != nil {
		logger.Debug(ctx, "parsed value rejected by schema",
			zap.Stringer("field", f.field),
			zap.Stringer("source", f.source),
			zap.Error(err))

		return NotFound[T]()
	}

	return Found(v)
}
