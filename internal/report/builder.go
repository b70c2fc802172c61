// Package report assembles a property record for an address: every field
// through its own waterfall, then the whole-record tier for whatever is still
// missing, then a final schema check.
package report

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"propertydata/internal/acquire"
	"propertydata/internal/config"
	"propertydata/internal/fallback"
	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
	"propertydata/pkg/schema"
)

// DefaultFieldConcurrency bounds how many fields are acquired at once.
const DefaultFieldConcurrency = 4

var tracer = otel.Tracer("propertydata/internal/report") //nolint: gochecknoglobals

// Options configure a Builder.
type Options struct {
	// FieldConcurrency bounds concurrent field waterfalls. Defaults to
	// DefaultFieldConcurrency.
	FieldConcurrency int
	// Fallback is passed to the whole-record tier.
	Fallback fallback.Options
	// MeterProvider records report counters. Defaults to the global provider.
	MeterProvider metric.MeterProvider
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		FieldConcurrency: cfg.Report.FieldConcurrency,
		Fallback: fallback.Options{
			Enabled:     !cfg.Report.Fallback.Disabled,
			MaxAttempts: cfg.Report.Fallback.MaxAttempts,
		},
	}
}

// Builder builds records. It is safe for concurrent use.
type Builder struct {
	acquirers []acquire.Acquirer
	registry  *fallback.Registry
	opts      Options

	reports      metric.Int64Counter
	fieldsFound  metric.Int64Histogram
	fieldsFilled metric.Int64Counter
}

// New returns a Builder running acquirers and then registry. registry may be
// nil, which disables the whole-record tier.
func New(acquirers []acquire.Acquirer, registry *fallback.Registry, opts Options) (*Builder, error) {
	if opts.FieldConcurrency <= 0 {
		opts.FieldConcurrency = DefaultFieldConcurrency
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = otel.GetMeterProvider()
	}
	if registry == nil {
		registry = fallback.New()
	}

	meter := opts.MeterProvider.Meter("propertydata/internal/report")
	reports, err := meter.Int64Counter("propertydata.reports",
		metric.WithDescription("Reports built, by outcome."))
	if err != nil {
		return nil, fmt.Errorf("could not create reports counter: %w", err)
	}
	fieldsFound, err := meter.Int64Histogram("propertydata.report.fields",
		metric.WithDescription("Fields present in a built report."),
		metric.WithExplicitBucketBoundaries(0, 2, 4, 6, 8, 10, 12)) //nolint: mnd
	if err != nil {
		return nil, fmt.Errorf("could not create fields histogram: %w", err)
	}
	fieldsFilled, err := meter.Int64Counter("propertydata.report.fallback_fields",
		metric.WithDescription("Fields supplied by the whole-record tier."))
	if err != nil {
		return nil, fmt.Errorf("could not create fallback counter: %w", err)
	}

	return &Builder{
		acquirers:    acquirers,
		registry:     registry,
		opts:         opts,
		reports:      reports,
		fieldsFound:  fieldsFound,
		fieldsFilled: fieldsFilled,
	}, nil
}

// Build assembles the record for addr. Fields no source could supply are
// left empty; that is not an error. The returned record always passes
// schema.Validate. A record that does not is reported as an ErrValidation
// error naming the field, and an invalid address as ErrBadRequest.
func (b *Builder) Build(ctx context.Context, addr domain.Address) (domain.Record, error) {
	return b.BuildWith(ctx, addr, b.opts.Fallback)
}

// BuildWith is Build with the whole-record tier configured by fb instead of
// the builder's options.
func (b *Builder) BuildWith(ctx context.Context, addr domain.Address, fb fallback.Options) (domain.Record, error) {
	if err := addr.Validate(); err != nil {
		b.count(ctx, "bad_request")

		return domain.Record{}, err
	}

	ctx, span := tracer.Start(ctx, "Build")
	defer span.End()
	span.SetAttributes(attribute.String("address", addr.String()))
	ctx = logger.WithFields(ctx, zap.Stringer("address", addr))

	rec := b.acquire(ctx, addr)
	if err := schema.Validate(rec); err != nil {
		return b.fail(ctx, span, err)
	}

	before := len(domain.Missing(rec))
	rec = b.registry.FillMissingFields(ctx, rec, addr, fb)
	if err := schema.Validate(rec); err != nil {
		return b.fail(ctx, span, err)
	}

	missing := len(domain.Missing(rec))
	present := len(domain.Fields()) - missing
	b.fieldsFilled.Add(ctx, int64(before-missing))
	b.fieldsFound.Record(ctx, int64(present))
	b.count(ctx, "ok")
	span.SetAttributes(attribute.Int("fields_present", present))
	logger.Info(ctx, "report built", zap.Int("present", present), zap.Int("missing", missing))

	return rec, nil
}

// acquire runs every field waterfall, at most FieldConcurrency at a time.
func (b *Builder) acquire(ctx context.Context, addr domain.Address) domain.Record {
	values := make([]any, len(b.acquirers))

	var g errgroup.Group
	g.SetLimit(b.opts.FieldConcurrency)
	for i, a := range b.acquirers {
		g.Go(func() error {
			if v, ok := a.AcquireValue(ctx, addr); ok {
				values[i] = v
			}

			return nil
		})
	}
	_ = g.Wait()

	var rec domain.Record
	for i, a := range b.acquirers {
		if values[i] == nil {
			continue
		}
		if err := domain.Set(&rec, a.Field(), values[i]); err != nil {
			logger.Error(ctx, "dropping acquired value", zap.Stringer("field", a.Field()), zap.Error(err))
		}
	}

	return rec
}

func (b *Builder) fail(ctx context.Context, span trace.Span, err error) (domain.Record, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "record failed schema")
	b.count(ctx, "invalid")

	field, _ := schema.FieldOf(err)
	logger.Error(ctx, "report failed schema", zap.Stringer("field", field), zap.Error(err))

	return domain.Record{}, fmt.Errorf("could not build report: %w", err)
}

func (b *Builder) count(ctx context.Context, outcome string) {
	b.reports.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
