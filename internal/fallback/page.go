package fallback

import (
	"context"
	"fmt"

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

// PageScraper reads a whole record off one source's page. The page comes
// through the retriever, so it is shared with the per-field tier.
type PageScraper struct {
	source    domain.Source
	scraper   scraper.Scraper
	retriever Retriever
	configs   []parse.FieldConfig
}

var _ PropertyScraper = (*PageScraper)(nil)

// NewPageScraper returns a PropertyScraper parsing configs out of source's
// page.
func NewPageScraper(source domain.Source,
	s scraper.Scraper,
	retriever Retriever,
	configs ...parse.FieldConfig) *PageScraper {
	return &PageScraper{source: source, scraper: s, retriever: retriever, configs: configs}
}

func (p *PageScraper) Name() string { return fmt.Sprintf("page(%s)", p.source) }

func (p *PageScraper) SupportedFields() []domain.Field {
	out := make([]domain.Field, 0, len(p.configs))
	for _, c := range p.configs {
		out = append(out, c.Field())
	}

	return out
}

// Scrape parses every configured field. A field whose value breaks the
// schema is left out of the returned record.
func (p *PageScraper) Scrape(ctx context.Context, address string) (domain.Record, error) {
	addr, err := domain.ParseAddress(address)
	if err != nil {
		return domain.Record{}, err
	}

	html, err := p.retriever.Retrieve(ctx, addr, p.source, p.scraper)
	if err != nil {
		return domain.Record{}, fmt.Errorf("could not retrieve page: %w", err)
	}

	doc, err := parse.Document(html)
	if err != nil {
		return domain.Record{}, serrors.Wrap(serrors.ErrScrapeFailed, err, "could not parse %s page", p.source)
	}

	rec, err := parse.Record(ctx, doc, p.configs)
	for range p.configs {
		if err == nil {
			break
		}
		f, ok := schema.FieldOf(err)
		if !ok {
			return domain.Record{}, err
		}
		logger.Debug(ctx, "dropping field that failed schema", zap.Stringer("field", f), zap.Error(err))
		domain.Unset(&rec, f)
		err = schema.Validate(rec)
	}
	if err != nil {
		return domain.Record{}, err
	}

	return rec, nil
}
