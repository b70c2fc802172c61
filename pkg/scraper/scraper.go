// Package scraper defines the one capability the engine needs from the
// network: turning an address into the raw HTML of a provider's page.
package scraper

import (
	"context"

	"propertydata/pkg/domain"
)

// Scraper fetches the page for an address. Failures are returned as serrors
// kinds: ErrScrapeFailed, or the more specific ErrRateLimited, ErrBlocked or
// ErrTimeout. Implementations own their timeouts.
//
//go:generate mockgen -destination=mock/mockscraper.go -package=mockscraper . Scraper
type Scraper interface {
	Scrape(ctx context.Context, addr domain.Address) (string, error)
}

// Func adapts a plain function to Scraper.
type Func func(ctx context.Context, addr domain.Address) (string, error)

func (f Func) Scrape(ctx context.Context, addr domain.Address) (string, error) {
	return f(ctx, addr)
}

// URLBuilder renders the page URL of an address on one provider.
type URLBuilder func(addr domain.Address) string
