// Package browser fetches provider pages with headless Chrome, for sites that
// only render their property panels with JavaScript.
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp"

	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
	"propertydata/pkg/scraper"
	"propertydata/pkg/serrors"
)

// Options configures a Browser.
type Options struct {
	// UserAgent overrides Chrome's default user agent when set.
	UserAgent string
	// Timeout bounds one page load. Defaults to 45s.
	Timeout time.Duration
	// ExecPath points at the Chrome binary. chromedp searches the usual
	// locations when empty.
	ExecPath string
}

// Browser owns one Chrome allocator; every Fetch opens a fresh tab.
type Browser struct {
	alloc   context.Context //nolint: containedctx
	cancel  context.CancelFunc
	timeout time.Duration
}

// New prepares the allocator. Chrome itself starts on the first Fetch.
func New(opts Options) *Browser {
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}

	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		flags = append(flags, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		flags = append(flags, chromedp.ExecPath(opts.ExecPath))
	}

	alloc, cancel := chromedp.NewExecAllocator(context.Background(), flags...)

	return &Browser{alloc: alloc, cancel: cancel, timeout: opts.Timeout}
}

// Close shuts Chrome down.
func (b *Browser) Close() {
	b.cancel()
}

// Fetch loads url in a new tab and returns the rendered document.
func (b *Browser) Fetch(ctx context.Context, url string) (string, error) {
	tab, cancelTab := chromedp.NewContext(b.alloc, chromedp.WithLogf(logger.Get(ctx).Sugar().Debugf))
	defer cancelTab()

	tab, cancelTimeout := context.WithTimeout(tab, b.timeout)
	defer cancelTimeout()

	// the tab context does not derive from ctx, so follow the caller's cancellation by hand
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var html string
	err := chromedp.Run(tab,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(tab.Err(), context.DeadlineExceeded) {
			return "", serrors.Wrap(serrors.ErrTimeout, err, "timed out rendering %s", url)
		}

		return "", serrors.Wrap(serrors.ErrScrapeFailed, err, "could not render %s", url)
	}

	return html, nil
}

// Scraper returns a scraper.Scraper rendering the URL build returns for each
// address.
func (b *Browser) Scraper(build scraper.URLBuilder) scraper.Scraper {
	return scraper.Func(func(ctx context.Context, addr domain.Address) (string, error) {
		return b.Fetch(ctx, build(addr))
	})
}
