// Package httpscraper fetches provider pages over plain HTTP with resty.
package httpscraper

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"propertydata/pkg/domain"
	"propertydata/pkg/logger"
	"propertydata/pkg/scraper"
	"propertydata/pkg/serrors"
)

// DefaultUserAgent is sent when Options.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36" //nolint: lll

// Options configures a Client.
type Options struct {
	UserAgent string
	// Timeout bounds one page request. Defaults to 30s.
	Timeout time.Duration
	// BypassCloudflare wraps the transport with browser-like TLS and headers.
	BypassCloudflare bool
	// Transport replaces the default HTTP transport, mostly for tests.
	Transport http.RoundTripper
	// Debug dumps every request and response at debug level.
	Debug bool
}

// Client fetches pages. It is safe for concurrent use.
type Client struct {
	http *resty.Client
}

// New builds a Client. Resty logs through whichever process logger is current
// when it writes, so a Client built before logger.Setup still logs.
func New(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New()
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}
	if opts.BypassCloudflare {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetLogger(restyLogger{})
	client.SetDebug(opts.Debug)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetHeader("Accept-Language", "en-AU,en;q=0.9")
	client.SetTimeout(opts.Timeout)

	return &Client{http: client}
}

// restyLogger adapts the process logger to resty.Logger.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) { sugar().Errorf(format, v...) }
func (restyLogger) Warnf(format string, v ...any) { sugar().Warnf(format, v...) }
func (restyLogger) Debugf(format string, v ...any) { sugar().Debugf(format, v...) }

func sugar() *zap.SugaredLogger {
	return logger.Get(context.Background()).Sugar()
}

// Fetch returns the body of a GET for url.
//
// 429 maps to ErrRateLimited, 403 and bot challenge pages map to ErrBlocked,
// transport timeouts map to ErrTimeout and anything else that is not a
// non-empty 2xx body maps to ErrScrapeFailed.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		if isTimeout(err) {
			return "", serrors.Wrap(serrors.ErrTimeout, err, "timed out fetching %s", url)
		}

		return "", serrors.Wrap(serrors.ErrScrapeFailed, err, "could not fetch %s", url)
	}

	body := resp.String()
	switch code := resp.StatusCode(); {
	case code == http.StatusTooManyRequests:
		return "", serrors.With(serrors.ErrRateLimited, "rate limited fetching %s", url)
	case code == http.StatusForbidden:
		return "", serrors.With(serrors.ErrBlocked, "forbidden fetching %s", url)
	case code < 200 || code >= 300:
		return "", serrors.With(serrors.ErrScrapeFailed, "fetching %s returned status %d", url, code)
	case strings.TrimSpace(body) == "":
		return "", serrors.With(serrors.ErrScrapeFailed, "fetching %s returned an empty page", url)
	case isChallenge(body):
		return "", serrors.With(serrors.ErrBlocked, "bot challenge served for %s", url)
	}

	return body, nil
}

// Scraper returns a scraper.Scraper fetching the URL that build renders for
// each address.
func (c *Client) Scraper(build scraper.URLBuilder) scraper.Scraper {
	return scraper.Func(func(ctx context.Context, addr domain.Address) (string, error) {
		return c.Fetch(ctx, build(addr))
	})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error

	return errors.As(err, &ne) && ne.Timeout()
}

var challengeMarkers = []string{ //nolint: gochecknoglobals
	"cf-browser-verification",
	"challenge-platform",
	"<title>Just a moment...</title>",
	"Pardon Our Interruption",
}

func isChallenge(body string) bool {
	for _, m := range challengeMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}

	return false
}
