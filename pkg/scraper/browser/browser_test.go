package browser_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"propertydata/pkg/domain"
	"propertydata/pkg/scraper/browser"
	"propertydata/pkg/serrors"
)

func requireChrome(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping headless chrome test in short mode")
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no chrome binary on PATH")
}

func TestFetchRendersScriptedContent(t *testing.T) {
	requireChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div id="panel"></div>
<script>document.getElementById("panel").textContent = "Year Built: 1985";</script>
</body></html>`))
	}))
	defer srv.Close()

	b := browser.New(browser.Options{Timeout: 20 * time.Second})
	defer b.Close()

	s := b.Scraper(func(domain.Address) string { return srv.URL })
	html, err := s.Scrape(context.Background(), domain.Address{Line: "6 English Place"})
	require.NoError(t, err)
	require.Contains(t, html, "Year Built: 1985")
}

func TestFetchUnreachableHost(t *testing.T) {
	requireChrome(t)

	b := browser.New(browser.Options{Timeout: 5 * time.Second})
	defer b.Close()

	_, err := b.Fetch(context.Background(), "http://127.0.0.1:1/")
	require.Error(t, err)
	require.True(t, serrors.IsScrapeFailure(err))
}
