package serrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"propertydata/pkg/serrors"
)

type causeError struct{ msg string }

func (e causeError) Error() string { return e.msg }

func TestKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrNotFound,
		serrors.ErrBadRequest,
		serrors.ErrInternal,
		serrors.ErrTimeout,
		serrors.ErrUnavailable,
		serrors.ErrRateLimited,
		serrors.ErrBlocked,
		serrors.ErrScrapeFailed,
		serrors.ErrValidation,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("connection reset")

	e1 := serrors.With(serrors.ErrBadRequest, "address %q has no suburb", "6 English Place")
	require.Equal(t, `address "6 English Place" has no suburb`, e1.Error())

	e2 := serrors.Wrap(serrors.ErrScrapeFailed, base, "fetching domain.com")
	require.Equal(t, "fetching domain.com: connection reset", e2.Error())

	e3 := serrors.KindOnly(serrors.ErrBlocked)
	require.Equal(t, "BLOCKED", e3.Error())

	var nilErr *serrors.Error
	require.Equal(t, "<nil>", nilErr.Error())
}

func TestIsMatchesKindAndCause(t *testing.T) {
	base := causeError{"captcha page"}
	e := serrors.Wrap(serrors.ErrBlocked, base, "scraping")

	require.ErrorIs(t, e, serrors.ErrBlocked)
	require.ErrorIs(t, e, base)
	require.NotErrorIs(t, e, serrors.ErrRateLimited)

	wrapped := fmt.Errorf("could not fetch: %w", e)
	require.ErrorIs(t, wrapped, serrors.ErrBlocked)
}

func TestAsMatchesKindAndCause(t *testing.T) {
	base := &causeError{"root cause"}
	e := serrors.Wrap(serrors.ErrValidation, base, "checking record")

	var k serrors.Kind
	require.ErrorAs(t, e, &k)
	require.Equal(t, serrors.ErrValidation, k)

	var ce *causeError
	require.ErrorAs(t, e, &ce)
	require.Equal(t, base, ce)
}

func TestAccessors(t *testing.T) {
	base := errors.New("boom")
	e := serrors.Wrap(serrors.ErrUnavailable, base, "redis down")
	require.Equal(t, serrors.ErrUnavailable, e.Kind())
	require.Equal(t, "redis down", e.Message())
	require.Equal(t, base, e.Cause())
}

func TestKindOf(t *testing.T) {
	require.Nil(t, serrors.KindOf(errors.New("plain")))
	require.Nil(t, serrors.KindOf(nil))

	err := fmt.Errorf("outer: %w", serrors.With(serrors.ErrTimeout, "slow"))
	require.Equal(t, serrors.ErrTimeout, serrors.KindOf(err))
}

func TestIsScrapeFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"scrape failed", serrors.KindOnly(serrors.ErrScrapeFailed), true},
		{"rate limited", serrors.KindOnly(serrors.ErrRateLimited), true},
		{"blocked", serrors.KindOnly(serrors.ErrBlocked), true},
		{"timeout", serrors.KindOnly(serrors.ErrTimeout), true},
		{"validation", serrors.KindOnly(serrors.ErrValidation), false},
		{"plain", errors.New("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, serrors.IsScrapeFailure(tc.err))
		})
	}
}
