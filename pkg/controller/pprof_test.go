package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"propertydata/pkg/controller"
)

func TestPprof(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/debug/pprof/", controller.Pprof("/debug/pprof/"))

	tests := []struct {
		path string
		want int
	}{
		{path: "/debug/pprof/", want: http.StatusOK},
		{path: "/debug/pprof/cmdline", want: http.StatusOK},
		{path: "/debug/pprof/goroutine?debug=1", want: http.StatusOK},
		{path: "/debug/pprof/heap", want: http.StatusOK},
		{path: "/debug/pprof/nope", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	controller.WriteJSON(context.Background(), rec, http.StatusAccepted, map[string]int{"removed": 3})

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"removed":3}`, rec.Body.String())
}
