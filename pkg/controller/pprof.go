package controller

import (
	"net/http"
	"net/http/pprof"
	"strings"
)

// Pprof returns a handler serving the runtime profiles under prefix, e.g.
// "/debug/pprof/". Mount it on the same prefix.
func Pprof(prefix string) http.Handler {
	prefix = strings.TrimSuffix(prefix, "/")

	mux := http.NewServeMux()
	mux.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
	mux.HandleFunc(prefix+"/profile", pprof.Profile)
	mux.HandleFunc(prefix+"/symbol", pprof.Symbol)
	mux.HandleFunc(prefix+"/trace", pprof.Trace)
	// named profiles (heap, goroutine, ...) and the index
	mux.HandleFunc(prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, prefix+"/")
		if name == "" {
			pprof.Index(w, r)

			return
		}
		pprof.Handler(name).ServeHTTP(w, r)
	})

	return mux
}
