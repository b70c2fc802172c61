// Package controller contains HTTP middlewares and helpers shared by the API server.
//
// Middlewares:
//   - WithLogger: attaches a request ID and a request-scoped logger, then writes an access log.
//   - WithCORS: answers preflight requests and sets CORS headers.
//
// Helpers:
//   - WriteJSON: encodes a JSON response body.
//   - Pprof: serves net/http/pprof under a path prefix.
package controller
