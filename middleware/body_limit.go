package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
)

// BodyLimit returns gorilla/mux middleware that caps the request body at
// maxBytes. When the limit is exceeded, any further Read on the body returns
// an error and the server can respond with 413 Request Entity Too Large.
//
// This uses http.MaxBytesReader, which is the standard-library mechanism for
// limiting request bodies. It works transparently with json.NewDecoder,
// io.ReadAll, r.ParseForm, etc.
//
// Apply this on the API subrouter for a sensible default, and use
// BodyLimitHandler on routes that need their own cap, such as the image
// upload endpoint.
func BodyLimit(maxBytes int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimitHandler wraps a single http.HandlerFunc with an overridden body
// size limit for routes that need a different cap than the subrouter
// default, such as multipart image uploads.
func BodyLimitHandler(maxBytes int64, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		next(w, r)
	}
}
