package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetJSON mounts a pure JSON handler for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, JSONHandlerNoBody(h))
}

// PostJSON mounts a pure JSON handler for POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, JSONHandler(h))
}

// Param returns the named route parameter
func Param(r *http.Request, name string) string { return chi.URLParam(r, name) }
