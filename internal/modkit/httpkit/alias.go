// Package httpkit provides handler and routing helpers that alias the platform http package
// modules use these so they do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "trackerhub/internal/platform/net/http"
	"trackerhub/internal/platform/net/http/bind"
)

type (
	// Response is the return-style handler result
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router

	// Message is the {"message": ...} body
	Message = phttp.Message

	// ErrorMessage is the bare {"error": ...} body
	ErrorMessage = phttp.ErrorMessage

	// Envelope is the platform error body
	Envelope = phttp.Envelope
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Status returns a response with an explicit status
func Status(status int, data any) Response { return phttp.Status(status, data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error returns a response that maps an error to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// BadRequest writes the bare 400 {"error": msg} body
func BadRequest(w http.ResponseWriter, msg string) { phttp.BadRequest(w, msg) }

// RespondError writes err through the platform error envelope
func RespondError(w http.ResponseWriter, r *http.Request, err error) { phttp.RespondError(w, r, err) }

// JSON writes v with status
func JSON(w http.ResponseWriter, status int, v any) { phttp.JSON(w, status, v) }

// Param returns a named route parameter
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }

// Bind decodes and validates T; a Response result from fn passes through untouched
func Bind[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return phttp.Error(err)
		}
		return toResponse(fn(r, in))
	})
}

// Call adapts a handler that takes no JSON body
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		return toResponse(fn(r))
	})
}

// Handle adapts a Response-returning function
func Handle(fn func(*http.Request) Response) Handler {
	return phttp.Handle(fn)
}

func toResponse(out any, err error) Response {
	if err != nil {
		return phttp.Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return phttp.OK(out)
}
