// Package middleware provides the HTTP middleware stack shared by modules:
// CORS, request logging and body limits.
package middleware

import "net/http"

// Middleware wraps a handler.
type Middleware = func(http.Handler) http.Handler

// System is an ordered middleware stack. The first middleware added is the
// outermost wrapper.
type System interface {
	Use(mw Middleware)
	Apply(handler http.Handler) http.Handler
}

type stack []Middleware

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw Middleware) {
	*s = append(*s, mw)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := range len(*s) {
		wrapped = (*s)[len(*s)-1-i](wrapped)
	}
	return wrapped
}
