// Package middleware provides the HTTP middleware stack applied to every
// mounted API module.
package middleware

import "net/http"

// System holds an ordered middleware stack. Apply wraps outermost-first,
// so the first middleware added sees the request first.
type System interface {
	Use(mw func(http.Handler) http.Handler)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	mws []func(http.Handler) http.Handler
}

// New creates an empty middleware stack.
func New() System {
	return &stack{mws: []func(http.Handler) http.Handler{}}
}

func (s *stack) Use(fn func(http.Handler) http.Handler) {
	s.mws = append(s.mws, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.mws) - 1; i >= 0; i-- {
		handler = s.mws[i](handler)
	}
	return handler
}
