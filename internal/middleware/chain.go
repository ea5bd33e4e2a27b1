// Package middleware wraps the receiver's handlers.
package middleware

import "net/http"

// Chain is an ordered list of middleware; the first one runs outermost.
type Chain struct {
	middlewares []func(http.Handler) http.Handler
}

func NewChain(middlewares ...func(http.Handler) http.Handler) *Chain {
	return &Chain{middlewares: append([]func(http.Handler) http.Handler(nil), middlewares...)}
}

// Then wraps handler with the chain.
func (c *Chain) Then(handler http.Handler) http.Handler {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		handler = c.middlewares[i](handler)
	}
	return handler
}

func (c *Chain) ThenFunc(fn http.HandlerFunc) http.Handler {
	return c.Then(fn)
}
