// Package module mounts self-contained HTTP handlers under single-segment
// path prefixes, each with its own middleware stack.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/garunski/applymonitor/pkg/middleware"
)

// ErrInvalidPrefix is returned for prefixes that are not a single "/name" segment.
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module strips its prefix from incoming paths and hands requests to an
// inner handler wrapped by the module's middleware.
type Module struct {
	prefix string
	inner  http.Handler
	stack  middleware.System

	once    sync.Once
	handler http.Handler
}

// New creates a Module mounted at prefix, such as "/api".
func New(prefix string, inner http.Handler) (*Module, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	return &Module{
		prefix: prefix,
		inner:  inner,
		stack:  middleware.New(),
	}, nil
}

// Prefix returns the module's mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware. It must be called before the first request.
func (m *Module) Use(mw middleware.Middleware) {
	m.stack.Use(mw)
}

// Handler returns the inner handler wrapped with the module's middleware.
// The chain is built once, on first use.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.stack.Apply(m.inner)
	})
	return m.handler
}

// ServeHTTP dispatches req with the module prefix removed from its path.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	m.Handler().ServeHTTP(w, stripPrefix(req, m.prefix))
}

func stripPrefix(req *http.Request, prefix string) *http.Request {
	rest := strings.TrimPrefix(req.URL.Path, prefix)
	if rest == "" {
		rest = "/"
	}

	out := req.Clone(req.Context())
	out.URL.Path = rest
	out.URL.RawPath = ""
	return out
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("%w: %q must start with /", ErrInvalidPrefix, prefix)
	case len(prefix) == 1 || strings.Contains(prefix[1:], "/"):
		return fmt.Errorf("%w: %q must be a single path segment", ErrInvalidPrefix, prefix)
	}
	return nil
}
