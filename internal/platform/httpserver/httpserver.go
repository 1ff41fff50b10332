// Package httpserver builds the API's *http.Server.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// Timeouts bound each phase of a request. Resolution is a single short
// transaction, so the write budget stays small.
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

var DefaultTimeouts = Timeouts{
	ReadHeader: 5 * time.Second,
	Read:       15 * time.Second,
	Write:      30 * time.Second,
	Idle:       60 * time.Second,
}

type Option func(*http.Server)

func WithTimeouts(t Timeouts) Option {
	return func(s *http.Server) {
		s.ReadHeaderTimeout = t.ReadHeader
		s.ReadTimeout = t.Read
		s.WriteTimeout = t.Write
		s.IdleTimeout = t.Idle
	}
}

// WithLogger routes net/http's internal errors (TLS handshakes, panics in
// hijacked connections) through logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *http.Server) {
		s.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}
}

func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	srv := &http.Server{Addr: addr, Handler: handler}
	WithTimeouts(DefaultTimeouts)(srv)
	for _, opt := range opts {
		opt(srv)
	}
	return srv
}
