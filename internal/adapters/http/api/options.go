package api

import "github.com/okian/homeval/pkg/logger"

const defaultMaxBodyBytes = 1 << 20

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithStrictErrors maps validation failures to 400 and computation failures
// to 500 instead of answering every error body with 200.
func WithStrictErrors(strict bool) Option {
	return func(s *Server) {
		s.strictErrors = strict
	}
}

// WithMaxBodyBytes caps request bodies. Non-positive values are ignored.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used by handlers and middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
