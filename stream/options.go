package stream

import (
	"log/slog"
	"runtime"
)

// Flags carries the open-call options of a handle.
type Flags uint

const (
	// ReportErrors turns an invalid mode into a logged, hard error instead of
	// a bare ErrOpenFailed.
	ReportErrors Flags = 1 << iota
)

// handleOptions holds configuration options for a Handle.
type handleOptions struct {
	logger   *slog.Logger
	crlfHost bool
}

// Option is a functional option for configuring a Handle.
type Option func(*handleOptions)

// WithLogger configures the handle with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *handleOptions) {
		opts.logger = logger
	}
}

// WithCRLFHost overrides whether the host uses two-byte line endings. Text
// mode translation only happens on such hosts. The default follows
// runtime.GOOS.
func WithCRLFHost(crlf bool) Option {
	return func(opts *handleOptions) {
		opts.crlfHost = crlf
	}
}

func defaultOptions() *handleOptions {
	return &handleOptions{
		logger:   nil,
		crlfHost: runtime.GOOS == "windows",
	}
}

func applyOptions(opts *handleOptions, options []Option) {
	for _, option := range options {
		option(opts)
	}
}
