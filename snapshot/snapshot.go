// Package snapshot persists registry contents across process boundaries.
//
// Save exports a registry and writes it to a Store; Restore reads it back
// and replaces the registry's mapping. Store implementations live in the
// billystore and s3store subpackages; MemoryStore is provided for tests.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/registry"
)

// Store is a key/value blob store for snapshots.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes data under key, replacing any previous snapshot.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the snapshot under key. A missing snapshot is reported with
	// errors.CodeNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}

type snapshotOptions struct {
	logger *slog.Logger
}

// Option is a functional option for Save and Restore.
type Option func(*snapshotOptions)

// WithLogger configures a logger for snapshot events.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *snapshotOptions) {
		opts.logger = logger
	}
}

func applyOptions(options []Option) *snapshotOptions {
	opts := &snapshotOptions{}
	for _, option := range options {
		option(opts)
	}
	return opts
}

// Save exports reg and writes it to store under key.
func Save(ctx context.Context, reg *registry.Registry, store Store, key string, options ...Option) error {
	opts := applyOptions(options)

	select {
	case <-ctx.Done():
		return fmt.Errorf("save snapshot cancelled: %w", ctx.Err())
	default:
	}

	data, err := reg.Export()
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	if err := store.Put(ctx, key, []byte(data)); err != nil {
		if opts.logger != nil {
			opts.logger.ErrorContext(ctx, "failed to save snapshot", "key", key, "error", err)
		}
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}

	if opts.logger != nil {
		opts.logger.InfoContext(ctx, "snapshot saved",
			"key", key,
			"entries", reg.Len(),
			"bytes", len(data),
		)
	}
	return nil
}

// Restore reads the snapshot under key and imports it into reg. On any
// error reg is left untouched.
func Restore(ctx context.Context, reg *registry.Registry, store Store, key string, options ...Option) error {
	opts := applyOptions(options)

	select {
	case <-ctx.Done():
		return fmt.Errorf("restore snapshot cancelled: %w", ctx.Err())
	default:
	}

	data, err := store.Get(ctx, key)
	if err != nil {
		if opts.logger != nil {
			opts.logger.ErrorContext(ctx, "failed to restore snapshot", "key", key, "error", err)
		}
		return fmt.Errorf("restore snapshot %q: %w", key, err)
	}
	if err := reg.Import(string(data)); err != nil {
		return fmt.Errorf("restore snapshot %q: %w", key, err)
	}

	if opts.logger != nil {
		opts.logger.InfoContext(ctx, "snapshot restored",
			"key", key,
			"entries", reg.Len(),
		)
	}
	return nil
}
