// Package registry keeps named buffers that outlive the handles opened on
// them.
//
// A Registry maps names to shared *buffer.Buffer values. Looking up an
// unknown name creates an empty entry; entries are never pruned on their own.
// Clear and Import replace the mapping, but handles that already hold a buffer
// keep using it.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/buffer"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
)

// Registry is a thread-safe collection of named buffers.
type Registry struct {
	// entries holds the buffers keyed by name
	entries map[string]*buffer.Buffer
	// mu protects entries; buffer content is guarded by each buffer
	mu     sync.RWMutex
	logger *slog.Logger
}

type registryOptions struct {
	logger *slog.Logger
}

// Option is a functional option for configuring a Registry.
type Option func(*registryOptions)

// WithLogger configures the registry with a custom logger.
// If logger is nil, logging will be disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *registryOptions) {
		opts.logger = logger
	}
}

// New creates an empty registry.
func New(options ...Option) *Registry {
	opts := &registryOptions{}
	for _, option := range options {
		option(opts)
	}
	return &Registry{
		entries: make(map[string]*buffer.Buffer),
		logger:  opts.logger,
	}
}

// OpenOrCreate returns the buffer stored under name, creating an empty one
// if there is none.
func (r *Registry) OpenOrCreate(name string) *buffer.Buffer {
	r.mu.RLock()
	b, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok = r.entries[name]; ok {
		return b
	}
	b = &buffer.Buffer{}
	r.entries[name] = b
	return b
}

// Lookup returns the buffer stored under name without creating it.
func (r *Registry) Lookup(name string) (*buffer.Buffer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.entries[name]
	return b, ok
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear drops every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	n := len(r.entries)
	r.entries = make(map[string]*buffer.Buffer)
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Info("registry cleared", "entries", n)
	}
}

// Export serializes the registry as a JSON object mapping each name to its
// content. Content that is not valid UTF-8 has no JSON string form and makes
// Export fail with CodeSnapshotFailed.
func (r *Registry) Export() (string, error) {
	snapshot := make(map[string]string)
	for name, b := range r.snapshot() {
		content := b.String()
		if !utf8.ValidString(content) {
			return "", errors.Newf(errors.CodeSnapshotFailed, "entry %q is not valid UTF-8", name).
				WithContext("name", name)
		}
		snapshot[name] = content
	}

	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snapshot); err != nil {
		return "", errors.Wrap(err, errors.CodeSnapshotFailed, "failed to encode registry")
	}
	return string(bytes.TrimSuffix(out.Bytes(), []byte("\n"))), nil
}

// Import replaces the whole mapping with the JSON object in data. On error
// the registry is left untouched.
func (r *Registry) Import(data string) error {
	var snapshot map[string]string
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return errors.Wrap(err, errors.CodeSnapshotFailed, "failed to decode registry snapshot")
	}

	entries := make(map[string]*buffer.Buffer, len(snapshot))
	for name, content := range snapshot {
		entries[name] = buffer.NewString(content)
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Info("registry imported", "entries", len(entries))
	}
	return nil
}

// Dump writes a human-readable listing of every entry to w, in name order.
func (r *Registry) Dump(w io.Writer) error {
	entries := r.snapshot()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := fmt.Fprintf(w, "registry (%d entries)\n", len(names)); err != nil {
		return fmt.Errorf("dump registry: %w", err)
	}
	for _, name := range names {
		content := entries[name].String()
		if _, err := fmt.Fprintf(w, "  %s: %d bytes %s\n",
			strconv.Quote(name), len(content), strconv.Quote(content)); err != nil {
			return fmt.Errorf("dump registry: %w", err)
		}
	}
	return nil
}

// snapshot returns a shallow copy of the current mapping.
func (r *Registry) snapshot() map[string]*buffer.Buffer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*buffer.Buffer, len(r.entries))
	for name, b := range r.entries {
		out[name] = b
	}
	return out
}
