// Package wrapper maps URL schemes to stream variants.
//
// A Table is the seam between a host that deals in URLs ("string://foobar",
// "named://report") and the stream package. Each registered scheme opens
// either private streams, whose payload is the content, or named streams,
// whose payload is a key in the table's registry.
package wrapper

import (
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/registry"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/stream"
)

// Variant selects how a scheme interprets its payload.
type Variant int

const (
	// VariantPrivate opens a stream on a fresh buffer holding the payload.
	VariantPrivate Variant = iota
	// VariantNamed opens a stream on the registry buffer named by the payload.
	VariantNamed
)

// String returns the configuration name of v.
func (v Variant) String() string {
	switch v {
	case VariantPrivate:
		return "private"
	case VariantNamed:
		return "named"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant converts a configuration name to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "private":
		return VariantPrivate, nil
	case "named":
		return VariantNamed, nil
	default:
		return 0, errors.Newf(errors.CodeInvalidInput, "unknown variant %q", s)
	}
}

// Config holds the configuration for a Table.
type Config struct {
	// Registry backs every named scheme. A fresh registry is created when nil.
	Registry *registry.Registry

	// Logger receives scheme registration and stream events. Can be nil.
	Logger *slog.Logger

	// StreamOptions are applied to every handle the table opens.
	StreamOptions []stream.Option
}

// Table is a thread-safe scheme table.
type Table struct {
	// schemes holds the registered variants indexed by scheme.
	schemes map[string]Variant

	registry   *registry.Registry
	logger     *slog.Logger
	streamOpts []stream.Option

	// mu protects concurrent access to schemes.
	mu sync.RWMutex
}

// New creates an empty Table.
func New(config *Config) *Table {
	if config == nil {
		config = &Config{}
	}

	reg := config.Registry
	if reg == nil {
		reg = registry.New(registry.WithLogger(config.Logger))
	}

	opts := make([]stream.Option, 0, len(config.StreamOptions)+1)
	opts = append(opts, stream.WithLogger(config.Logger))
	opts = append(opts, config.StreamOptions...)

	return &Table{
		schemes:    make(map[string]Variant),
		registry:   reg,
		logger:     config.Logger,
		streamOpts: opts,
	}
}

// Registry returns the registry backing named schemes.
func (t *Table) Registry() *registry.Registry {
	return t.registry
}

// Register binds scheme to variant. It fails if the scheme is already bound.
func (t *Table) Register(scheme string, variant Variant) error {
	if scheme == "" || strings.Contains(scheme, "://") {
		return errors.Newf(errors.CodeInvalidInput, "invalid scheme %q", scheme)
	}
	if variant != VariantPrivate && variant != VariantNamed {
		return errors.Newf(errors.CodeInvalidInput, "invalid variant %d", int(variant))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.schemes[scheme]; exists {
		return errors.Newf(errors.CodeAlreadyExists, "scheme %q already registered", scheme).
			WithContext("scheme", scheme)
	}
	t.schemes[scheme] = variant

	if t.logger != nil {
		t.logger.Debug("scheme registered", "scheme", scheme, "variant", variant.String())
	}
	return nil
}

// Unregister removes scheme from the table.
func (t *Table) Unregister(scheme string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.schemes[scheme]; !exists {
		return errors.Newf(errors.CodeNotFound, "scheme %q not registered", scheme).
			WithContext("scheme", scheme)
	}
	delete(t.schemes, scheme)
	return nil
}

// Schemes returns the registered schemes in ascending order.
func (t *Table) Schemes() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.schemes))
	for scheme := range t.schemes {
		out = append(out, scheme)
	}
	t.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Open opens url with the variant bound to its scheme.
func (t *Table) Open(url, m string, flags stream.Flags) (*stream.Handle, error) {
	scheme, _ := stream.SplitPath(url)

	t.mu.RLock()
	variant, ok := t.schemes[scheme]
	t.mu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "no stream registered for scheme %q", scheme).
			WithContext("scheme", scheme)
	}

	switch variant {
	case VariantNamed:
		return stream.OpenNamed(t.registry, url, m, flags, t.streamOpts...)
	default:
		return stream.Open(url, m, flags, t.streamOpts...)
	}
}

// Stat opens url read-only and reports its stat information.
func (t *Table) Stat(url string) (fs.FileInfo, error) {
	h, err := t.Open(url, "rb", 0)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", url, err)
	}
	defer h.Close()

	return h.Stat()
}
