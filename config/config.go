// Package config loads stringstream configuration written in CUE.
//
// A configuration declares which URL schemes open private or named streams,
// whether text-mode streams translate line feeds, and where registry
// snapshots are kept:
//
//	version:  "0.1.0"
//	crlfHost: false
//	schemes: [
//	    {name: "string", variant: "private"},
//	    {name: "named", variant: "named"},
//	]
//	snapshot: {dir: "snapshots", key: "registry.json"}
//
// Documents are read from a go-billy filesystem and checked against an
// embedded CUE schema before being decoded.
//
// # Basic Usage
//
//	fs := osfs.New("/etc/stringstream")
//	cfg, err := config.Load(ctx, fs, "stringstream.cue")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	table, err := cfg.NewTable(registry.New(), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h, err := table.Open("string://hello", "r", 0)
package config

import (
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/registry"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/snapshot/billystore"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/stream"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/wrapper"
)

// Config is a decoded configuration document.
type Config struct {
	// Version is the schema version the document was written against.
	Version string `json:"version"`

	// CRLFHost overrides host line-ending detection when set.
	CRLFHost *bool `json:"crlfHost,omitempty"`

	// Schemes lists the URL schemes to register.
	Schemes []Scheme `json:"schemes"`

	// Snapshot locates registry snapshots. Nil when snapshots are not configured.
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// Scheme binds a URL scheme to a stream variant.
type Scheme struct {
	Name    string `json:"name"`
	Variant string `json:"variant"`
}

// Snapshot locates registry snapshots on a filesystem.
type Snapshot struct {
	Dir string `json:"dir"`
	Key string `json:"key"`
}

// Validate checks what the schema cannot: version compatibility and
// uniqueness of scheme names.
func (c *Config) Validate() error {
	ok, err := IsCompatible(c.Version)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid configuration version",
			map[string]interface{}{"version": c.Version})
	}
	if !ok {
		return errors.Newf(errors.CodeInvalidConfig,
			"configuration version %s is not compatible with %s", c.Version, SupportedVersion).
			WithContext("version", c.Version)
	}

	seen := make(map[string]bool, len(c.Schemes))
	for _, s := range c.Schemes {
		if seen[s.Name] {
			return errors.Newf(errors.CodeInvalidConfig, "scheme %q declared more than once", s.Name).
				WithContext("scheme", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// StreamOptions returns the handle options implied by the configuration.
func (c *Config) StreamOptions() []stream.Option {
	var opts []stream.Option
	if c.CRLFHost != nil {
		opts = append(opts, stream.WithCRLFHost(*c.CRLFHost))
	}
	return opts
}

// Apply registers every configured scheme on table.
func (c *Config) Apply(table *wrapper.Table) error {
	for _, s := range c.Schemes {
		variant, err := wrapper.ParseVariant(s.Variant)
		if err != nil {
			return fmt.Errorf("scheme %q: %w", s.Name, err)
		}
		if err := table.Register(s.Name, variant); err != nil {
			return fmt.Errorf("scheme %q: %w", s.Name, err)
		}
	}
	return nil
}

// NewTable creates a scheme table backed by reg and applies the
// configuration to it.
func (c *Config) NewTable(reg *registry.Registry, logger *slog.Logger) (*wrapper.Table, error) {
	table := wrapper.New(&wrapper.Config{
		Registry:      reg,
		Logger:        logger,
		StreamOptions: c.StreamOptions(),
	})
	if err := c.Apply(table); err != nil {
		return nil, err
	}
	return table, nil
}

// SnapshotStore returns a snapshot store on filesystem and the key to save
// under. It fails with CodeInvalidConfig when no snapshot section exists.
func (c *Config) SnapshotStore(filesystem billy.Filesystem) (*billystore.Store, string, error) {
	if c.Snapshot == nil {
		return nil, "", errors.New(errors.CodeInvalidConfig, "no snapshot location configured")
	}
	return billystore.New(filesystem, c.Snapshot.Dir), c.Snapshot.Key, nil
}
