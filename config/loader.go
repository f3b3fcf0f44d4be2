package config

import (
	"context"
	_ "embed"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
)

//go:embed schema.cue
var schemaSource []byte

// Load reads, validates and decodes the configuration at path.
func Load(ctx context.Context, filesystem billy.Filesystem, path string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigLoadFailed, "load cancelled")
	}

	data, err := util.ReadFile(filesystem, path)
	if err != nil {
		code := errors.CodeConfigLoadFailed
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return nil, errors.WrapWithContext(
			err,
			code,
			"failed to read configuration",
			map[string]interface{}{
				"path": path,
			},
		)
	}

	return Parse(data, path)
}

// Parse validates and decodes a configuration document. filename is only
// used in error messages.
func Parse(data []byte, filename string) (*Config, error) {
	cueCtx := cuecontext.New()

	schema := cueCtx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "embedded configuration schema is invalid")
	}

	value := cueCtx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigLoadFailed,
			"failed to parse configuration",
			map[string]interface{}{
				"path": filename,
			},
		)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigDecodeFailed,
			"configuration does not match schema",
			map[string]interface{}{
				"path": filename,
			},
		)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, errors.WrapWithContext(
			err,
			errors.CodeConfigDecodeFailed,
			"failed to decode configuration",
			map[string]interface{}{
				"path": filename,
			},
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
