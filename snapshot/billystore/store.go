// Package billystore stores registry snapshots as files on a go-billy
// filesystem.
package billystore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/snapshot"
)

// Store keeps one file per snapshot key under a directory of a billy
// filesystem.
type Store struct {
	fs  billy.Filesystem
	dir string
}

// New returns a Store writing under dir on filesystem. An empty dir means
// the filesystem root.
func New(filesystem billy.Filesystem, dir string) *Store {
	return &Store{fs: filesystem, dir: dir}
}

// Put implements snapshot.Store.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("billy: put %q: %w", key, err)
	}

	path, err := s.path(key)
	if err != nil {
		return err
	}
	if s.dir != "" {
		if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("billy: mkdir %q: %w", s.dir, err)
		}
	}
	if err := util.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("billy: write %q: %w", path, err)
	}
	return nil
}

// Get implements snapshot.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("billy: get %q: %w", key, err)
	}

	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(s.fs, path)
	switch {
	case os.IsNotExist(err):
		return nil, errors.WrapWithContext(err, errors.CodeNotFound, "snapshot not found",
			map[string]interface{}{"path": path})
	case err != nil:
		return nil, fmt.Errorf("billy: read %q: %w", path, err)
	}
	return data, nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" {
		return "", errors.New(errors.CodeInvalidInput, "snapshot key cannot be empty")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", errors.Newf(errors.CodeInvalidInput, "snapshot key %q escapes the store directory", key)
		}
	}
	if s.dir == "" {
		return key, nil
	}
	return s.fs.Join(s.dir, key), nil
}

var _ snapshot.Store = (*Store)(nil)
