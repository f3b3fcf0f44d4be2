package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/internal/logtest"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/registry"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/snapshot"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/wrapper"
)

// setupTestFS creates a memory filesystem and loads test fixtures.
func setupTestFS(t *testing.T, fixtures ...string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()

	for _, fixture := range fixtures {
		data, err := os.ReadFile(filepath.Join("testdata", fixture))
		require.NoError(t, err, "read fixture %s", fixture)
		require.NoError(t, util.WriteFile(fs, fixture, data, 0o644), "write fixture %s", fixture)
	}

	return fs
}

func TestLoad_Valid(t *testing.T) {
	ctx := context.Background()
	fs := setupTestFS(t, "valid.cue")

	cfg, err := Load(ctx, fs, "valid.cue")
	require.NoError(t, err)

	assert.Equal(t, "0.1.0", cfg.Version)
	require.NotNil(t, cfg.CRLFHost)
	assert.True(t, *cfg.CRLFHost)
	assert.Equal(t, []Scheme{
		{Name: "string", Variant: "private"},
		{Name: "mystring", Variant: "private"},
		{Name: "named", Variant: "named"},
	}, cfg.Schemes)
	require.NotNil(t, cfg.Snapshot)
	assert.Equal(t, Snapshot{Dir: "state", Key: "registry.json"}, *cfg.Snapshot)
	assert.Len(t, cfg.StreamOptions(), 1)
}

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(context.Background(), setupTestFS(t, "minimal.cue"), "minimal.cue")
	require.NoError(t, err)

	assert.Equal(t, "0.1.3", cfg.Version)
	assert.Nil(t, cfg.CRLFHost)
	assert.Empty(t, cfg.Schemes)
	assert.Nil(t, cfg.Snapshot)
	assert.Empty(t, cfg.StreamOptions())

	_, _, err = cfg.SnapshotStore(memfs.New())
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		fixture  string
		path     string
		wantCode errors.ErrorCode
	}{
		{name: "missing file", path: "absent.cue", wantCode: errors.CodeNotFound},
		{name: "syntax error", fixture: "syntax.cue", wantCode: errors.CodeConfigLoadFailed},
		{name: "unknown variant", fixture: "bad-variant.cue", wantCode: errors.CodeConfigDecodeFailed},
		{name: "unknown field", fixture: "unknown-field.cue", wantCode: errors.CodeConfigDecodeFailed},
		{name: "incompatible version", fixture: "bad-version.cue", wantCode: errors.CodeInvalidConfig},
		{name: "duplicate scheme", fixture: "duplicate.cue", wantCode: errors.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fixtures []string
			path := tt.path
			if tt.fixture != "" {
				fixtures = append(fixtures, tt.fixture)
				path = tt.fixture
			}

			_, err := Load(context.Background(), setupTestFS(t, fixtures...), path)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, setupTestFS(t, "valid.cue"), "valid.cue")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantCode errors.ErrorCode
	}{
		{name: "missing version", src: `schemes: []`, wantCode: errors.CodeConfigDecodeFailed},
		{name: "invalid version", src: `version: "one"` + "\n" + `schemes: []`, wantCode: errors.CodeInvalidConfig},
		{name: "invalid scheme name", src: `version: "0.1.0"` + "\n" + `schemes: [{name: "1abc"}]`, wantCode: errors.CodeConfigDecodeFailed},
		{name: "wrong type", src: `version: "0.1.0"` + "\n" + `crlfHost: "yes"` + "\n" + `schemes: []`, wantCode: errors.CodeConfigDecodeFailed},
		{name: "ok", src: `version: "0.1.0"` + "\n" + `schemes: [{name: "s"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.src), "inline.cue")
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "private", cfg.Schemes[0].Variant)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		version string
		want    bool
		wantErr bool
	}{
		{version: "0.1.0", want: true},
		{version: "0.1.9", want: true},
		{version: "0.2.0", want: false},
		{version: "1.0.0", want: false},
		{version: "0.0.9", want: false},
		{version: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := IsCompatible(tt.version)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTable(t *testing.T) {
	cfg, err := Load(context.Background(), setupTestFS(t, "valid.cue"), "valid.cue")
	require.NoError(t, err)

	logs := logtest.New()
	reg := registry.New()
	table, err := cfg.NewTable(reg, logs.Logger())
	require.NoError(t, err)

	assert.Equal(t, []string{"mystring", "named", "string"}, table.Schemes())
	assert.Same(t, reg, table.Registry())
	assert.Len(t, logs.Find("scheme registered"), 3)

	h, err := table.Open("mystring://a\nb", "rt", 0)
	require.NoError(t, err)
	data, err := io.ReadAll(h)
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb", string(data), "crlfHost from config applies to handles")

	w, err := table.Open("named://doc", "w", 0)
	require.NoError(t, err)
	_, err = w.Write([]byte("kept"))
	require.NoError(t, err)
	b, ok := reg.Lookup("doc")
	require.True(t, ok)
	assert.Equal(t, "kept", b.String())
}

func TestApplyConflicts(t *testing.T) {
	cfg := &Config{Version: "0.1.0", Schemes: []Scheme{{Name: "string", Variant: "private"}}}

	table := wrapper.New(nil)
	require.NoError(t, table.Register("string", wrapper.VariantNamed))

	err := cfg.Apply(table)
	assert.Equal(t, errors.CodeAlreadyExists, errors.GetCode(err))

	cfg.Schemes[0].Variant = "bogus"
	err = cfg.Apply(wrapper.New(nil))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	fs := setupTestFS(t, "valid.cue")

	cfg, err := Load(ctx, fs, "valid.cue")
	require.NoError(t, err)

	store, key, err := cfg.SnapshotStore(fs)
	require.NoError(t, err)
	assert.Equal(t, "registry.json", key)

	reg := registry.New()
	_, _ = reg.OpenOrCreate("foo").WriteAt([]byte("bar"), 0)
	require.NoError(t, snapshot.Save(ctx, reg, store, key))

	data, err := util.ReadFile(fs, "state/registry.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"foo":"bar"}`, string(data))
}
