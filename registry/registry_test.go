package registry

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/buffer"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/internal/logtest"
)

func TestOpenOrCreate(t *testing.T) {
	r := New()

	_, ok := r.Lookup("foo")
	assert.False(t, ok)

	b := r.OpenOrCreate("foo")
	require.NotNil(t, b)
	assert.Equal(t, int64(0), b.Len())

	_, err := b.WriteAt([]byte("bar"), 0)
	require.NoError(t, err)

	again := r.OpenOrCreate("foo")
	assert.Same(t, b, again)
	assert.Equal(t, "bar", again.String())

	found, ok := r.Lookup("foo")
	assert.True(t, ok)
	assert.Same(t, b, found)
	assert.Equal(t, 1, r.Len())
}

func TestOpenOrCreateConcurrent(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	got := make([]*buffer.Buffer, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = r.OpenOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for _, b := range got {
		assert.Same(t, got[0], b)
	}
	assert.Equal(t, 1, r.Len())
}

func TestNames(t *testing.T) {
	r := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.OpenOrCreate(name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
	assert.Empty(t, New().Names())
}

func TestClearDecouplesBoundBuffers(t *testing.T) {
	h := logtest.New()
	r := New(WithLogger(h.Logger()))

	bound := r.OpenOrCreate("foo")
	_, err := bound.WriteAt([]byte("foobar"), 0)
	require.NoError(t, err)

	r.Clear()
	assert.Equal(t, 0, r.Len())

	_, err = bound.WriteAt([]byte("!"), 6)
	require.NoError(t, err)
	assert.Equal(t, "foobar!", bound.String())

	fresh := r.OpenOrCreate("foo")
	assert.NotSame(t, bound, fresh)
	assert.Equal(t, int64(0), fresh.Len())

	entries := h.Find("registry cleared")
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].Attrs["entries"])
}

func TestExportImportRoundTrip(t *testing.T) {
	r := New()
	_, _ = r.OpenOrCreate("foo").WriteAt([]byte("bar"), 0)
	_, _ = r.OpenOrCreate("html").WriteAt([]byte("<a href=\"x\">&</a>"), 0)
	r.OpenOrCreate("empty")

	data, err := r.Export()
	require.NoError(t, err)
	assert.JSONEq(t, `{"foo":"bar","html":"<a href=\"x\">&</a>","empty":""}`, data)
	assert.Contains(t, data, "<a href", "HTML characters stay unescaped")

	other := New()
	other.OpenOrCreate("stale")
	require.NoError(t, other.Import(data))

	assert.Equal(t, []string{"empty", "foo", "html"}, other.Names())
	b, ok := other.Lookup("foo")
	require.True(t, ok)
	assert.Equal(t, "bar", b.String())

	again, err := other.Export()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestExportEmpty(t *testing.T) {
	data, err := New().Export()
	require.NoError(t, err)
	assert.Equal(t, "{}", data)
}

func TestExportRejectsInvalidUTF8(t *testing.T) {
	r := New()
	_, _ = r.OpenOrCreate("bin").WriteAt([]byte{0xff, 0xfe}, 0)

	_, err := r.Export()
	require.Error(t, err)
	assert.Equal(t, errors.CodeSnapshotFailed, errors.GetCode(err))
}

func TestImport(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		names   []string
	}{
		{name: "object", data: `{"a":"1","b":"2"}`, names: []string{"a", "b"}},
		{name: "empty object", data: `{}`, names: []string{}},
		{name: "null", data: `null`, names: []string{}},
		{name: "not json", data: `{`, wantErr: true},
		{name: "array", data: `["a"]`, wantErr: true},
		{name: "non string value", data: `{"a":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			_, _ = r.OpenOrCreate("keep").WriteAt([]byte("me"), 0)

			err := r.Import(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeSnapshotFailed, errors.GetCode(err))
				assert.Equal(t, []string{"keep"}, r.Names(), "registry must be untouched")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.names, r.Names())
		})
	}
}

func TestImportDecouplesBoundBuffers(t *testing.T) {
	r := New()
	bound := r.OpenOrCreate("foo")
	_, _ = bound.WriteAt([]byte("old"), 0)

	require.NoError(t, r.Import(`{"foo":"new"}`))

	assert.Equal(t, "old", bound.String())
	b, _ := r.Lookup("foo")
	assert.Equal(t, "new", b.String())
}

func TestDump(t *testing.T) {
	r := New()
	_, _ = r.OpenOrCreate("b").WriteAt([]byte("x\ny"), 0)
	_, _ = r.OpenOrCreate("a").WriteAt([]byte("foo"), 0)

	var out bytes.Buffer
	require.NoError(t, r.Dump(&out))
	assert.Equal(t,
		"registry (2 entries)\n"+
			"  \"a\": 3 bytes \"foo\"\n"+
			"  \"b\": 3 bytes \"x\\ny\"\n",
		out.String())
}
