package stream_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/internal/logtest"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/registry"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/stream"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/streamtest"
)

func TestPrivateConformance(t *testing.T) {
	streamtest.TestSuite(t, func(content, m string, flags stream.Flags, opts ...stream.Option) (*stream.Handle, error) {
		return stream.Open("string://"+content, m, flags, opts...)
	})
}

func TestNamedConformance(t *testing.T) {
	streamtest.TestSuite(t, func(content, m string, flags stream.Flags, opts ...stream.Option) (*stream.Handle, error) {
		reg := registry.New()
		if _, err := reg.OpenOrCreate("foo").WriteAt([]byte(content), 0); err != nil {
			return nil, err
		}
		return stream.OpenNamed(reg, "named://foo", m, flags, opts...)
	})
}

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path    string
		scheme  string
		payload string
	}{
		{path: "string://foobar", scheme: "string", payload: "foobar"},
		{path: "mystring://a://b", scheme: "mystring", payload: "a://b"},
		{path: "string://", scheme: "string", payload: ""},
		{path: "foobar", scheme: "", payload: "foobar"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			scheme, payload := stream.SplitPath(tt.path)
			assert.Equal(t, tt.scheme, scheme)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestOpenPrivatePayload(t *testing.T) {
	h, err := stream.Open("string://foo://bar", "r", 0)
	require.NoError(t, err)
	defer h.Close()

	data, err := io.ReadAll(h)
	require.NoError(t, err)
	assert.Equal(t, "foo://bar", string(data))
	assert.Equal(t, "string://foo://bar", h.Name())
	assert.False(t, h.Named())
}

func TestOpenPrivateTextPayload(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		crlfHost bool
		want     string
	}{
		{name: "translated", mode: "rt", crlfHost: true, want: "foo\r\nbar\r\n"},
		{name: "binary", mode: "rb", crlfHost: true, want: "foo\nbar\r\n"},
		{name: "lf host", mode: "rt", crlfHost: false, want: "foo\nbar\r\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := stream.Open("string://foo\nbar\r\n", tt.mode, 0, stream.WithCRLFHost(tt.crlfHost))
			require.NoError(t, err)
			defer h.Close()

			data, err := io.ReadAll(h)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestOpenNamedDoesNotTranslateExistingContent(t *testing.T) {
	reg := registry.New()
	_, _ = reg.OpenOrCreate("doc").WriteAt([]byte("a\nb"), 0)

	h, err := stream.OpenNamed(reg, "named://doc", "rt", 0, stream.WithCRLFHost(true))
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "a\nb", string(h.Contents()))
}

func TestNamedHandlesShareContent(t *testing.T) {
	reg := registry.New()

	w, err := stream.OpenNamed(reg, "named://foo", "w", 0)
	require.NoError(t, err)
	_, err = w.Write([]byte("foobar"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := stream.OpenNamed(reg, "named://foo", "r", 0)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "foobar", string(data))
	assert.True(t, r.Named())

	other, err := stream.OpenNamed(reg, "named://bar", "r", 0)
	require.NoError(t, err)
	assert.True(t, other.EOF())
	assert.Equal(t, []string{"bar", "foo"}, reg.Names())
}

func TestNamedConcurrentHandles(t *testing.T) {
	reg := registry.New()

	a, err := stream.OpenNamed(reg, "named://log", "a", 0)
	require.NoError(t, err)
	b, err := stream.OpenNamed(reg, "named://log", "r+", 0)
	require.NoError(t, err)

	_, err = a.Write([]byte("abc"))
	require.NoError(t, err)
	_, err = b.Write([]byte("X"))
	require.NoError(t, err)

	assert.Equal(t, "Xbc", string(a.Contents()))
	assert.Equal(t, int64(3), a.Tell())
	assert.Equal(t, int64(1), b.Tell())
}

func TestClearDecouplesOpenHandle(t *testing.T) {
	reg := registry.New()

	h, err := stream.OpenNamed(reg, "named://foo", "w+", 0)
	require.NoError(t, err)
	_, err = h.Write([]byte("foo"))
	require.NoError(t, err)

	reg.Clear()

	_, err = h.Write([]byte("bar"))
	require.NoError(t, err)
	assert.Equal(t, "foobar", string(h.Contents()))

	fresh, err := stream.OpenNamed(reg, "named://foo", "r", 0)
	require.NoError(t, err)
	assert.Empty(t, fresh.Contents())
}

func TestCloseKeepsNamedContent(t *testing.T) {
	reg := registry.New()

	h, err := stream.OpenNamed(reg, "named://keep", "w", 0)
	require.NoError(t, err)
	_, err = h.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	b, ok := reg.Lookup("keep")
	require.True(t, ok)
	assert.Equal(t, "data", b.String())
}

func TestOpenLogging(t *testing.T) {
	t.Run("debug on open", func(t *testing.T) {
		logs := logtest.New()
		h, err := stream.Open("string://foobar", "a+", 0, stream.WithLogger(logs.Logger()))
		require.NoError(t, err)
		require.NoError(t, h.Close())

		opened := logs.Find("stream opened")
		require.Len(t, opened, 1)
		assert.Equal(t, slog.LevelDebug, opened[0].Level)
		assert.Equal(t, "string", opened[0].Attrs["scheme"])
		assert.Equal(t, "a+", opened[0].Attrs["mode"])
		assert.Equal(t, "6", opened[0].Attrs["size"])
		assert.Len(t, logs.Find("stream closed"), 1)
	})

	t.Run("reported invalid mode", func(t *testing.T) {
		logs := logtest.New()
		_, err := stream.Open("string://foobar", "q", stream.ReportErrors, stream.WithLogger(logs.Logger()))
		assert.ErrorIs(t, err, stream.ErrOpenFailed)
		assert.Equal(t, errors.CodeInvalidMode, errors.GetCode(err))

		entries := logs.Find("invalid mode specified")
		require.Len(t, entries, 1)
		assert.Equal(t, slog.LevelError, entries[0].Level)
		assert.Equal(t, "q", entries[0].Attrs["mode"])
	})

	t.Run("soft invalid mode is silent", func(t *testing.T) {
		logs := logtest.New()
		_, err := stream.Open("string://foobar", "q", 0, stream.WithLogger(logs.Logger()))
		assert.Equal(t, stream.ErrOpenFailed, err)
		assert.Empty(t, logs.Entries())
	})
}

func TestFlags(t *testing.T) {
	h, err := stream.Open("string://x", "r", stream.ReportErrors)
	require.NoError(t, err)
	assert.Equal(t, stream.ReportErrors, h.Flags())
}
