package streamtest

import (
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/newline"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/stream"
)

// TestMetadata checks Stat, SetOption and locking.
func TestMetadata(t *testing.T, open Opener) {
	h, err := open("foobar", "r", 0)
	require.NoError(t, err)
	defer h.Close()

	info, err := h.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size())
	assert.False(t, info.IsDir())
	assert.Equal(t, h.Name(), info.Name())

	rec, ok := info.Sys().(*stream.Record)
	require.True(t, ok)
	assert.Equal(t, stream.Record{Size: 6, Blksize: -1, Blocks: -1}, *rec)

	assert.False(t, h.SetOption(1, 2, 3))
	assert.ErrorIs(t, h.Lock(), billy.ErrNotSupported)
	assert.ErrorIs(t, h.Unlock(), billy.ErrNotSupported)
}

// TestClose checks that a closed handle rejects further use.
func TestClose(t *testing.T, open Opener) {
	h, err := open("foobar", "r+", 0)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	assert.ErrorIs(t, h.Close(), fs.ErrClosed)

	_, err = h.Read(make([]byte, 1))
	assert.ErrorIs(t, err, fs.ErrClosed)
	_, err = h.Write([]byte("x"))
	assert.ErrorIs(t, err, fs.ErrClosed)
	_, err = h.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, fs.ErrClosed)
	assert.ErrorIs(t, h.Truncate(0), fs.ErrClosed)
	_, err = h.Stat()
	assert.ErrorIs(t, err, fs.ErrClosed)
	assert.True(t, h.EOF())
	assert.Nil(t, h.Contents())
}

// TestText checks line feed translation on writes. Translation needs both a
// 't' in the mode and a CRLF host.
func TestText(t *testing.T, open Opener) {
	tests := []struct {
		name     string
		mode     string
		crlfHost bool
		want     string
	}{
		{name: "text on crlf host", mode: "w+t", crlfHost: true, want: "a\r\nb\r\n"},
		{name: "text marker first", mode: "tw", crlfHost: true, want: "a\r\nb\r\n"},
		{name: "binary on crlf host", mode: "w+b", crlfHost: true, want: "a\nb\r\n"},
		{name: "plain on crlf host", mode: "w+", crlfHost: true, want: "a\nb\r\n"},
		{name: "text on lf host", mode: "w+t", crlfHost: false, want: "a\nb\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := open("", tt.mode, 0, stream.WithCRLFHost(tt.crlfHost))
			require.NoError(t, err)
			defer h.Close()

			input := "a\nb\r\n"
			n, err := h.Write([]byte(input))
			require.NoError(t, err)
			assert.Equal(t, len(input), n)
			assert.Equal(t, tt.want, string(h.Contents()))
			assert.Equal(t, int64(len(tt.want)), h.Tell())
		})
	}

	t.Run("read back is not translated", func(t *testing.T) {
		h, err := open("", "w+t", 0, stream.WithCRLFHost(true))
		require.NoError(t, err)
		defer h.Close()

		_, err = io.Copy(h, strings.NewReader("x\ny"))
		require.NoError(t, err)
		_, err = h.Seek(0, io.SeekStart)
		require.NoError(t, err)

		data, err := io.ReadAll(h)
		require.NoError(t, err)
		assert.Equal(t, newline.String("x\ny"), string(data))
	})
}
