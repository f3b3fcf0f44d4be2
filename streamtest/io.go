package streamtest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
)

// TestRead checks sequential and positional reads.
func TestRead(t *testing.T, open Opener) {
	t.Run("sequential", func(t *testing.T) {
		h, err := open("foobar", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		p := make([]byte, 4)
		n, err := h.Read(p)
		require.NoError(t, err)
		assert.Equal(t, "foob", string(p[:n]))
		assert.Equal(t, int64(4), h.Tell())
		assert.False(t, h.EOF())

		n, err = h.Read(p)
		require.NoError(t, err)
		assert.Equal(t, "ar", string(p[:n]))
		assert.Equal(t, int64(6), h.Tell())
		assert.True(t, h.EOF())

		n, err = h.Read(p)
		assert.ErrorIs(t, err, io.EOF)
		assert.Zero(t, n)
		assert.Equal(t, int64(6), h.Tell())
		assert.True(t, h.EOF(), "EOF must stay set without a seek or write")
	})

	t.Run("read all", func(t *testing.T) {
		h, err := open("foobar", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		data, err := io.ReadAll(h)
		require.NoError(t, err)
		assert.Equal(t, "foobar", string(data))
	})

	t.Run("empty buffer is at eof", func(t *testing.T) {
		h, err := open("", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		assert.True(t, h.EOF())
		_, err = h.Read(make([]byte, 1))
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("empty read", func(t *testing.T) {
		h, err := open("foobar", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		n, err := h.Read(nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, int64(0), h.Tell())
	})

	t.Run("read at keeps cursor", func(t *testing.T) {
		h, err := open("foobar", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		p := make([]byte, 3)
		n, err := h.ReadAt(p, 3)
		require.NoError(t, err)
		assert.Equal(t, "bar", string(p[:n]))
		assert.Equal(t, int64(0), h.Tell())

		_, err = h.ReadAt(p, 5)
		assert.ErrorIs(t, err, io.EOF)

		_, err = h.ReadAt(p, -1)
		assert.Equal(t, errors.CodeNegativeOffset, errors.GetCode(err))
	})

	t.Run("read at not readable", func(t *testing.T) {
		h, err := open("foobar", "w", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.ReadAt(make([]byte, 1), 0)
		assert.Equal(t, errors.CodeNotReadable, errors.GetCode(err))
	})
}

// TestWrite checks splicing writes and permission handling.
func TestWrite(t *testing.T, open Opener) {
	t.Run("overwrite from start", func(t *testing.T) {
		h, err := open("foobar", "r+b", 0)
		require.NoError(t, err)
		defer h.Close()

		n, err := h.Write([]byte("bar"))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, int64(3), h.Tell())
		assert.Equal(t, "barbar", string(h.Contents()))
	})

	t.Run("overwrite past end appends", func(t *testing.T) {
		h, err := open("foobar", "r+", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.Seek(4, io.SeekStart)
		require.NoError(t, err)
		_, err = h.Write([]byte("1234"))
		require.NoError(t, err)
		assert.Equal(t, "foob1234", string(h.Contents()))
		assert.Equal(t, int64(8), h.Tell())
	})

	t.Run("append mode", func(t *testing.T) {
		h, err := open("foobar", "a", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.Write([]byte("baz"))
		require.NoError(t, err)
		assert.Equal(t, "foobarbaz", string(h.Contents()))
	})

	t.Run("write mode starts empty", func(t *testing.T) {
		h, err := open("foobar", "w", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.Write([]byte("x"))
		require.NoError(t, err)
		assert.Equal(t, "x", string(h.Contents()))
	})

	t.Run("round trip", func(t *testing.T) {
		h, err := open("", "w+", 0)
		require.NoError(t, err)
		defer h.Close()

		payload := []byte("hello\x00world")
		_, err = h.Write(payload)
		require.NoError(t, err)

		pos, err := h.Seek(0, io.SeekStart)
		require.NoError(t, err)
		assert.Zero(t, pos)

		got := make([]byte, len(payload))
		n, err := h.Read(got)
		require.NoError(t, err)
		assert.Equal(t, payload, got[:n])
	})

	t.Run("not writable", func(t *testing.T) {
		h, err := open("foobar", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		n, err := h.Write([]byte("x"))
		assert.Zero(t, n)
		assert.Equal(t, errors.CodeNotWritable, errors.GetCode(err))
		assert.Equal(t, "foobar", string(h.Contents()))
		assert.Equal(t, int64(0), h.Tell())
	})

	t.Run("write at keeps cursor", func(t *testing.T) {
		h, err := open("foobar", "r+", 0)
		require.NoError(t, err)
		defer h.Close()

		n, err := h.WriteAt([]byte("XY"), 8)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, "foobar\x00\x00XY", string(h.Contents()))
		assert.Equal(t, int64(0), h.Tell())

		_, err = h.WriteAt([]byte("x"), -1)
		assert.Equal(t, errors.CodeNegativeOffset, errors.GetCode(err))
	})

	t.Run("eof follows cursor", func(t *testing.T) {
		h, err := open("", "w+", 0)
		require.NoError(t, err)
		defer h.Close()

		assert.True(t, h.EOF())
		_, err = h.Write([]byte("ab"))
		require.NoError(t, err)
		assert.True(t, h.EOF())

		_, err = h.Seek(0, io.SeekStart)
		require.NoError(t, err)
		assert.False(t, h.EOF())

		_, err = h.Seek(0, io.SeekEnd)
		require.NoError(t, err)
		require.True(t, h.EOF())
		require.NoError(t, h.Truncate(5))
		assert.False(t, h.EOF(), "growing past the cursor clears eof")
	})
}
