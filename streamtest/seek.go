package streamtest

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/buffer"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
)

// TestSeek checks cursor movement and auto-extension.
func TestSeek(t *testing.T, open Opener) {
	tests := []struct {
		name    string
		mode    string
		offset  int64
		whence  int
		wantPos int64
		content string
	}{
		{name: "current past end", mode: "r+", offset: 8, whence: io.SeekCurrent, wantPos: 8, content: "foobar\x00\x00"},
		{name: "start past end", mode: "r+", offset: 7, whence: io.SeekStart, wantPos: 7, content: "foobar\x00"},
		{name: "end backwards", mode: "r", offset: -5, whence: io.SeekEnd, wantPos: 1, content: "foobar"},
		{name: "end forwards", mode: "r+", offset: 3, whence: io.SeekEnd, wantPos: 9, content: "foobar\x00\x00\x00"},
		{name: "start within", mode: "r", offset: 2, whence: io.SeekStart, wantPos: 2, content: "foobar"},
		{name: "read only handle still extends", mode: "r", offset: 7, whence: io.SeekStart, wantPos: 7, content: "foobar\x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := open("foobar", tt.mode, 0)
			require.NoError(t, err)
			defer h.Close()

			pos, err := h.Seek(tt.offset, tt.whence)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPos, pos)
			assert.Equal(t, tt.wantPos, h.Tell())
			assert.Equal(t, tt.content, string(h.Contents()))
		})
	}

	t.Run("end backwards then read", func(t *testing.T) {
		h, err := open("foobar", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.Seek(-5, io.SeekEnd)
		require.NoError(t, err)
		p := make([]byte, 5)
		n, err := h.Read(p)
		require.NoError(t, err)
		assert.Equal(t, "oobar", string(p[:n]))
	})

	t.Run("seek end then write", func(t *testing.T) {
		h, err := open("foobar", "r+", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.Seek(3, io.SeekEnd)
		require.NoError(t, err)
		_, err = h.Write([]byte("foo"))
		require.NoError(t, err)
		assert.Equal(t, "foobar\x00\x00\x00foo", string(h.Contents()))
	})

	t.Run("invalid whence", func(t *testing.T) {
		h, err := open("foobar", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.Seek(2, io.SeekStart)
		require.NoError(t, err)

		_, err = h.Seek(1, 42)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidWhence, errors.GetCode(err))
		assert.Equal(t, int64(2), h.Tell())
		assert.Equal(t, "foobar", string(h.Contents()))
	})

	t.Run("negative result", func(t *testing.T) {
		h, err := open("foobar", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.Seek(3, io.SeekStart)
		require.NoError(t, err)

		for _, whence := range []int{io.SeekStart, io.SeekCurrent, io.SeekEnd} {
			_, err = h.Seek(-10, whence)
			assert.Equal(t, errors.CodeNegativeOffset, errors.GetCode(err))
			assert.Equal(t, int64(3), h.Tell())
		}
	})

	t.Run("target too large", func(t *testing.T) {
		tests := []struct {
			name   string
			offset int64
			whence int
		}{
			{name: "start past max", offset: math.MaxInt64 / 2, whence: io.SeekStart},
			{name: "start just past max", offset: buffer.MaxSize + 1, whence: io.SeekStart},
			{name: "end past max", offset: buffer.MaxSize, whence: io.SeekEnd},
			{name: "current overflows", offset: math.MaxInt64, whence: io.SeekCurrent},
			{name: "end overflows", offset: math.MaxInt64, whence: io.SeekEnd},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h, err := open("foobar", "r+", 0)
				require.NoError(t, err)
				defer h.Close()

				_, err = h.Seek(2, io.SeekStart)
				require.NoError(t, err)

				pos, err := h.Seek(tt.offset, tt.whence)
				require.Error(t, err)
				assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
				assert.Equal(t, int64(2), pos)
				assert.Equal(t, int64(2), h.Tell())
				assert.Equal(t, "foobar", string(h.Contents()))
			})
		}
	})

	t.Run("eof after seeking to end", func(t *testing.T) {
		h, err := open("foobar", "r", 0)
		require.NoError(t, err)
		defer h.Close()

		assert.False(t, h.EOF())
		_, err = h.Seek(0, io.SeekEnd)
		require.NoError(t, err)
		assert.True(t, h.EOF())
	})
}

// TestTruncate checks resizing through the handle.
func TestTruncate(t *testing.T, open Opener) {
	tests := []struct {
		name    string
		size    int64
		content string
	}{
		{name: "extend", size: 9, content: "foobar\x00\x00\x00"},
		{name: "shrink", size: 3, content: "foo"},
		{name: "same", size: 6, content: "foobar"},
		{name: "empty", size: 0, content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := open("foobar", "r+", 0)
			require.NoError(t, err)
			defer h.Close()

			require.NoError(t, h.Truncate(tt.size))
			assert.Equal(t, tt.content, string(h.Contents()))

			require.NoError(t, h.Truncate(tt.size))
			assert.Equal(t, tt.content, string(h.Contents()))
			assert.Equal(t, int64(0), h.Tell())
		})
	}

	t.Run("negative", func(t *testing.T) {
		h, err := open("foobar", "r+", 0)
		require.NoError(t, err)
		defer h.Close()

		err = h.Truncate(-1)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		assert.Equal(t, "foobar", string(h.Contents()))
	})

	t.Run("too large", func(t *testing.T) {
		h, err := open("foobar", "r+", 0)
		require.NoError(t, err)
		defer h.Close()

		for _, size := range []int64{buffer.MaxSize + 1, math.MaxInt64} {
			err = h.Truncate(size)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Equal(t, "foobar", string(h.Contents()))
		}

		_, err = h.WriteAt([]byte("x"), buffer.MaxSize)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		assert.ErrorIs(t, err, buffer.ErrTooLarge)
		assert.Equal(t, "foobar", string(h.Contents()))
	})

	t.Run("growing past cursor clears eof", func(t *testing.T) {
		h, err := open("foobar", "r+", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.Seek(0, io.SeekEnd)
		require.NoError(t, err)
		require.True(t, h.EOF())

		require.NoError(t, h.Truncate(9))
		assert.False(t, h.EOF())
		assert.Equal(t, int64(6), h.Tell())
	})

	t.Run("cursor beyond shrunk end", func(t *testing.T) {
		h, err := open("foobar", "r+", 0)
		require.NoError(t, err)
		defer h.Close()

		_, err = h.Seek(5, io.SeekStart)
		require.NoError(t, err)
		require.NoError(t, h.Truncate(2))
		assert.True(t, h.EOF())

		_, err = h.Write([]byte("z"))
		require.NoError(t, err)
		assert.Equal(t, "fo\x00\x00\x00z", string(h.Contents()))
	})
}
