package streamtest

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/stream"
)

// TestModes checks the open-mode table against a buffer holding "foobar".
func TestModes(t *testing.T, open Opener) {
	tests := []struct {
		mode     string
		readable bool
		writable bool
		cursor   int64
		content  string
	}{
		{mode: "r", readable: true, cursor: 0, content: "foobar"},
		{mode: "r+", readable: true, writable: true, cursor: 0, content: "foobar"},
		{mode: "c+", readable: true, writable: true, cursor: 0, content: "foobar"},
		{mode: "w", writable: true, cursor: 0, content: ""},
		{mode: "w+", readable: true, writable: true, cursor: 0, content: ""},
		{mode: "a", writable: true, cursor: 6, content: "foobar"},
		{mode: "a+", readable: true, writable: true, cursor: 6, content: "foobar"},
		{mode: "c", writable: true, cursor: 0, content: "foobar"},
		{mode: "rb", readable: true, cursor: 0, content: "foobar"},
		{mode: "rt", readable: true, cursor: 0, content: "foobar"},
		{mode: "r+b", readable: true, writable: true, cursor: 0, content: "foobar"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			h, err := open("foobar", tt.mode, 0)
			require.NoError(t, err)
			defer h.Close()

			assert.Equal(t, tt.cursor, h.Tell())
			assert.Equal(t, tt.content, string(h.Contents()))

			_, err = h.Read(make([]byte, 1))
			if tt.readable {
				if tt.cursor < int64(len(tt.content)) {
					assert.NoError(t, err)
				}
			} else {
				assert.Equal(t, errors.CodeNotReadable, errors.GetCode(err))
				assert.Equal(t, tt.cursor, h.Tell(), "failed read must not move the cursor")
			}

			before := string(h.Contents())
			n, err := h.Write(nil)
			if tt.writable {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, errors.CodeNotWritable, errors.GetCode(err))
				assert.Zero(t, n)
			}
			assert.Equal(t, before, string(h.Contents()))
		})
	}

	t.Run("invalid mode", func(t *testing.T) {
		for _, m := range []string{"x", "", "rw", "R"} {
			h, err := open("foobar", m, 0)
			assert.Nil(t, h)
			assert.ErrorIs(t, err, stream.ErrOpenFailed)
			assert.NotEqual(t, errors.CodeInvalidMode, errors.GetCode(err))
		}
	})

	t.Run("invalid mode reported", func(t *testing.T) {
		h, err := open("foobar", "x", stream.ReportErrors)
		assert.Nil(t, h)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, stream.ErrOpenFailed))
		assert.Equal(t, errors.CodeInvalidMode, errors.GetCode(err))
	})
}
