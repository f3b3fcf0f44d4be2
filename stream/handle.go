// Package stream implements file-like handles over in-memory byte buffers.
//
// A handle is opened with a path of the form "<scheme>://<payload>" and an
// fopen-style mode. The private variant (Open) treats the payload as the
// initial content of a buffer owned by the handle. The named variant
// (OpenNamed) treats the payload as a key into a registry.Registry, so every
// handle opened on the same key shares one buffer.
//
// Seeking or writing past the end of a buffer extends it with zero bytes.
package stream

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/buffer"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/mode"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/newline"
	"github.com/input-output-hk/catalyst-forge-libs/stringstream/registry"
)

// ErrOpenFailed is returned when a handle cannot be opened. Errors reported
// under ReportErrors wrap it as well.
var ErrOpenFailed = stderrors.New("stream: open failed")

const separator = "://"

// SplitPath splits path into its scheme and payload. The payload is
// everything after the first "://"; a path without one has no scheme and is
// its own payload.
func SplitPath(path string) (scheme, payload string) {
	i := strings.Index(path, separator)
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+len(separator):]
}

// Handle is an open stream. A Handle is not safe for concurrent use; handles
// sharing a named buffer may be used from different goroutines.
type Handle struct {
	path  string
	buf   *buffer.Buffer
	named bool

	cursor    int64
	readable  bool
	writable  bool
	normalise bool
	flags     Flags
	closed    bool

	logger *slog.Logger
}

// Open opens a private stream whose initial content is the payload of path.
func Open(path, m string, flags Flags, options ...Option) (*Handle, error) {
	opts := defaultOptions()
	applyOptions(opts, options)

	parsed, err := parseMode(path, m, flags, opts.logger)
	if err != nil {
		return nil, err
	}

	_, content := SplitPath(path)
	text := parsed.Text && opts.crlfHost
	if text {
		content = newline.String(content)
	}

	return newHandle(path, buffer.NewString(content), false, parsed, text, flags, opts), nil
}

// OpenNamed opens a stream on the buffer that reg holds under the payload of
// path, creating an empty one if needed.
func OpenNamed(reg *registry.Registry, path, m string, flags Flags, options ...Option) (*Handle, error) {
	opts := defaultOptions()
	applyOptions(opts, options)

	parsed, err := parseMode(path, m, flags, opts.logger)
	if err != nil {
		return nil, err
	}

	_, name := SplitPath(path)
	text := parsed.Text && opts.crlfHost

	return newHandle(path, reg.OpenOrCreate(name), true, parsed, text, flags, opts), nil
}

func parseMode(path, m string, flags Flags, logger *slog.Logger) (mode.Parsed, error) {
	parsed, err := mode.Parse(m)
	if err == nil {
		return parsed, nil
	}
	if flags&ReportErrors == 0 {
		return mode.Parsed{}, ErrOpenFailed
	}

	scheme, _ := SplitPath(path)
	if logger != nil {
		logger.Error("invalid mode specified",
			"scheme", scheme,
			"mode", m,
			"error", err,
		)
	}
	return mode.Parsed{}, fmt.Errorf("%w: %w", ErrOpenFailed, err)
}

func newHandle(
	path string,
	buf *buffer.Buffer,
	named bool,
	parsed mode.Parsed,
	text bool,
	flags Flags,
	opts *handleOptions,
) *Handle {
	policy := parsed.Mode.Policy()
	if policy.Truncate {
		buf.Reset()
	}

	h := &Handle{
		path:      path,
		buf:       buf,
		named:     named,
		cursor:    policy.InitialCursor(buf.Len()),
		readable:  policy.Readable,
		writable:  policy.Writable,
		normalise: text,
		flags:     flags,
		logger:    opts.logger,
	}

	if h.logger != nil {
		scheme, _ := SplitPath(path)
		h.logger.Debug("stream opened",
			"scheme", scheme,
			"mode", parsed.Mode.String(),
			"named", named,
			"text", text,
			"size", buf.Len(),
		)
	}
	return h
}

// Name returns the path the handle was opened with.
func (h *Handle) Name() string {
	return h.path
}

// Read reads up to len(p) bytes at the cursor and advances it. It returns
// io.EOF once the cursor is at or past the end.
func (h *Handle) Read(p []byte) (int, error) {
	if err := h.check("read"); err != nil {
		return 0, err
	}
	if !h.readable {
		return 0, h.permissionError(errors.CodeNotReadable, "stream is not readable")
	}

	n := copy(p, h.buf.Slice(h.cursor, int64(len(p))))
	h.cursor += int64(n)
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// ReadAt reads len(p) bytes starting at off without moving the cursor.
func (h *Handle) ReadAt(p []byte, off int64) (int, error) {
	if err := h.check("readat"); err != nil {
		return 0, err
	}
	if !h.readable {
		return 0, h.permissionError(errors.CodeNotReadable, "stream is not readable")
	}
	if off < 0 {
		return 0, h.negativeOffset(off)
	}
	return h.buf.ReadAt(p, off)
}

// Write writes p at the cursor, overwriting existing bytes and appending the
// rest. In text mode bare line feeds are stored as CRLF; the cursor advances
// by the number of bytes stored while the returned count is always len(p).
func (h *Handle) Write(p []byte) (int, error) {
	if err := h.check("write"); err != nil {
		return 0, err
	}
	if !h.writable {
		return 0, h.permissionError(errors.CodeNotWritable, "stream is not writable")
	}

	data := h.encode(p)
	if _, err := h.buf.WriteAt(data, h.cursor); err != nil {
		return 0, h.bufferError("write", err)
	}
	h.cursor += int64(len(data))
	if err := h.extend(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteAt writes p at off without moving the cursor.
func (h *Handle) WriteAt(p []byte, off int64) (int, error) {
	if err := h.check("writeat"); err != nil {
		return 0, err
	}
	if !h.writable {
		return 0, h.permissionError(errors.CodeNotWritable, "stream is not writable")
	}
	if off < 0 {
		return 0, h.negativeOffset(off)
	}

	if _, err := h.buf.WriteAt(h.encode(p), off); err != nil {
		return 0, h.bufferError("writeat", err)
	}
	return len(p), nil
}

// Tell returns the cursor position.
func (h *Handle) Tell() int64 {
	return h.cursor
}

// EOF reports whether the cursor is at or past the end of the buffer.
func (h *Handle) EOF() bool {
	if h.closed {
		return true
	}
	return h.cursor >= h.buf.Len()
}

// Seek moves the cursor. whence is one of io.SeekStart, io.SeekCurrent or
// io.SeekEnd. Any other whence, or a resulting position below zero or past
// buffer.MaxSize, leaves the cursor where it was. Seeking past the end
// extends the buffer.
func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	if err := h.check("seek"); err != nil {
		return h.cursor, err
	}

	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = h.cursor
	case io.SeekEnd:
		base = h.buf.Len()
	default:
		return h.cursor, errors.Newf(errors.CodeInvalidWhence, "unknown whence %d", whence).
			WithContext("path", h.path)
	}
	if offset > 0 && base > math.MaxInt64-offset {
		return h.cursor, errors.Newf(errors.CodeInvalidInput, "seek offset %d from %d overflows", offset, base).
			WithContext("path", h.path)
	}

	pos := base + offset
	if pos < 0 {
		return h.cursor, h.negativeOffset(pos)
	}
	if pos > buffer.MaxSize {
		return h.cursor, h.tooLarge(pos)
	}

	if err := h.buf.Extend(pos); err != nil {
		return h.cursor, h.bufferError("seek", err)
	}
	h.cursor = pos
	return pos, nil
}

// Truncate resizes the underlying buffer. The cursor is not moved.
func (h *Handle) Truncate(size int64) error {
	if err := h.check("truncate"); err != nil {
		return err
	}
	if size < 0 {
		return errors.Newf(errors.CodeInvalidInput, "negative truncate size %d", size).
			WithContext("path", h.path)
	}
	if size > buffer.MaxSize {
		return h.tooLarge(size)
	}
	if err := h.buf.Truncate(size); err != nil {
		return h.bufferError("truncate", err)
	}
	return nil
}

// Stat describes the stream. Its Sys method returns a *Record.
func (h *Handle) Stat() (fs.FileInfo, error) {
	if err := h.check("stat"); err != nil {
		return nil, err
	}
	return &fileInfo{name: h.path, rec: newRecord(h.buf.Len())}, nil
}

// SetOption accepts no options and always returns false.
func (h *Handle) SetOption(option, arg1, arg2 int) bool {
	return false
}

// Lock is not supported.
func (h *Handle) Lock() error {
	return billy.ErrNotSupported
}

// Unlock is not supported.
func (h *Handle) Unlock() error {
	return billy.ErrNotSupported
}

// Close releases the handle. A private buffer is dropped with it; a named
// buffer stays in its registry.
func (h *Handle) Close() error {
	if err := h.check("close"); err != nil {
		return err
	}
	h.closed = true
	h.buf = nil

	if h.logger != nil {
		scheme, _ := SplitPath(h.path)
		h.logger.Debug("stream closed", "scheme", scheme, "named", h.named)
	}
	return nil
}

// Contents returns a copy of the buffer content regardless of the handle's
// permissions. It returns nil once the handle is closed.
func (h *Handle) Contents() []byte {
	if h.closed {
		return nil
	}
	return h.buf.Bytes()
}

// Named reports whether the handle is bound to a registry buffer.
func (h *Handle) Named() bool {
	return h.named
}

// Flags returns the flags the handle was opened with.
func (h *Handle) Flags() Flags {
	return h.flags
}

func (h *Handle) check(op string) error {
	if h.closed {
		return &fs.PathError{Op: op, Path: h.path, Err: fs.ErrClosed}
	}
	return nil
}

func (h *Handle) encode(p []byte) []byte {
	if h.normalise {
		return newline.Bytes(p)
	}
	return p
}

// extend zero-pads the buffer up to the cursor.
func (h *Handle) extend() error {
	if err := h.buf.Extend(h.cursor); err != nil {
		return h.bufferError("extend", err)
	}
	return nil
}

func (h *Handle) bufferError(op string, err error) error {
	if stderrors.Is(err, buffer.ErrTooLarge) {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, op+" would exceed the maximum stream size",
			map[string]interface{}{"path": h.path})
	}
	return fmt.Errorf("%s %q: %w", op, h.path, err)
}

func (h *Handle) tooLarge(size int64) error {
	return errors.Newf(errors.CodeInvalidInput, "size %d exceeds the maximum of %d bytes", size, buffer.MaxSize).
		WithContext("path", h.path)
}

func (h *Handle) permissionError(code errors.ErrorCode, msg string) error {
	return errors.New(code, msg).WithContext("path", h.path)
}

func (h *Handle) negativeOffset(off int64) error {
	return errors.Newf(errors.CodeNegativeOffset, "position %d is before the start of the stream", off).
		WithContext("path", h.path)
}

var (
	_ billy.File         = (*Handle)(nil)
	_ io.WriterAt        = (*Handle)(nil)
	_ io.ReaderAt        = (*Handle)(nil)
	_ io.ReadWriteSeeker = (*Handle)(nil)
)
