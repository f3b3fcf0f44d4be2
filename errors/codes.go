// Package errors provides the error handling system for stringstream.
// It extends Go's standard error handling with structured error codes and
// context preservation so callers can branch on the kind of failure without
// matching on message text.
package errors

// ErrorCode represents a specific error condition in stringstream.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource (scheme, snapshot) does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a resource already exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeConfigLoadFailed indicates a configuration document could not be read or parsed.
	CodeConfigLoadFailed ErrorCode = "CONFIG_LOAD_FAILED"

	// CodeConfigDecodeFailed indicates a configuration document does not match its schema.
	CodeConfigDecodeFailed ErrorCode = "CONFIG_DECODE_FAILED"

	// Stream errors.

	// CodeInvalidMode indicates an open mode token that names no known mode.
	CodeInvalidMode ErrorCode = "INVALID_MODE"

	// CodeNotReadable indicates a read against a handle opened without read permission.
	CodeNotReadable ErrorCode = "NOT_READABLE"

	// CodeNotWritable indicates a write against a handle opened without write permission.
	CodeNotWritable ErrorCode = "NOT_WRITABLE"

	// CodeInvalidWhence indicates a seek with an unrecognised whence value.
	CodeInvalidWhence ErrorCode = "INVALID_SEEK_WHENCE"

	// CodeNegativeOffset indicates a seek whose resulting position would be negative.
	CodeNegativeOffset ErrorCode = "NEGATIVE_OFFSET"

	// CodeSnapshotFailed indicates a registry snapshot could not be encoded or decoded.
	CodeSnapshotFailed ErrorCode = "SNAPSHOT_FAILED"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
