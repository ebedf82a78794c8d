package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Caller errors (never retried)
const (
	// ErrCodePrecondition indicates the adapter is not in a state that allows the call.
	ErrCodePrecondition ErrorCode = "PRECONDITION_FAILED"
	// ErrCodeInvalidInput indicates an argument is malformed.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Local resource errors
const (
	// ErrCodeResourceUnavailable indicates a local file is missing or unreadable.
	ErrCodeResourceUnavailable ErrorCode = "RESOURCE_UNAVAILABLE"
)

// Remote execution errors
const (
	// ErrCodeProcess indicates a subprocess could not be launched or exited unsuccessfully.
	ErrCodeProcess ErrorCode = "PROCESS_FAILED"
	// ErrCodeTimeout indicates a subprocess or request exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Wire format errors
const (
	// ErrCodeProtocol indicates the remote peer answered outside the expected protocol.
	ErrCodeProtocol ErrorCode = "PROTOCOL_ERROR"
	// ErrCodeEncoding indicates a payload could not be serialized.
	ErrCodeEncoding ErrorCode = "ENCODING_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:  true,
	ErrCodeProcess:  true,
	ErrCodeProtocol: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
