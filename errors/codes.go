package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Usage errors
const (
	// ErrCodeInvalidArgument indicates an operator was configured with an unusable argument.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeStaleHandle indicates a pipeline handle was used after it was consumed or superseded.
	ErrCodeStaleHandle ErrorCode = "STALE_HANDLE"
	// ErrCodeConcurrentAdvance indicates two advances overlapped on one iterator.
	ErrCodeConcurrentAdvance ErrorCode = "CONCURRENT_ADVANCE"
	// ErrCodeIteratorClosed indicates Next was called after Close.
	ErrCodeIteratorClosed ErrorCode = "ITERATOR_CLOSED"
	// ErrCodeNotOrdered indicates ThenBy was applied to a pipeline that is not an OrderBy head.
	ErrCodeNotOrdered ErrorCode = "NOT_ORDERED"
	// ErrCodeViewReleased indicates a borrowed view was read after its owner released it.
	ErrCodeViewReleased ErrorCode = "VIEW_RELEASED"
)

// Outcome errors
const (
	// ErrCodeCanceled indicates the enumeration observed a cancelled context.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeAggregate indicates several failures were recorded during one pass.
	ErrCodeAggregate ErrorCode = "AGGREGATE"
	// ErrCodeInternal indicates a broken invariant inside the library.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var usageCodes = map[ErrorCode]bool{
	ErrCodeInvalidArgument:   true,
	ErrCodeStaleHandle:       true,
	ErrCodeConcurrentAdvance: true,
	ErrCodeIteratorClosed:    true,
	ErrCodeNotOrdered:        true,
	ErrCodeViewReleased:      true,
}

// IsUsageCode returns true if the code reports a caller mistake rather than
// a failure of the data being enumerated.
func IsUsageCode(code ErrorCode) bool {
	return usageCodes[code]
}
