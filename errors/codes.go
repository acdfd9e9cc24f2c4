package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Job failures surfaced to the completion callback
const (
	// ErrCodeInvalidLanguage indicates the language is neither "auto" nor known to the engine.
	ErrCodeInvalidLanguage ErrorCode = "INVALID_LANGUAGE"
	// ErrCodeEngineInitFailed indicates the engine could not create a context from the model.
	ErrCodeEngineInitFailed ErrorCode = "ENGINE_INIT_FAILED"
	// ErrCodeEngineRunFailed indicates the engine run returned a non-zero status.
	ErrCodeEngineRunFailed ErrorCode = "ENGINE_RUN_FAILED"
	// ErrCodeNotReady indicates a bound job targeted a handle that is not initialized.
	ErrCodeNotReady ErrorCode = "NOT_READY"
)

// Handle lifecycle errors
const (
	// ErrCodeAlreadyInitialized indicates Initialize was called on a ready handle.
	ErrCodeAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"
	// ErrCodeHandleBusy indicates a second borrow of a handle while one is active.
	ErrCodeHandleBusy ErrorCode = "HANDLE_BUSY"
)

// Scheduling errors
const (
	// ErrCodeQueueFull indicates the scheduler's backlog is at capacity.
	ErrCodeQueueFull ErrorCode = "QUEUE_FULL"
	// ErrCodeSchedulerClosed indicates the scheduler no longer accepts work.
	ErrCodeSchedulerClosed ErrorCode = "SCHEDULER_CLOSED"
	// ErrCodeTimeout indicates the caller stopped waiting for a completion.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Input and resource errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure, such as a recovered panic.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// The core never retries. Only the caller-side timeout is worth resubmitting.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout:   true,
	ErrCodeQueueFull: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
