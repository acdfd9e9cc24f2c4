package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified bridge error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if resubmitting the same job may succeed.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Job errors ---

// InvalidLanguage creates an error for a language the engine does not recognize.
func InvalidLanguage(language string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidLanguage, Message: fmt.Sprintf("Unknown language %q.", language),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"language": language},
	}
}

// EngineInitFailed creates an error for a model that could not be loaded.
func EngineInitFailed(modelPath string) *AppError {
	return &AppError{
		Code: ErrCodeEngineInitFailed, Message: "Failed to initialize the engine context from the model.",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"model": modelPath},
	}
}

// EngineRunFailed creates an error for a non-zero engine run status.
func EngineRunFailed(status int) *AppError {
	return &AppError{
		Code: ErrCodeEngineRunFailed, Message: "The engine failed to process the audio.",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"status": status},
	}
}

// NotReady creates an error for work submitted against a handle that is not
// ready. The message follows the handle state.
func NotReady(handleID, state string) *AppError {
	msg := "The worker is not ready."
	switch state {
	case "uninitialized":
		msg = "The worker is not initialized."
	case "disposed":
		msg = "The worker has been disposed."
	}
	return &AppError{
		Code: ErrCodeNotReady, Message: msg,
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"handle": handleID, "state": state},
	}
}

// --- Handle errors ---

// AlreadyInitialized creates an error for re-initializing a ready handle.
func AlreadyInitialized(handleID string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyInitialized, Message: "The worker is already initialized. Dispose it first.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"handle": handleID},
	}
}

// HandleBusy creates an error for overlapping use of one handle.
func HandleBusy(handleID string) *AppError {
	return &AppError{
		Code: ErrCodeHandleBusy, Message: "The worker is already running a job.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"handle": handleID},
	}
}

// --- Scheduling errors ---

// QueueFull creates an error for a submission rejected by a saturated backlog.
func QueueFull(capacity int) *AppError {
	return &AppError{
		Code: ErrCodeQueueFull, Message: "Too many pending jobs. Please try again later.",
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"capacity": capacity},
	}
}

// SchedulerClosed creates an error for a submission after shutdown.
func SchedulerClosed() *AppError {
	return &AppError{
		Code: ErrCodeSchedulerClosed, Message: "The scheduler is shutting down.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// --- Input errors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
