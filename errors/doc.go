// Package errors provides the bridge's structured error type.
//
// Every failure a job can produce is an *AppError carrying a machine-readable
// code. Errors travel to the caller through the job's completion, never as
// panics across the worker boundary, and none of them are retried by the core.
package errors
