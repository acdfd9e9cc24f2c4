// Package component manages the lifecycle of whisperbridge's long-running
// parts: the event loop, the scheduler's worker pool and the HTTP server.
//
// Components start in registration order and stop in reverse, so the event
// loop registered first is the last to stop and still delivers the
// completions of jobs drained during scheduler shutdown.
package component
