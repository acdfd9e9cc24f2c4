// Package scheduler runs transcription jobs on a bounded pool of worker
// goroutines and delivers each job's completion on the caller's event loop.
//
// Submit never blocks. A job is either executed by a worker and completed
// with its outcome, or refused with QUEUE_FULL, SCHEDULER_CLOSED or its own
// preflight error; in every case Complete runs exactly once, on the loop and
// never on a worker.
//
// Jobs that report a lane key are serialized per key: at most one job of a
// lane executes at a time, in submission order. Bound jobs use their
// handle's id as the lane, so two jobs never share one engine context.
package scheduler
