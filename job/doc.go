// Package job implements the three transcription jobs: standalone,
// confidence and bound.
//
// All three run the same algorithm. They differ only in where the engine
// context comes from and what is read back from it:
//
//	standalone  owned context (Init per job, freed after)   segments
//	confidence  owned context                               tokens
//	bound       borrowed from a handle, never freed here    segments
//
// Jobs implement scheduler.Task. Execute runs on a worker; Complete hands the
// outcome to the caller's continuation on the event loop.
package job
