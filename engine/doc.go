// Package engine defines the narrow contract the bridge needs from a native
// transcription engine, plus the backends that satisfy it.
//
// An Engine creates contexts from a model path and resolves language codes.
// A Context runs one blocking inference at a time and exposes the segments
// and tokens of its last run. Contexts are not safe for concurrent use.
//
// Backends are resolved by name through a Registry. The "stub" backend is
// always available; "whispercpp" is compiled in with the whispercpp build tag:
//
//	go build -tags whispercpp ./cmd/whisperbridge
package engine
