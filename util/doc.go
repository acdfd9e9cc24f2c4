// Package util provides small conversion helpers for whisperbridge.
//
// The To* functions coerce loosely typed values, as decoded from JSON or
// handed over by an embedding caller, into the Go types the bridge works with.
package util
