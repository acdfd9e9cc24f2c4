//go:build !whispercpp

package engine

// NativeAvailable reports whether the whisper.cpp backend is compiled in.
func NativeAvailable() bool { return false }

// NewNative returns ErrBackendUnavailable when built without the whispercpp tag.
func NewNative() (Engine, error) {
	return nil, ErrBackendUnavailable
}
