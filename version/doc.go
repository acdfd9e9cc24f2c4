// Package version reports the build identity of the whisperbridge binary.
//
// Version, GitCommit and BuildDate are set with -ldflags at build time:
//
//	go build -ldflags "-X github.com/kbukum/whisperbridge/version.Version=1.2.0"
//
// Missing values fall back to the VCS stamp recorded by the Go toolchain.
package version
