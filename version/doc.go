// Package version reports the build version of the seqkit binary.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/seqkit/version.Version=1.2.0" ./cmd/seqkit
//
// Unset values fall back to the VCS stamp embedded by the Go toolchain.
package version
