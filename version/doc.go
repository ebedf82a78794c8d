// Package version reports the remotekit build.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/remotekit/version.Version=1.0.0"
package version
