// Package util holds the small generic helpers remotekit uses for optional
// values: the adapters model "absent" as a nil pointer (JSON bodies, piped
// input), and callers build those with Ptr.
package util
