// Package errors provides the unified error type used by the remotekit
// adapters. Every failure raised by this module (outside of typed transport
// errors from httpclient) is an *AppError carrying a machine-readable code,
// so callers can branch with HasCode instead of matching message text.
package errors
