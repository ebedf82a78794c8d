// Package resilience provides the context-aware retry loop used where
// remotekit deliberately polls, such as waiting for an SSH daemon to accept
// logins.
//
//	err := resilience.RetryFunc(ctx, resilience.RetryConfig{
//	    MaxAttempts:    resilience.UnlimitedAttempts,
//	    InitialBackoff: 100 * time.Millisecond,
//	    BackoffFactor:  1,
//	}, probe)
//
// Cancelling ctx is the only way to stop an unlimited policy.
package resilience
