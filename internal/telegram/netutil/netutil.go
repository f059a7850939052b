// Package netutil classifies outbound HTTP failures. Both remote dependencies
// (the Telegram API and the problem catalog) sit behind the same retrying
// transport, so the retry policy lives here.
package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// ShouldRetry reports whether a failed request is worth repeating. Transient
// faults (timeouts, refused or reset connections, failed dials) qualify;
// anything the caller caused, including its own cancelled context, does not.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	// The caller's deadline governs; retrying a cancelled request only burns
	// the remaining budget.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return ShouldRetry(urlErr.Err)
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
