package faults

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// keywordRules are checked in order; the first match wins.
var keywordRules = []struct {
	keywords []string
	t        Type
}{
	{[]string{"insufficient", "not enough"}, InsufficientBalance},
	{[]string{"network", "fetch"}, NetworkError},
	{[]string{"timeout"}, Timeout},
	{[]string{"validation", "invalid"}, ValidationError},
	{[]string{"concurrent", "conflict"}, ConcurrentModification},
	{[]string{"blockchain", "web3"}, BlockchainFailure},
}

var errnoTypes = map[syscall.Errno]Type{
	syscall.ECONNREFUSED: DatabaseConnection,
	syscall.ECONNRESET:   DatabaseConnection,
	syscall.ETIMEDOUT:    Timeout,
}

// Classify maps an arbitrary error onto the taxonomy. Priority: an explicit
// Fault tag, then known sentinel errors, then message keywords, then
// socket-level codes. Anything unrecognized is Unknown. Classify never
// panics and never returns an empty type.
func Classify(err error) Type {
	if err == nil {
		return Unknown
	}

	var fault *Fault
	if errors.As(err, &fault) && fault.Type != "" {
		return fault.Type
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				return rule.t
			}
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if t, ok := errnoTypes[errno]; ok {
			return t
		}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		// host-not-found, the Go analog of ENOTFOUND
		return DatabaseConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Timeout
		}
		return NetworkError
	}

	return Unknown
}

var retryable = map[Type]bool{
	DatabaseConnection:     true,
	BlockchainFailure:      true,
	Timeout:                true,
	ServiceUnavailable:     true,
	NetworkError:           true,
	ConcurrentModification: true,
}

// Retryable reports whether failures of the given type may be retried
// automatically. Balance and validation failures need user input to fix, so
// they are never retried.
func Retryable(t Type) bool {
	return retryable[t]
}
