// Package retry drives bounded exponential-backoff retries for transient
// failure classes.
package retry

import (
	"context"
	"sync"
	"time"

	"github.com/athena-hd/athena-rewards/internal/faults"
)

// DefaultMaxAttempts bounds how many times an operation runs in total.
const DefaultMaxAttempts = 3

// defaultDelays is the backoff schedule; attempts past the table length reuse
// the last entry.
var defaultDelays = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// Outcome is the discriminated result of a coordinated operation.
type Outcome struct {
	Success bool                     `json:"success"`
	Result  any                      `json:"result,omitempty"`
	Error   *faults.TransactionError `json:"error,omitempty"`
}

// Coordinator retries operations whose failures classify as transient. It
// tracks attempt counts per (user, operation) key across invocations, so an
// abandoned run cannot grant a fresh budget to the next one.
//
// Retries run as a plain loop with context-aware waits; cancelling the
// context stops the loop at the next wait.
type Coordinator struct {
	handler     *faults.Handler
	maxAttempts int
	delays      []time.Duration
	sleep       func(ctx context.Context, d time.Duration) error

	mu       sync.Mutex
	attempts map[string]int
}

// NewCoordinator builds a coordinator with the default attempt budget and
// backoff schedule.
func NewCoordinator(handler *faults.Handler) *Coordinator {
	return &Coordinator{
		handler:     handler,
		maxAttempts: DefaultMaxAttempts,
		delays:      defaultDelays,
		sleep:       sleepContext,
		attempts:    make(map[string]int),
	}
}

// WithSchedule overrides the attempt budget and delay table. Tests use it to
// run without real waits.
func (c *Coordinator) WithSchedule(maxAttempts int, delays []time.Duration) *Coordinator {
	if maxAttempts > 0 {
		c.maxAttempts = maxAttempts
	}
	if len(delays) > 0 {
		c.delays = delays
	}
	return c
}

// Delay returns the wait before the attempt following attempt n (1-based),
// clamped to the last table entry.
func (c *Coordinator) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > len(c.delays) {
		attempt = len(c.delays)
	}
	return c.delays[attempt-1]
}

// Do runs fn until it succeeds, fails with a non-retryable classification, or
// exhausts the attempt budget. The last classified failure is surfaced on
// exhaustion.
func (c *Coordinator) Do(ctx context.Context, fctx *faults.Context, fn func() (any, error)) Outcome {
	key := attemptKey(fctx)

	if c.take(key) {
		c.clear(key)
		err := faults.New(faults.Unknown, "maximum retry attempts exceeded")
		return Outcome{Error: ref(c.handler.Process(err, fctx))}
	}

	for {
		result, err := fn()
		if err == nil {
			c.clear(key)
			return Outcome{Success: true, Result: result}
		}

		attempt := c.record(key)
		if !faults.Retryable(faults.Classify(err)) || attempt >= c.maxAttempts {
			c.clear(key)
			return Outcome{Error: ref(c.handler.Process(err, fctx))}
		}

		if werr := c.sleep(ctx, c.Delay(attempt)); werr != nil {
			// context cancelled mid-backoff; the attempt counter is kept so a
			// follow-up invocation cannot restart with a full budget
			return Outcome{Error: ref(c.handler.Process(werr, fctx))}
		}
	}
}

func (c *Coordinator) take(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts[key] >= c.maxAttempts
}

func (c *Coordinator) record(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[key]++
	return c.attempts[key]
}

func (c *Coordinator) clear(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attempts, key)
}

func attemptKey(fctx *faults.Context) string {
	if fctx == nil {
		return "::"
	}
	return fctx.UserID + ":" + fctx.Operation
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func ref(te faults.TransactionError) *faults.TransactionError { return &te }
