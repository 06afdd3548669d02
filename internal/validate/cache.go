package validate

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nao1215/contactscan/internal/model"
)

// Cache wraps a Validator so that each address is checked at most once.
//
// Concurrent requests for the same address share one call. Failures and
// timeouts are logged and remembered as VerdictUnknown.
type Cache struct {
	next    Validator
	timeout time.Duration
	logger  *slog.Logger

	group    singleflight.Group
	mu       sync.RWMutex
	verdicts map[string]model.Verdict
	calls    atomic.Int64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTimeout bounds each call to the wrapped validator. Zero means no bound.
//
// When the bound passes the address is remembered as VerdictUnknown even if
// the validator ignores its context; such a call keeps running in the
// background until it returns and its verdict is discarded.
func WithTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for validator failures.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates a Cache in front of next. A nil next behaves like Noop.
func NewCache(next Validator, opts ...CacheOption) *Cache {
	if next == nil {
		next = Noop{}
	}
	c := &Cache{
		next:     next,
		logger:   slog.Default(),
		verdicts: make(map[string]model.Verdict),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate returns the cached verdict for email, asking the wrapped validator
// on first use. It never returns an error.
func (c *Cache) Validate(ctx context.Context, email string) (model.Verdict, error) {
	key := model.NormalizeEmail(email)

	c.mu.RLock()
	v, ok := c.verdicts[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	result, _, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		v, ok := c.verdicts[key]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		v = c.call(ctx, key)
		c.mu.Lock()
		c.verdicts[key] = v
		c.mu.Unlock()
		return v, nil
	})
	return result.(model.Verdict), nil
}

func (c *Cache) call(ctx context.Context, email string) model.Verdict {
	c.calls.Add(1)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	v, err := c.await(ctx, email)
	if err != nil {
		c.logger.Warn("email validation failed, treating as unknown", "email", email, "error", err)
		return model.VerdictUnknown
	}
	return v
}

type outcome struct {
	verdict model.Verdict
	err     error
}

// await runs the wrapped validator and stops waiting once ctx is done.
func (c *Cache) await(ctx context.Context, email string) (model.Verdict, error) {
	if ctx.Done() == nil {
		return c.next.Validate(ctx, email)
	}

	done := make(chan outcome, 1)
	go func() {
		v, err := c.next.Validate(ctx, email)
		done <- outcome{verdict: v, err: err}
	}()

	select {
	case o := <-done:
		return o.verdict, o.err
	case <-ctx.Done():
		return model.VerdictUnknown, ctx.Err()
	}
}

// Calls returns how many times the wrapped validator was called.
func (c *Cache) Calls() int {
	return int(c.calls.Load())
}

// Len returns the number of cached verdicts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.verdicts)
}
