package source

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/takak2166/notion2csv/internal/logger"
	"github.com/takak2166/notion2csv/internal/models"
)

// RetryPolicy bounds the exponential backoff applied to a failing operation
type RetryPolicy struct {
	Attempts        int
	InitialInterval time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy is three attempts starting at one second, doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, InitialInterval: time.Second, Multiplier: 2}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 2
	}
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.InitialInterval),
		backoff.WithMultiplier(multiplier),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxInterval(time.Minute),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Do runs op until it succeeds, returns a non-retryable error or the policy
// runs out of attempts. onRetry, when set, sees every failed attempt that is
// followed by another one.
func Do(ctx context.Context, p RetryPolicy, op func() error, onRetry func(err error, wait time.Duration)) error {
	wrapped := func() error {
		err := op()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.RetryNotify(wrapped, p.backOff(ctx), onRetry)
}

// Retrying retries each individual fetch of the wrapped Source.
type Retrying struct {
	src    Source
	policy RetryPolicy
}

// NewRetrying wraps src with policy
func NewRetrying(src Source, policy RetryPolicy) *Retrying {
	return &Retrying{src: src, policy: policy}
}

func (r *Retrying) notify(op string) func(error, time.Duration) {
	return func(err error, wait time.Duration) {
		logger.Warn("Retrying source request", map[string]interface{}{
			"operation": op,
			"error":     err.Error(),
			"wait":      wait.String(),
		})
	}
}

func (r *Retrying) Schema(ctx context.Context) (models.Schema, error) {
	var s models.Schema
	err := Do(ctx, r.policy, func() error {
		var err error
		s, err = r.src.Schema(ctx)
		return err
	}, r.notify("schema"))
	return s, err
}

func (r *Retrying) QueryPages(ctx context.Context, q models.Query) (models.PageBatch, error) {
	var batch models.PageBatch
	err := Do(ctx, r.policy, func() error {
		var err error
		batch, err = r.src.QueryPages(ctx, q)
		return err
	}, r.notify("query_pages"))
	return batch, err
}

func (r *Retrying) ListBlockChildren(ctx context.Context, blockID, cursor string) (models.BlockBatch, error) {
	var batch models.BlockBatch
	err := Do(ctx, r.policy, func() error {
		var err error
		batch, err = r.src.ListBlockChildren(ctx, blockID, cursor)
		return err
	}, r.notify("list_block_children"))
	return batch, err
}
