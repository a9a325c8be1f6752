package model

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Model with a requests-per-minute budget. Generate waits
// for a token and fails when the context ends first.
type RateLimited struct {
	Model
	limiter *rate.Limiter
}

// NewRateLimited returns m limited to rpm requests per minute with a burst of
// ten seconds' worth of budget. A non-positive rpm returns m unchanged.
func NewRateLimited(m Model, rpm int) Model {
	if rpm <= 0 {
		return m
	}
	burst := rpm / 6
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		Model:   m,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}
}

// Generate implements Model.
func (r *RateLimited) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	if err := r.limiter.Wait(ctx); err != nil {
		respCh := make(chan Response)
		errCh := make(chan error, 1)
		errCh <- fmt.Errorf("rate limit: %w", err)
		close(respCh)
		close(errCh)
		return respCh, errCh
	}
	return r.Model.Generate(ctx, req)
}

// Unwrap returns the wrapped model.
func (r *RateLimited) Unwrap() Model { return r.Model }
