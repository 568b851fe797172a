package llm

import (
	"context"
	"log"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryingClient retries transient provider failures with exponential backoff.
type RetryingClient struct {
	inner      Client
	maxRetries uint64
	base       time.Duration
}

// NewRetryingClient wraps inner so each call is attempted up to maxRetries+1 times.
func NewRetryingClient(inner Client, maxRetries int) *RetryingClient {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingClient{
		inner:      inner,
		maxRetries: uint64(maxRetries),
		base:       500 * time.Millisecond,
	}
}

// GenerateContent calls the wrapped client with retries.
func (c *RetryingClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.do(ctx, "content", func(ctx context.Context) (string, error) {
		return c.inner.GenerateContent(ctx, prompt, tier)
	})
}

// GenerateJSON calls the wrapped client with retries.
func (c *RetryingClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.do(ctx, "json", func(ctx context.Context) (string, error) {
		return c.inner.GenerateJSON(ctx, prompt, tier)
	})
}

func (c *RetryingClient) do(ctx context.Context, op string, call func(context.Context) (string, error)) (string, error) {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.base))

	var (
		text    string
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var err error
		text, err = call(ctx)
		if err == nil {
			return nil
		}
		if IsRetryable(err) {
			log.Printf("[llm] %s attempt %d failed, retrying: %v", op, attempt, err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// GetModel returns the wrapped client's model for a tier.
func (c *RetryingClient) GetModel(tier ModelTier) string {
	return c.inner.GetModel(tier)
}

// Close closes the wrapped client.
func (c *RetryingClient) Close() error {
	return c.inner.Close()
}
