package xmlpo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns the defaults used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes fn with exponential backoff while it fails with a
// retryable error.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	return withRetry(ctx, cfg, log.Logger, fn)
}

func withRetry[T any](ctx context.Context, cfg RetryConfig, logger zerolog.Logger, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.BaseDelay * time.Duration(1<<attempt)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
		logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Provider call failed, retrying")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether err is worth another attempt: a provider
// error flagged retryable, or a reply with the wrong number of
// translations.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}
	var countErr *CountMismatchError
	return errors.As(err, &countErr)
}

// RetryableProvider wraps an AIProvider with retry logic.
type RetryableProvider struct {
	provider AIProvider
	config   RetryConfig
	logger   zerolog.Logger
}

// NewRetryableProvider creates a new provider with retry logic.
func NewRetryableProvider(provider AIProvider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: provider,
		config:   cfg,
		logger:   log.Logger,
	}
}

// WithLogger sets the logger retries are reported on.
func (p *RetryableProvider) WithLogger(logger zerolog.Logger) *RetryableProvider {
	p.logger = logger
	return p
}

// Translate implements AIProvider. Each batch is retried with backoff; a
// reply whose length does not match the request counts as a retryable
// *CountMismatchError. A batch that is still miscounted after the last
// retry is split in half and each half translated on its own, down to
// single messages.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	out, err := withRetry(ctx, p.config, p.logger, func() ([]string, error) {
		out, err := p.provider.Translate(ctx, req)
		if err != nil {
			return nil, err
		}
		if len(out) != len(req.Texts) {
			return nil, &CountMismatchError{Expected: len(req.Texts), Got: len(out)}
		}
		return out, nil
	})

	var countErr *CountMismatchError
	if err == nil || len(req.Texts) < 2 || !errors.As(err, &countErr) {
		return out, err
	}

	mid := len(req.Texts) / 2
	p.logger.Warn().
		Int("messages", len(req.Texts)).
		Int("got", countErr.Got).
		Msg("Provider keeps miscounting the batch, splitting it")

	first, err := p.Translate(ctx, subRequest(req, 0, mid))
	if err != nil {
		return nil, err
	}
	second, err := p.Translate(ctx, subRequest(req, mid, len(req.Texts)))
	if err != nil {
		return nil, err
	}
	return append(append(make([]string, 0, len(req.Texts)), first...), second...), nil
}

// subRequest narrows req to the texts in [from, to) and their hints.
func subRequest(req TranslateRequest, from, to int) TranslateRequest {
	sub := req
	sub.Texts = req.Texts[from:to]
	if len(req.TextContexts) == len(req.Texts) {
		sub.TextContexts = req.TextContexts[from:to]
	} else {
		sub.TextContexts = nil
	}
	return sub
}
