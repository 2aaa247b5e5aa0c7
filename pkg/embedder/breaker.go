package embedder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/quorum/pkg/alert"
	"github.com/soundprediction/quorum/pkg/config"
)

// CircuitBreakerClient wraps a Client with circuit breaking logic. When the
// provider keeps failing, calls short-circuit with gobreaker.ErrOpenState
// instead of burning the retry budget of every ingestion batch.
type CircuitBreakerClient struct {
	client   Client
	cb       *gobreaker.CircuitBreaker
	logger   *slog.Logger
	alerter  alert.Alerter
	failures atomic.Uint32
}

// NewCircuitBreakerClient creates a circuit breaker around an embedding client.
func NewCircuitBreakerClient(client Client, cfg config.CircuitBreakerConfig, logger *slog.Logger, name string) *CircuitBreakerClient {
	if logger == nil {
		logger = slog.Default()
	}

	c := &CircuitBreakerClient{
		client: client,
		logger: logger,
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				failures := c.failures.Load()
				logger.Error("circuit breaker tripped",
					"name", name, "from", from.String(), "to", to.String(), "failures", failures)
				if c.alerter != nil {
					n := alert.Notification{
						Component: name,
						Condition: "circuit breaker open",
						Detail: fmt.Sprintf("%d consecutive embedding failures (state %s -> %s); calls short-circuit until the breaker half-opens",
							failures, from, to),
						Time: time.Now(),
					}
					if err := c.alerter.Alert(n); err != nil {
						logger.Warn("failed to send alert", "error", err)
					}
				}
			}
		},
	}

	c.cb = gobreaker.NewCircuitBreaker(st)
	return c
}

// SetAlerter registers an alerter notified when the breaker opens.
func (c *CircuitBreakerClient) SetAlerter(a alert.Alerter) {
	c.alerter = a
}

// execute runs fn under the breaker, tracking the consecutive failure count
// reported when the breaker opens. The count updates inside the wrapped call
// so OnStateChange sees the failure that tripped it.
func (c *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	return c.cb.Execute(func() (interface{}, error) {
		result, err := fn()
		if err != nil {
			c.failures.Add(1)
		} else {
			c.failures.Store(0)
		}
		return result, err
	})
}

// Embed implements Client
func (c *CircuitBreakerClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := c.execute(func() (interface{}, error) {
		return c.client.Embed(ctx, texts)
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}

// EmbedSingle implements Client
func (c *CircuitBreakerClient) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	result, err := c.execute(func() (interface{}, error) {
		return c.client.EmbedSingle(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return result.([]float32), nil
}

// Dimensions implements Client
func (c *CircuitBreakerClient) Dimensions() int {
	return c.client.Dimensions()
}

// Close implements Client
func (c *CircuitBreakerClient) Close() error {
	return c.client.Close()
}
