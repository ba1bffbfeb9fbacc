package httpx

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreaker shields callers from a repeatedly failing upstream. Once
// maxFailures consecutive calls fail the breaker opens and calls fail fast
// until the timeout elapses.
type CircuitBreaker interface {
	Execute(fn func() error) error
}

type circuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

func NewCircuitBreaker(name string, timeout time.Duration, maxFailures uint32) CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &circuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (c *circuitBreaker) Execute(fn func() error) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		if err := fn(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", c.breaker.Name(), err)
	}
	return nil
}
