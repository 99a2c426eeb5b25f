package ai

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"

	"onecore/internal/port"
)

// Breaker is a port.Completer that stops calling a failing provider until it
// has had time to recover.
type Breaker struct {
	next port.Completer
	cb   *gobreaker.CircuitBreaker[string]
}

// NewBreaker wraps next. The circuit opens after maxFailures consecutive
// failures and half-opens after openTimeout.
func NewBreaker(name string, next port.Completer, maxFailures uint32, openTimeout time.Duration) *Breaker {
	if maxFailures == 0 {
		maxFailures = 5
	}
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "ai-" + name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A caller giving up is not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("ai.Breaker: %s state %s -> %s", name, from, to)
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[string](settings)}
}

// Complete forwards the request unless the circuit is open.
func (b *Breaker) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	text, err := b.cb.Execute(func() (string, error) {
		return b.next.Complete(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrCircuitOpen
	}
	return text, err
}

// State reports the breaker state: closed, half-open or open.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
