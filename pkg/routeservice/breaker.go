package routeservice

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// CircuitBreaker stops calls to the routing service for a cooldown window
// after too many consecutive failures. The breaker is open exactly while
// now < openUntil; the first call after that attempts the network again.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration

	consecutiveFailures int
	openUntil           time.Time

	now func() time.Time
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a network attempt may proceed.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.now().After(b.openUntil)
}

// Success resets the failure streak and closes the breaker.
func (b *CircuitBreaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	b.openUntil = time.Time{}
}

// Failure records a failed call, opening the breaker once the streak
// reaches the threshold.
func (b *CircuitBreaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++

	if b.consecutiveFailures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)

		log.Warn().
			Int("failures", b.consecutiveFailures).
			Time("until", b.openUntil).
			Msg("Routing circuit breaker open")
	}
}

func (b *CircuitBreaker) ConsecutiveFailures() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.consecutiveFailures
}
