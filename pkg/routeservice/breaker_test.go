package routeservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAtThreshold(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	breaker := NewCircuitBreaker(3, 30*time.Second)
	breaker.now = func() time.Time { return clock }

	breaker.Failure()
	breaker.Failure()
	assert.True(t, breaker.Allow())

	breaker.Failure()
	assert.False(t, breaker.Allow())
	assert.Equal(t, 3, breaker.ConsecutiveFailures())
}

func TestBreakerCooldownExpires(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	breaker := NewCircuitBreaker(1, 30*time.Second)
	breaker.now = func() time.Time { return clock }

	breaker.Failure()
	assert.False(t, breaker.Allow())

	// Still inside the window.
	clock = clock.Add(29 * time.Second)
	assert.False(t, breaker.Allow())

	// The first call after the cooldown is allowed through to probe.
	clock = clock.Add(2 * time.Second)
	assert.True(t, breaker.Allow())

	// The probe failing reopens immediately; the streak never reset.
	breaker.Failure()
	assert.False(t, breaker.Allow())
}

func TestBreakerSuccessResets(t *testing.T) {
	breaker := NewCircuitBreaker(2, time.Minute)

	breaker.Failure()
	breaker.Success()
	assert.Equal(t, 0, breaker.ConsecutiveFailures())

	breaker.Failure()
	assert.True(t, breaker.Allow())
}
