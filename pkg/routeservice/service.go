package routeservice

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/sirensim/sirensim/pkg/roadnet"
	"github.com/sirensim/sirensim/pkg/util"
)

const (
	defaultHost             = "https://router.project-osrm.org"
	defaultConcurrency      = 2
	defaultMinSpacing       = 250 * time.Millisecond
	defaultCacheTTL         = 10 * time.Minute
	defaultMaxRetries       = 3
	defaultBreakerThreshold = 5
	defaultBreakerCooldown  = 30 * time.Second
	defaultRequestTimeout   = 8 * time.Second

	// 429 responses get a markedly longer pause than ordinary failures.
	rateLimitedMultiplier = 4

	queueCapacity  = 256
	eventsCapacity = 256
)

type Config struct {
	Host        string
	Concurrency int
	MinSpacing  time.Duration

	CacheTTL   time.Duration
	MaxRetries int

	BreakerThreshold int
	BreakerCooldown  time.Duration

	RequestTimeout time.Duration

	RedisAddress  string
	RedisPassword string
}

func ConfigFromEnvironment() Config {
	env := util.GetEnvironmentVariables()

	return Config{
		Host:             util.EnvString("SIRENSIM_ROUTING_ADDRESS", defaultHost),
		Concurrency:      util.EnvInt("SIRENSIM_ROUTING_CONCURRENCY", defaultConcurrency),
		MinSpacing:       util.EnvDuration("SIRENSIM_ROUTING_MIN_SPACING", defaultMinSpacing),
		CacheTTL:         util.EnvDuration("SIRENSIM_ROUTING_CACHE_TTL", defaultCacheTTL),
		MaxRetries:       util.EnvInt("SIRENSIM_ROUTING_RETRIES", defaultMaxRetries),
		BreakerThreshold: util.EnvInt("SIRENSIM_ROUTING_BREAKER_THRESHOLD", defaultBreakerThreshold),
		BreakerCooldown:  util.EnvDuration("SIRENSIM_ROUTING_BREAKER_COOLDOWN", defaultBreakerCooldown),
		RequestTimeout:   util.EnvDuration("SIRENSIM_ROUTING_TIMEOUT", defaultRequestTimeout),
		RedisAddress:     env["SIRENSIM_REDIS_ADDRESS"],
		RedisPassword:    env["SIRENSIM_REDIS_PASSWORD"],
	}
}

// Request asks for a road route between two positions on behalf of a
// vehicle. VehicleID travels with the eventual Resolution so the engine can
// check, at application time, that the vehicle still wants it.
type Request struct {
	ID        string
	VehicleID string
	From      orb.Point
	To        orb.Point
	Emergency bool
}

// Resolution delivers a network route that resolved after the requester
// already started moving on a fallback.
type Resolution struct {
	RequestID string
	VehicleID string
	Route     *roadnet.Route
}

// Service wraps the external routing API with caching, in-flight
// de-duplication, bounded concurrency, retries, and a circuit breaker. It
// never returns an error to callers: every failure path degrades to a
// generated fallback route.
type Service struct {
	host       string
	httpClient *http.Client

	routeCache *routeCache
	breaker    *CircuitBreaker

	maxRetries     int
	minSpacing     time.Duration
	requestTimeout time.Duration

	queue  chan Request
	events chan Resolution
	pool   *pool.Pool

	mu       sync.Mutex
	inflight map[string][]Request

	closed    chan struct{}
	closeOnce sync.Once
}

func New(config Config) (*Service, error) {
	routeCache, err := newRouteCache(config.RedisAddress, config.RedisPassword, config.CacheTTL)
	if err != nil {
		return nil, err
	}

	service := &Service{
		host:           config.Host,
		httpClient:     &http.Client{Timeout: config.RequestTimeout},
		routeCache:     routeCache,
		breaker:        NewCircuitBreaker(config.BreakerThreshold, config.BreakerCooldown),
		maxRetries:     config.MaxRetries,
		minSpacing:     config.MinSpacing,
		requestTimeout: config.RequestTimeout,
		queue:          make(chan Request, queueCapacity),
		events:         make(chan Resolution, eventsCapacity),
		pool:           pool.New().WithMaxGoroutines(config.Concurrency),
		inflight:       map[string][]Request{},
		closed:         make(chan struct{}),
	}

	go service.dispatch()

	return service, nil
}

// Events delivers asynchronously resolved routes. The engine drains it at
// the start of each tick; resolutions are never applied mid-tick.
func (s *Service) Events() <-chan Resolution {
	return s.events
}

// Resolve returns a route the caller can start moving on immediately: the
// cached network route when one exists, otherwise a generated fallback with
// a network fetch queued behind it.
func (s *Service) Resolve(request Request) *roadnet.Route {
	key := cacheKey(request.From, request.To)

	if cached, err := s.routeCache.Get(context.Background(), key); err == nil && cached != nil {
		return cached
	}

	select {
	case s.queue <- request:
	default:
		log.Warn().Str("request", request.ID).Msg("Routing queue full, request dropped")
	}

	return FallbackRoute(request.From, request.To, request.Emergency)
}

// GetRoute is the synchronous form used by callers that can afford to wait:
// cache, then network with retries, then fallback. It never fails.
func (s *Service) GetRoute(ctx context.Context, from orb.Point, to orb.Point, emergency bool) *roadnet.Route {
	key := cacheKey(from, to)

	if cached, err := s.routeCache.Get(ctx, key); err == nil && cached != nil {
		return cached
	}

	if !s.breaker.Allow() {
		return FallbackRoute(from, to, emergency)
	}

	route, err := s.fetchWithRetry(ctx, from, to)
	if err != nil {
		s.breaker.Failure()
		return FallbackRoute(from, to, emergency)
	}

	s.breaker.Success()
	s.store(ctx, key, route)

	return route
}

func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.pool.Wait()
}

// dispatch drains the request queue at the configured pacing, coalescing
// requests that share a cache key onto one network call.
func (s *Service) dispatch() {
	for {
		select {
		case <-s.closed:
			return
		case request := <-s.queue:
			key := cacheKey(request.From, request.To)

			s.mu.Lock()
			if waiters, exists := s.inflight[key]; exists {
				s.inflight[key] = append(waiters, request)
				s.mu.Unlock()
				continue
			}
			s.inflight[key] = []Request{request}
			s.mu.Unlock()

			time.Sleep(s.minSpacing)

			s.pool.Go(func() {
				s.process(request, key)
			})
		}
	}
}

func (s *Service) process(request Request, key string) {
	var route *roadnet.Route

	defer func() {
		s.mu.Lock()
		waiters := s.inflight[key]
		delete(s.inflight, key)
		s.mu.Unlock()

		// Waiters keep moving on their fallback when the fetch failed; a
		// resolved route reaches every one of them.
		if route == nil {
			return
		}

		for _, waiter := range waiters {
			s.emit(Resolution{RequestID: waiter.ID, VehicleID: waiter.VehicleID, Route: route})
		}
	}()

	if !s.breaker.Allow() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout*time.Duration(s.maxRetries+1))
	defer cancel()

	fetched, err := s.fetchWithRetry(ctx, request.From, request.To)
	if err != nil {
		s.breaker.Failure()
		log.Debug().Err(err).Str("request", request.ID).Msg("Routing request failed, staying on fallback")
		return
	}

	s.breaker.Success()
	s.store(ctx, key, fetched)

	route = fetched
}

func (s *Service) fetchWithRetry(ctx context.Context, from orb.Point, to orb.Point) (*roadnet.Route, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	var lastErr error

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		route, err := s.fetchOnce(ctx, from, to)
		if err == nil {
			return route, nil
		}
		lastErr = err

		if attempt == s.maxRetries {
			break
		}

		wait := policy.NextBackOff()
		if errors.Is(err, errRateLimited) {
			wait *= rateLimitedMultiplier
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, lastErr
}

func (s *Service) store(ctx context.Context, key string, route *roadnet.Route) {
	if err := s.routeCache.Set(ctx, key, route); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache route")
	}
}

func (s *Service) emit(resolution Resolution) {
	select {
	case s.events <- resolution:
	default:
		log.Warn().Str("request", resolution.RequestID).Msg("Route event buffer full, resolution dropped")
	}
}
