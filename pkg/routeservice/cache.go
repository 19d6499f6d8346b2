package routeservice

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	ristrettostore "github.com/eko/gocache/store/ristretto/v4"
	"github.com/paulmach/orb"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sirensim/sirensim/pkg/roadnet"
)

type routeCache = cache.Cache[*roadnet.Route]

// cacheKey rounds both coordinate pairs to four decimal places (roughly ten
// metres) so nearby requests share an entry.
func cacheKey(from orb.Point, to orb.Point) string {
	return fmt.Sprintf("route:%.4f,%.4f:%.4f,%.4f", from[0], from[1], to[0], to[1])
}

// newRouteCache builds the route cache. In-memory by default; a shared
// Redis cache when SIRENSIM_REDIS_ADDRESS is configured, so several engine
// processes can reuse each other's routing results.
func newRouteCache(redisAddress string, redisPassword string, ttl time.Duration) (*routeCache, error) {
	if redisAddress != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddress,
			Password: redisPassword,
		})

		log.Info().Str("address", redisAddress).Msg("Routing cache using Redis")

		redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))

		return cache.New[*roadnet.Route](redisStore), nil
	}

	ristrettoClient, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1 << 26,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory route cache: %w", err)
	}

	ristrettoStore := ristrettostore.NewRistretto(ristrettoClient, store.WithExpiration(ttl))

	return cache.New[*roadnet.Route](ristrettoStore), nil
}
