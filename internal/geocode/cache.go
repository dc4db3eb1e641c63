package geocode

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "geocode:"

// CachedGeocoder memoizes successful lookups in Redis. Addresses repeat
// (the same comunas get searched over and over) and Nominatim rate-limits,
// so hits skip the upstream call entirely. Redis being down is never an
// error: the cache degrades to a pass-through.
type CachedGeocoder struct {
	next   Geocoder
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCached(next Geocoder, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedGeocoder {
	return &CachedGeocoder{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (Point, error) {
	key := cacheKey(address)

	if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var p Point
		if err := json.Unmarshal(cached, &p); err == nil {
			return p, nil
		}
	} else if err != redis.Nil {
		c.logger.WithError(err).Warn("geocode cache read failed")
	}

	point, err := c.next.Geocode(ctx, address)
	if err != nil {
		return Point{}, err
	}

	if payload, err := json.Marshal(point); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.WithError(err).Warn("geocode cache write failed")
		}
	}
	return point, nil
}

func cacheKey(address string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(address))
}
