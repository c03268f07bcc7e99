package maps

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/redis"
)

const (
	cacheKindForward = "forward"
	cacheKindReverse = "reverse"
)

// Geocoder resolves addresses to coordinates and back.
type Geocoder interface {
	ResolveCoordinates(ctx context.Context, street, postalCode, city string) (float64, float64, error)
	ResolveAddress(ctx context.Context, lat, lng float64) (string, string, error)
}

type geocodeCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GeocodeKey(kind, query string) string
}

// CachedGeocoder memoizes geocoding lookups in Redis. Cache failures are
// logged and the upstream is called directly.
type CachedGeocoder struct {
	next  Geocoder
	cache geocodeCache
	ttl   time.Duration
	logg  *logger.Logger
}

type cachedCoordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type cachedAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
}

func NewCachedGeocoder(next Geocoder, cache geocodeCache, ttl time.Duration, logg *logger.Logger) (*CachedGeocoder, error) {
	if next == nil {
		return nil, errors.New("geocoder required")
	}
	if cache == nil {
		return nil, errors.New("geocode cache required")
	}
	return &CachedGeocoder{next: next, cache: cache, ttl: ttl, logg: logg}, nil
}

func (g *CachedGeocoder) ResolveCoordinates(ctx context.Context, street, postalCode, city string) (float64, float64, error) {
	key := g.cache.GeocodeKey(cacheKindForward, normalizeQuery(street, postalCode, city))

	var hit cachedCoordinates
	if g.lookup(ctx, key, &hit) {
		return hit.Lat, hit.Lng, nil
	}

	lat, lng, err := g.next.ResolveCoordinates(ctx, street, postalCode, city)
	if err != nil {
		return 0, 0, err
	}
	g.store(ctx, key, cachedCoordinates{Lat: lat, Lng: lng})
	return lat, lng, nil
}

func (g *CachedGeocoder) ResolveAddress(ctx context.Context, lat, lng float64) (string, string, error) {
	key := g.cache.GeocodeKey(cacheKindReverse, formatLatLng(lat, lng))

	var hit cachedAddress
	if g.lookup(ctx, key, &hit) {
		return hit.Address, hit.City, nil
	}

	address, city, err := g.next.ResolveAddress(ctx, lat, lng)
	if err != nil {
		return "", "", err
	}
	g.store(ctx, key, cachedAddress{Address: address, City: city})
	return address, city, nil
}

func (g *CachedGeocoder) lookup(ctx context.Context, key string, dest any) bool {
	raw, err := g.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrNil) {
			g.warn(ctx, key, "geocode cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		g.warn(ctx, key, "geocode cache entry corrupt")
		return false
	}
	return true
}

func (g *CachedGeocoder) store(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, string(payload), g.ttl); err != nil {
		g.warn(ctx, key, "geocode cache write failed")
	}
}

func (g *CachedGeocoder) warn(ctx context.Context, key, msg string) {
	if g.logg == nil {
		return
	}
	g.logg.Warn(g.logg.WithField(ctx, "cache_key", key), msg)
}

func normalizeQuery(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		clean = append(clean, strings.ToLower(strings.Join(strings.Fields(part), " ")))
	}
	return strings.Join(clean, "|")
}
