// Package cache provides in-memory caching decorators for wayfare lookups
// whose answers rarely change: destination coordinates and nearby places.
// Only successful results are cached.
package cache

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/wayfare"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a cached lookup stays fresh.
const DefaultTTL = 24 * time.Hour

// Interface compliance checks.
var (
	_ wayfare.Geocoder         = (*Geocoder)(nil)
	_ wayfare.AttractionFinder = (*AttractionFinder)(nil)
)

func newStore(ttl time.Duration) *gocache.Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return gocache.New(ttl, ttl/2)
}

// Geocoder caches destination lookups by case-insensitive name.
type Geocoder struct {
	next  wayfare.Geocoder
	store *gocache.Cache
}

// NewGeocoder wraps next. A ttl of zero uses DefaultTTL.
func NewGeocoder(next wayfare.Geocoder, ttl time.Duration) *Geocoder {
	return &Geocoder{next: next, store: newStore(ttl)}
}

// Geocode returns a cached location or asks the wrapped Geocoder.
func (g *Geocoder) Geocode(ctx context.Context, destination string) (wayfare.GeoLocation, error) {
	key := strings.ToLower(strings.TrimSpace(destination))
	if v, ok := g.store.Get(key); ok {
		return v.(wayfare.GeoLocation), nil
	}
	loc, err := g.next.Geocode(ctx, destination)
	if err != nil {
		return wayfare.GeoLocation{}, err
	}
	g.store.Set(key, loc, gocache.DefaultExpiration)
	return loc, nil
}

// AttractionFinder caches place lookups by coordinate and search options.
type AttractionFinder struct {
	next  wayfare.AttractionFinder
	store *gocache.Cache
}

// NewAttractionFinder wraps next. A ttl of zero uses DefaultTTL.
func NewAttractionFinder(next wayfare.AttractionFinder, ttl time.Duration) *AttractionFinder {
	return &AttractionFinder{next: next, store: newStore(ttl)}
}

// Attractions returns cached place names or asks the wrapped finder.
// Callers receive their own copy of the slice.
func (a *AttractionFinder) Attractions(ctx context.Context, loc wayfare.GeoLocation, opts wayfare.SearchOptions) ([]string, error) {
	key := loc.String() + "|" + strconv.Itoa(opts.RadiusMeters) + "|" + opts.Category
	if v, ok := a.store.Get(key); ok {
		return slices.Clone(v.([]string)), nil
	}
	names, err := a.next.Attractions(ctx, loc, opts)
	if err != nil {
		return nil, err
	}
	a.store.Set(key, slices.Clone(names), gocache.DefaultExpiration)
	return names, nil
}
