// Package googlemaps implements [wayfare.Geocoder] and
// [wayfare.AttractionFinder] on the Google Maps Geocoding and Places APIs.
package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fwojciec/wayfare"
	"github.com/samber/lo"
	"googlemaps.github.io/maps"
)

// Interface compliance checks.
var (
	_ wayfare.Geocoder         = (*Client)(nil)
	_ wayfare.AttractionFinder = (*Client)(nil)
)

const statusZeroResults = "ZERO_RESULTS"

// Client resolves destinations and looks up nearby points of interest.
type Client struct {
	client *maps.Client
}

// Option configures a [Client].
type Option func(*[]maps.ClientOption)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(opts *[]maps.ClientOption) {
		*opts = append(*opts, maps.WithBaseURL(url))
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(opts *[]maps.ClientOption) {
		*opts = append(*opts, maps.WithHTTPClient(hc))
	}
}

// New creates a [Client] with the given API key.
func New(apiKey string, opts ...Option) (*Client, error) {
	clientOpts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	for _, o := range opts {
		o(&clientOpts)
	}
	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("googlemaps: %w", err)
	}
	return &Client{client: client}, nil
}

// Geocode returns the location of the first geocoding match. A destination
// with no match wraps [wayfare.ErrGeocode].
func (c *Client) Geocode(ctx context.Context, destination string) (wayfare.GeoLocation, error) {
	results, err := c.client.Geocode(ctx, &maps.GeocodingRequest{Address: destination})
	if err != nil {
		if isZeroResults(err) {
			return wayfare.GeoLocation{}, fmt.Errorf("googlemaps: %q: %w", destination, wayfare.ErrGeocode)
		}
		return wayfare.GeoLocation{}, fmt.Errorf("googlemaps: %w: %w", wayfare.ErrExternalService, err)
	}
	if len(results) == 0 {
		return wayfare.GeoLocation{}, fmt.Errorf("googlemaps: %q: %w", destination, wayfare.ErrGeocode)
	}
	loc := results[0].Geometry.Location
	return wayfare.GeoLocation{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Attractions returns the names of places near loc, in the order the Places
// API ranks them. No results is an empty list, not an error.
func (c *Client) Attractions(ctx context.Context, loc wayfare.GeoLocation, opts wayfare.SearchOptions) ([]string, error) {
	if opts.RadiusMeters <= 0 {
		opts.RadiusMeters = wayfare.DefaultSearchRadius
	}
	if opts.Category == "" {
		opts.Category = wayfare.DefaultSearchCategory
	}

	resp, err := c.client.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: loc.Lat, Lng: loc.Lng},
		Radius:   uint(opts.RadiusMeters),
		Type:     maps.PlaceType(opts.Category),
	})
	if err != nil {
		if isZeroResults(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("googlemaps: %w: %w", wayfare.ErrExternalService, err)
	}

	return lo.FilterMap(resp.Results, func(r maps.PlacesSearchResult, _ int) (string, bool) {
		name := strings.TrimSpace(r.Name)
		return name, name != ""
	}), nil
}

// isZeroResults reports whether err is the API's empty-result status rather
// than a real failure.
func isZeroResults(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && strings.Contains(err.Error(), statusZeroResults)
}
