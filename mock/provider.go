// Package mock provides test doubles for wayfare interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/wayfare"
)

// Interface compliance checks.
var (
	_ wayfare.Provider         = (*Provider)(nil)
	_ wayfare.Geocoder         = (*Geocoder)(nil)
	_ wayfare.AttractionFinder = (*AttractionFinder)(nil)
	_ wayfare.WeatherReporter  = (*WeatherReporter)(nil)
)

// Provider is a test double for wayfare.Provider.
// Set CompleteFn before calling Complete.
type Provider struct {
	CompleteFn func(ctx context.Context, req wayfare.Request) (wayfare.Response, error)
}

// Complete delegates to CompleteFn.
func (p *Provider) Complete(ctx context.Context, req wayfare.Request) (wayfare.Response, error) {
	return p.CompleteFn(ctx, req)
}

// Geocoder is a test double for wayfare.Geocoder.
type Geocoder struct {
	GeocodeFn func(ctx context.Context, destination string) (wayfare.GeoLocation, error)
}

// Geocode delegates to GeocodeFn.
func (g *Geocoder) Geocode(ctx context.Context, destination string) (wayfare.GeoLocation, error) {
	return g.GeocodeFn(ctx, destination)
}

// AttractionFinder is a test double for wayfare.AttractionFinder.
type AttractionFinder struct {
	AttractionsFn func(ctx context.Context, loc wayfare.GeoLocation, opts wayfare.SearchOptions) ([]string, error)
}

// Attractions delegates to AttractionsFn.
func (a *AttractionFinder) Attractions(ctx context.Context, loc wayfare.GeoLocation, opts wayfare.SearchOptions) ([]string, error) {
	return a.AttractionsFn(ctx, loc, opts)
}

// WeatherReporter is a test double for wayfare.WeatherReporter.
type WeatherReporter struct {
	WeatherFn func(ctx context.Context, loc wayfare.GeoLocation) (string, error)
}

// Weather delegates to WeatherFn.
func (w *WeatherReporter) Weather(ctx context.Context, loc wayfare.GeoLocation) (string, error) {
	return w.WeatherFn(ctx, loc)
}
