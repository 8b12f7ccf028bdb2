package wayfare

import (
	"context"
	"strconv"
	"time"
)

// DateLayout is the only accepted date format for trip requests.
const DateLayout = "2006-01-02"

// WeatherUnavailable is returned by a WeatherReporter when the upstream
// response carries no weather data.
const WeatherUnavailable = "Weather data not available."

// SuggestedInterests is the interest vocabulary offered to users.
// Validate accepts any non-blank tag.
var SuggestedInterests = []string{"Nature", "History", "Food", "Adventure", "Shopping", "Relaxation"}

// RawRequest is a trip request as typed by the user, before validation.
type RawRequest struct {
	Destination string
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD
	Budget      string
	Interests   []string
}

// TripRequest is a validated trip request. Only Validate produces one.
type TripRequest struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Budget      float64 // GBP
	Interests   []string
}

// Days returns the inclusive number of days covered by the trip.
func (r TripRequest) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

// GeoLocation is a resolved coordinate.
type GeoLocation struct {
	Lat float64
	Lng float64
}

func (g GeoLocation) String() string {
	return strconv.FormatFloat(g.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(g.Lng, 'f', 6, 64)
}

// Search defaults for AttractionFinder.
const (
	DefaultSearchRadius   = 5000 // meters
	DefaultSearchCategory = "tourist_attraction"
)

// SearchOptions narrows a points-of-interest search.
type SearchOptions struct {
	RadiusMeters int
	Category     string
}

// DefaultSearchOptions returns a 5 km tourist attraction search.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{RadiusMeters: DefaultSearchRadius, Category: DefaultSearchCategory}
}

// Geocoder resolves a destination name to a coordinate. A destination with no
// match returns an error wrapping ErrGeocode.
type Geocoder interface {
	Geocode(ctx context.Context, destination string) (GeoLocation, error)
}

// AttractionFinder lists points of interest near a coordinate. An empty
// result is not an error.
type AttractionFinder interface {
	Attractions(ctx context.Context, loc GeoLocation, opts SearchOptions) ([]string, error)
}

// WeatherReporter describes current weather at a coordinate. Missing data
// yields WeatherUnavailable; transport failures wrap ErrExternalService.
type WeatherReporter interface {
	Weather(ctx context.Context, loc GeoLocation) (string, error)
}
