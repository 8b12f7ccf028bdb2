// Package openweather implements [wayfare.WeatherReporter] for the
// OpenWeather current weather API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fwojciec/wayfare"
)

const (
	defaultBaseURL = "https://api.openweathermap.org"
	weatherPath    = "/data/2.5/weather"
	maxBodyBytes   = 1 << 20
)

// Interface compliance check.
var _ wayfare.WeatherReporter = (*Client)(nil)

// Client implements [wayfare.WeatherReporter] for OpenWeather.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new OpenWeather [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// apiResponse holds the parts of the current weather payload we read. Error
// bodies (bad key, rate limit) decode into it too, with Weather empty.
type apiResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
}

// Weather returns the first weather description for loc. A well-formed
// response without weather data yields [wayfare.WeatherUnavailable]. An
// unreachable service or a malformed body wraps [wayfare.ErrExternalService].
func (c *Client) Weather(ctx context.Context, loc wayfare.GeoLocation) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+weatherPath+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("openweather: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openweather: %w: %w", wayfare.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("openweather: %w: read body: %w", wayfare.ErrExternalService, err)
	}
	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("openweather: %w: HTTP %d: malformed body: %w", wayfare.ErrExternalService, resp.StatusCode, err)
	}
	if len(data.Weather) == 0 || strings.TrimSpace(data.Weather[0].Description) == "" {
		return wayfare.WeatherUnavailable, nil
	}
	return data.Weather[0].Description, nil
}
