package openweather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/wayfare"
	"github.com/fwojciec/wayfare/openweather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paris = wayfare.GeoLocation{Lat: 48.8566, Lng: 2.3522}

func TestClient_Weather(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "48.8566", q.Get("lat"))
		assert.Equal(t, "2.3522", q.Get("lon"))
		assert.Equal(t, "test-key", q.Get("appid"))
		_, _ = w.Write([]byte(`{"weather":[{"id":800,"main":"Clear","description":"clear sky"},{"id":701,"main":"Mist","description":"mist"}],"cod":200}`))
	}))
	defer srv.Close()

	got, err := openweather.New("test-key", openweather.WithBaseURL(srv.URL)).Weather(context.Background(), paris)

	require.NoError(t, err)
	assert.Equal(t, "clear sky", got)
}

func TestClient_Weather_Unavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"no weather field", http.StatusOK, `{"cod":200,"main":{"temp":290.1}}`},
		{"empty weather list", http.StatusOK, `{"weather":[],"cod":200}`},
		{"blank description", http.StatusOK, `{"weather":[{"description":""}]}`},
		{"invalid key", http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key."}`},
		{"rate limited", http.StatusTooManyRequests, `{"cod":"429","message":"limit exceeded"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := openweather.New("k", openweather.WithBaseURL(srv.URL)).Weather(context.Background(), paris)

			require.NoError(t, err)
			assert.Equal(t, wayfare.WeatherUnavailable, got)
		})
	}
}

func TestClient_Weather_MalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := openweather.New("k", openweather.WithBaseURL(srv.URL)).Weather(context.Background(), paris)

	assert.ErrorIs(t, err, wayfare.ErrExternalService)
	assert.ErrorContains(t, err, "HTTP 502")
}

func TestClient_Weather_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := openweather.New("k", openweather.WithBaseURL(url)).Weather(context.Background(), paris)

	assert.ErrorIs(t, err, wayfare.ErrExternalService)
}

func TestClient_Weather_Canceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := openweather.New("k", openweather.WithBaseURL(srv.URL)).Weather(ctx, paris)

	assert.ErrorIs(t, err, context.Canceled)
}
