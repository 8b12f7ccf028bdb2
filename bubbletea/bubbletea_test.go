package bubbletea_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/wayfare"
	bt "github.com/fwojciec/wayfare/bubbletea"
	"github.com/fwojciec/wayfare/mock"
	"github.com/stretchr/testify/require"
)

const initialItinerary = "## Day 1\n\n- Louvre Museum"

// newPlanner returns a session holding initialItinerary. Each refinement
// replies with "## Day 1\n\n- Eiffel Tower (revision n)".
func newPlanner(t *testing.T) *wayfare.Session {
	t.Helper()
	var calls atomic.Int32
	provider := &mock.Provider{
		CompleteFn: func(context.Context, wayfare.Request) (wayfare.Response, error) {
			n := calls.Add(1)
			if n == 1 {
				return wayfare.Response{Text: initialItinerary}, nil
			}
			return wayfare.Response{Text: fmt.Sprintf("## Day 1\n\n- Eiffel Tower (revision %d)", n-1)}, nil
		},
	}
	return plannedSession(t, provider)
}

func plannedSession(t *testing.T, provider wayfare.Provider) *wayfare.Session {
	t.Helper()
	s, err := wayfare.NewSession(wayfare.Services{
		Geocoder: &mock.Geocoder{GeocodeFn: func(context.Context, string) (wayfare.GeoLocation, error) {
			return wayfare.GeoLocation{Lat: 48.8566, Lng: 2.3522}, nil
		}},
		Attractions: &mock.AttractionFinder{AttractionsFn: func(context.Context, wayfare.GeoLocation, wayfare.SearchOptions) ([]string, error) {
			return []string{"Louvre Museum"}, nil
		}},
		Weather: &mock.WeatherReporter{WeatherFn: func(context.Context, wayfare.GeoLocation) (string, error) {
			return "clear sky", nil
		}},
		Provider: provider,
	})
	require.NoError(t, err)
	_, err = s.Plan(context.Background(), wayfare.RawRequest{
		Destination: "Paris",
		StartDate:   "2024-06-01",
		EndDate:     "2024-06-03",
		Budget:      "500",
		Interests:   []string{"History"},
	})
	require.NoError(t, err)
	return s
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, p bt.Planner) bt.Model {
	t.Helper()
	return updateModel(t, bt.New(p, wayfare.DefaultTheme()), tea.WindowSizeMsg{Width: 80, Height: 24})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// typeText sets the input value as if the user had typed it.
func typeText(m bt.Model, text string) bt.Model {
	m.Input.SetValue(text)
	return m
}
