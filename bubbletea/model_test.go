package bubbletea_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/wayfare"
	bt "github.com/fwojciec/wayfare/bubbletea"
	"github.com/fwojciec/wayfare/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingPlanner holds every refinement until its context is cancelled.
type blockingPlanner struct{}

func (blockingPlanner) State() wayfare.State { return wayfare.StateReady }
func (blockingPlanner) Itinerary() string    { return initialItinerary }
func (blockingPlanner) Terminate()           {}

func (blockingPlanner) Refine(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", fmt.Errorf("refine: %w: %w", wayfare.ErrExternalService, ctx.Err())
}

func TestNew(t *testing.T) {
	t.Parallel()

	m := bt.New(newPlanner(t), wayfare.DefaultTheme())

	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
	assert.Equal(t, initialItinerary, m.Itinerary())
	assert.Equal(t, 0, m.Revisions())
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_Update(t *testing.T) {
	t.Parallel()

	t.Run("window size initializes viewport", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, newPlanner(t))

		assert.Equal(t, 80, m.Viewport.Width)
		assert.Equal(t, 20, m.Viewport.Height) // 24 - 1 - 1 - 2
		view := m.View()
		assert.Contains(t, view, "Itinerary")
		assert.Contains(t, view, "Louvre Museum")
		assert.Contains(t, view, "Enter to refine")
	})

	t.Run("resize updates viewport dimensions", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, newPlanner(t))
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

		assert.Equal(t, 120, m.Viewport.Width)
		assert.Equal(t, 36, m.Viewport.Height)
		assert.Contains(t, m.View(), "Louvre Museum")
	})

	t.Run("tiny window keeps a one line viewport", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, newPlanner(t))
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 40, Height: 2})

		assert.Equal(t, 1, m.Viewport.Height)
	})

	t.Run("enter with empty input does nothing", func(t *testing.T) {
		t.Parallel()

		m := typeText(initModel(t, newPlanner(t)), "   ")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model, ok := updated.(bt.Model)
		require.True(t, ok)

		assert.Nil(t, cmd)
		assert.False(t, model.Running())
	})

	t.Run("enter refines the itinerary", func(t *testing.T) {
		t.Parallel()

		p := newPlanner(t)
		m := typeText(initModel(t, p), "swap the Louvre for the Eiffel Tower")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m, ok := updated.(bt.Model)
		require.True(t, ok)
		require.NotNil(t, cmd)

		assert.True(t, m.Running())
		assert.Empty(t, m.Input.Value())
		assert.Contains(t, m.View(), "Refining itinerary...")

		msg, ok := cmd().(bt.RefineDoneMsg)
		require.True(t, ok)
		assert.Equal(t, "swap the Louvre for the Eiffel Tower", msg.Request)
		require.NoError(t, msg.Err)

		m = updateModel(t, m, msg)
		assert.False(t, m.Running())
		assert.Equal(t, 1, m.Revisions())
		assert.Equal(t, p.Itinerary(), m.Itinerary())
		view := m.View()
		assert.Contains(t, view, "Eiffel Tower (revision 1)")
		assert.Contains(t, view, "swap the Louvre for the Eiffel Tower")
		assert.Contains(t, view, "(revision 1)")
		assert.Len(t, p.Conversation(), 3)
	})

	t.Run("enter while refining is ignored", func(t *testing.T) {
		t.Parallel()

		m := typeText(initModel(t, blockingPlanner{}), "first")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.Running())

		m = typeText(m, "second")
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
	})

	t.Run("refinement error is shown and itinerary kept", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, newPlanner(t))
		m = updateModel(t, m, bt.RefineDoneMsg{
			Request: "add a museum",
			Err:     fmt.Errorf("refine: %w: rate limited", wayfare.ErrExternalService),
		})

		require.Error(t, m.Err())
		assert.Equal(t, initialItinerary, m.Itinerary())
		assert.Equal(t, 0, m.Revisions())
		assert.Contains(t, m.View(), "Error: refine: external service error: rate limited")
	})

	t.Run("next submit clears the error", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, newPlanner(t))
		m = updateModel(t, m, bt.RefineDoneMsg{Err: errors.New("boom")})
		require.Error(t, m.Err())

		m = typeText(m, "add a museum")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.NoError(t, m.Err())
	})

	t.Run("ctrl+c while refining cancels without error", func(t *testing.T) {
		t.Parallel()

		m := typeText(initModel(t, blockingPlanner{}), "add a museum")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m, ok := updated.(bt.Model)
		require.True(t, ok)
		require.NotNil(t, cmd)

		updated, quit := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		m, ok = updated.(bt.Model)
		require.True(t, ok)
		assert.Nil(t, quit)

		msg := cmd()
		m = updateModel(t, m, msg)
		assert.False(t, m.Running())
		assert.NoError(t, m.Err())
		assert.Equal(t, initialItinerary, m.Itinerary())
	})

	t.Run("ctrl+c when idle terminates and quits", func(t *testing.T) {
		t.Parallel()

		p := newPlanner(t)
		_, cmd := initModel(t, p).Update(tea.KeyMsg{Type: tea.KeyCtrlC})

		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
		assert.Equal(t, wayfare.StateTerminated, p.State())
	})

	t.Run("termination signal quits with itinerary unchanged", func(t *testing.T) {
		t.Parallel()

		p := newPlanner(t)
		m := typeText(initModel(t, p), "Done")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m, ok := updated.(bt.Model)
		require.True(t, ok)
		require.NotNil(t, cmd)

		updated, quit := m.Update(cmd())
		m, ok = updated.(bt.Model)
		require.True(t, ok)
		require.NotNil(t, quit)
		_, isQuit := quit().(tea.QuitMsg)
		assert.True(t, isQuit)
		assert.Equal(t, wayfare.StateTerminated, p.State())
		assert.Equal(t, initialItinerary, m.Itinerary())
		assert.Equal(t, 0, m.Revisions())
	})

	t.Run("terminated session quits", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, newPlanner(t))
		_, cmd := m.Update(bt.RefineDoneMsg{Err: wayfare.ErrTerminated})

		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("status line fits narrow terminal", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, newPlanner(t))
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 24, Height: 10})
		m = updateModel(t, m, bt.RefineDoneMsg{Err: errors.New(strings.Repeat("upstream failure ", 10))})

		var status string
		for _, line := range strings.Split(m.View(), "\n") {
			if strings.Contains(line, "Error") {
				status = line
			}
		}
		require.NotEmpty(t, status)
		assert.LessOrEqual(t, lipgloss.Width(status), 24)
		assert.Contains(t, status, "…")
	})
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("refine then finish", func(t *testing.T) {
		t.Parallel()

		p := newPlanner(t)
		tm := teatest.NewTestModel(t, bt.New(p, wayfare.DefaultTheme()),
			teatest.WithInitialTermSize(80, 24),
		)

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Louvre Museum"))
		}, teatest.WithDuration(5*time.Second))

		tm.Type("more towers please")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("revision 1")) &&
				bytes.Contains(out, []byte("Enter to refine"))
		}, teatest.WithDuration(5*time.Second))

		tm.Type("done")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.Equal(t, 1, final.Revisions())
		assert.NoError(t, final.Err())
		assert.Equal(t, wayfare.StateTerminated, p.State())
		assert.Len(t, p.Conversation(), 3)
	})

	t.Run("failed refinement keeps the session usable", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		provider := &mock.Provider{
			CompleteFn: func(context.Context, wayfare.Request) (wayfare.Response, error) {
				if calls.Add(1) == 1 {
					return wayfare.Response{Text: initialItinerary}, nil
				}
				return wayfare.Response{}, errors.New("upstream unavailable")
			},
		}
		p := plannedSession(t, provider)
		tm := teatest.NewTestModel(t, bt.New(p, wayfare.DefaultTheme()),
			teatest.WithInitialTermSize(100, 24),
		)

		tm.Type("add a museum")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("upstream unavailable"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))

		assert.Equal(t, wayfare.StateTerminated, p.State())
		assert.Equal(t, initialItinerary, p.Itinerary())
		assert.Len(t, p.Conversation(), 1)
	})
}
