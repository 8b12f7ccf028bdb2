package wayfare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is a Session lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	// StateGenerating covers both a validated request awaiting Generate and
	// the generation call itself.
	StateGenerating
	StateReady
	StateRefining
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	case StateRefining:
		return "refining"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// terminationSignals end a refinement session when entered as refinement text.
var terminationSignals = []string{"exit", "quit", "done"}

// IsTerminationSignal reports whether text asks to end the session.
func IsTerminationSignal(text string) bool {
	text = strings.TrimSpace(text)
	for _, s := range terminationSignals {
		if strings.EqualFold(text, s) {
			return true
		}
	}
	return false
}

// Services are the upstream capabilities a Session composes. All fields are
// required.
type Services struct {
	Geocoder    Geocoder
	Attractions AttractionFinder
	Weather     WeatherReporter
	Provider    Provider
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger. The default discards everything.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithCallTimeout bounds every external call made by the session. Zero
// means no timeout.
func WithCallTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

// WithSearchOptions overrides DefaultSearchOptions for attraction lookups.
func WithSearchOptions(opts SearchOptions) SessionOption {
	return func(s *Session) { s.search = opts }
}

// WithGenerator replaces the default Generator built from Services.Provider.
func WithGenerator(g *Generator) SessionOption {
	return func(s *Session) { s.generator = g }
}

// WithRefiner replaces the default Refiner built from Services.Provider.
func WithRefiner(r *Refiner) SessionOption {
	return func(s *Session) { s.refiner = r }
}

// Session drives one trip through validation, generation and refinement.
//
// Operations are serialized: a second call blocks until the first returns.
// Accessors never block on an in-flight operation. A failed operation leaves
// the itinerary and conversation exactly as they were.
type Session struct {
	id        string
	svc       Services
	generator *Generator
	refiner   *Refiner
	search    SearchOptions
	timeout   time.Duration
	logger    *slog.Logger

	op    sync.Mutex // held for the duration of each operation
	state atomic.Int32

	// validated request awaiting Generate, owned by op
	pendingRequest  *TripRequest
	pendingLocation *GeoLocation

	mu        sync.RWMutex // guards the fields below
	request   *TripRequest
	location  *GeoLocation
	prompt    string
	itinerary string
	conv      Conversation
}

// NewSession creates an idle Session.
func NewSession(svc Services, opts ...SessionOption) (*Session, error) {
	switch {
	case svc.Geocoder == nil:
		return nil, errors.New("session: geocoder is required")
	case svc.Attractions == nil:
		return nil, errors.New("session: attraction finder is required")
	case svc.Weather == nil:
		return nil, errors.New("session: weather reporter is required")
	case svc.Provider == nil:
		return nil, errors.New("session: provider is required")
	}
	s := &Session{
		id:     uuid.NewString(),
		svc:    svc,
		search: DefaultSearchOptions(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	if s.generator == nil {
		s.generator = NewGenerator(svc.Provider)
	}
	if s.refiner == nil {
		s.refiner = NewRefiner(svc.Provider)
	}
	s.logger = s.logger.With("session_id", s.id)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) {
	prev := State(s.state.Swap(int32(st)))
	if prev != st {
		s.logger.Debug("state changed", "from", prev.String(), "state", st.String())
	}
}

// Itinerary returns the current itinerary, or "" before the first successful
// generation.
func (s *Session) Itinerary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itinerary
}

// Conversation returns a copy of the conversation turns.
func (s *Session) Conversation() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conv.Turns()
}

// Request returns the request behind the current itinerary. A request that
// has been validated but not yet generated is not reported.
func (s *Session) Request() (TripRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.request == nil {
		return TripRequest{}, false
	}
	return *s.request, true
}

// Location returns the coordinate of the request behind the current
// itinerary.
func (s *Session) Location() (GeoLocation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.location == nil {
		return GeoLocation{}, false
	}
	return *s.location, true
}

// Prompt returns the prompt behind the current itinerary.
func (s *Session) Prompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompt
}

// Validate checks raw and, on success, holds the request for Generate. On
// failure the returned error is a ValidationErrors and the session becomes
// StateInvalid. The current itinerary and its request are kept either way.
func (s *Session) Validate(ctx context.Context, raw RawRequest) error {
	s.op.Lock()
	defer s.op.Unlock()
	return s.validate(ctx, raw)
}

func (s *Session) validate(ctx context.Context, raw RawRequest) error {
	if s.State() == StateTerminated {
		return ErrTerminated
	}
	s.setState(StateValidating)

	ctx, cancel := s.callContext(ctx)
	defer cancel()
	req, loc, err := Validate(ctx, s.svc.Geocoder, raw)
	if err != nil {
		s.logger.Info("trip request rejected", "destination", raw.Destination, "err", err)
		s.pendingRequest, s.pendingLocation = nil, nil
		s.setState(StateInvalid)
		return err
	}

	s.pendingRequest, s.pendingLocation = &req, loc
	s.logger.Info("trip request accepted", "destination", req.Destination, "days", req.Days(), "location", loc.String())
	s.setState(StateGenerating)
	return nil
}

// Generate builds the initial itinerary for the validated request. It looks
// up attractions, then weather, then calls the model. A weather failure
// degrades to WeatherUnavailable; any other failure aborts and the session
// returns to StateReady if an itinerary already exists, otherwise to
// StateInvalid. Success replaces the request, itinerary and prompt together
// and restarts the conversation.
func (s *Session) Generate(ctx context.Context) (string, error) {
	s.op.Lock()
	defer s.op.Unlock()
	return s.generate(ctx)
}

func (s *Session) generate(ctx context.Context) (string, error) {
	switch s.State() {
	case StateTerminated:
		return "", ErrTerminated
	case StateGenerating:
	default:
		return "", fmt.Errorf("generate: no validated request: %w", ErrNotReady)
	}

	req, loc := *s.pendingRequest, *s.pendingLocation
	s.pendingRequest, s.pendingLocation = nil, nil
	hadItinerary := s.Itinerary() != ""

	start := time.Now()
	itinerary, prompt, err := s.compose(ctx, req, loc)
	if err != nil {
		s.logger.Error("itinerary generation failed", "destination", req.Destination, "duration", time.Since(start), "err", err)
		if hadItinerary {
			s.setState(StateReady)
		} else {
			s.setState(StateInvalid)
		}
		return "", err
	}

	s.mu.Lock()
	s.request, s.location = &req, &loc
	s.prompt = prompt
	s.itinerary = itinerary
	s.conv.Seed(itinerary)
	s.mu.Unlock()
	s.logger.Info("itinerary generated", "destination", req.Destination, "duration", time.Since(start))
	s.setState(StateReady)
	return itinerary, nil
}

func (s *Session) compose(ctx context.Context, req TripRequest, loc GeoLocation) (itinerary, prompt string, err error) {
	attractions, err := s.attractions(ctx, loc)
	if err != nil {
		return "", "", fmt.Errorf("attractions: %w", err)
	}
	weather := s.weather(ctx, loc)

	prompt = BuildPrompt(PromptInput{Request: req, Attractions: attractions, Weather: weather})

	cctx, cancel := s.callContext(ctx)
	defer cancel()
	resp, err := s.generator.Generate(cctx, prompt)
	if err != nil {
		return "", "", err
	}
	s.logger.Debug("model usage", "model", resp.Model, "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens, "total_tokens", resp.Usage.Total())
	if resp.StopReason.Truncated() {
		s.logger.Warn("itinerary truncated by model", "stop_reason", resp.RawStopReason)
	}
	return resp.Text, prompt, nil
}

func (s *Session) attractions(ctx context.Context, loc GeoLocation) ([]string, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.svc.Attractions.Attractions(ctx, loc, s.search)
}

func (s *Session) weather(ctx context.Context, loc GeoLocation) string {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	w, err := s.svc.Weather.Weather(ctx, loc)
	if err != nil {
		s.logger.Warn("weather lookup failed", "location", loc.String(), "err", err)
		return WeatherUnavailable
	}
	if strings.TrimSpace(w) == "" {
		return WeatherUnavailable
	}
	return w
}

// Plan validates raw and generates its itinerary in one step.
func (s *Session) Plan(ctx context.Context, raw RawRequest) (string, error) {
	s.op.Lock()
	defer s.op.Unlock()
	if err := s.validate(ctx, raw); err != nil {
		return "", err
	}
	return s.generate(ctx)
}

// Refine applies a change request to the current itinerary and returns the
// updated one. A termination signal ends the session and returns the
// current itinerary unchanged. Refine returns ErrNotReady until an
// itinerary exists and ErrTerminated once the session has ended.
func (s *Session) Refine(ctx context.Context, text string) (string, error) {
	s.op.Lock()
	defer s.op.Unlock()

	if s.State() == StateTerminated {
		return "", ErrTerminated
	}
	if IsTerminationSignal(text) {
		s.terminate()
		return s.Itinerary(), nil
	}
	if s.State() != StateReady {
		return "", ErrNotReady
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}

	s.setState(StateRefining)
	defer s.setState(StateReady)

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	s.mu.RLock()
	conv := Conversation{turns: s.conv.Turns()}
	s.mu.RUnlock()

	start := time.Now()
	resp, err := s.refiner.Refine(ctx, &conv, text)
	if err != nil {
		s.logger.Error("refinement failed", "turns", conv.Len(), "duration", time.Since(start), "err", err)
		return "", err
	}

	s.mu.Lock()
	s.conv = conv
	s.itinerary = resp.Text
	s.mu.Unlock()
	s.logger.Info("itinerary refined", "turns", conv.Len(), "total_tokens", resp.Usage.Total(), "duration", time.Since(start))
	return resp.Text, nil
}

// Terminate ends the session. It is safe to call more than once.
func (s *Session) Terminate() {
	s.op.Lock()
	defer s.op.Unlock()
	s.terminate()
}

func (s *Session) terminate() {
	if s.State() == StateTerminated {
		return
	}
	s.setState(StateTerminated)
	s.logger.Info("session terminated")
}

func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
