// Command wayfare plans a trip itinerary with an LLM and lets you refine it
// conversationally.
//
// Usage:
//
//	OPENAI_API_KEY=sk-... GOOGLEMAPS_API_KEY=... OPENWEATHER_API_KEY=... \
//	  wayfare -destination Paris -start 2024-06-01 -end 2024-06-03 -budget 500 -interests History,Food
//
// Flags:
//
//	-destination string  City or place to visit
//	-start string        First day, YYYY-MM-DD
//	-end string          Last day, YYYY-MM-DD
//	-budget string       Total budget in GBP
//	-interests string    Comma-separated interests
//	-provider string     Provider: openai, anthropic, gemini (auto-detected from env vars if omitted)
//	-model string        Model ID (default: provider default)
//	-api-key string      LLM API key (overrides provider's env var)
//	-env string          Path to a dotenv file (default: .env)
//	-print               Print the itinerary and exit instead of opening the refinement TUI
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fwojciec/wayfare"
	bt "github.com/fwojciec/wayfare/bubbletea"
	"github.com/fwojciec/wayfare/cache"
	"github.com/fwojciec/wayfare/googlemaps"
	"github.com/fwojciec/wayfare/openweather"
)

func main() {
	if err := run(); err != nil {
		var verrs wayfare.ValidationErrors
		if errors.As(err, &verrs) {
			fmt.Fprintln(os.Stderr, "wayfare: please fix the following:")
			for _, msg := range verrs.Messages() {
				fmt.Fprintf(os.Stderr, "  - %s\n", msg)
			}
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "wayfare: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse flags.
	var (
		destination  = flag.String("destination", "", "City or place to visit")
		start        = flag.String("start", "", "First day of the trip (YYYY-MM-DD)")
		end          = flag.String("end", "", "Last day of the trip (YYYY-MM-DD)")
		budget       = flag.String("budget", "", "Total budget in GBP")
		interests    = flag.String("interests", "", "Comma-separated interests, e.g. "+strings.Join(wayfare.SuggestedInterests, ","))
		providerFlag = flag.String("provider", "", "Provider: openai, anthropic, gemini (auto-detected from env vars if omitted)")
		model        = flag.String("model", "", "Model ID (provider-specific)")
		apiKey       = flag.String("api-key", "", "LLM API key (overrides provider's env var)")
		dotenv       = flag.String("env", ".env", "Path to a dotenv file")
		printOnly    = flag.Bool("print", false, "Print the itinerary and exit")
	)
	flag.Parse()

	cfg, err := loadConfig(*dotenv)
	if err != nil {
		return err
	}
	if *providerFlag == "" {
		*providerFlag = cfg.Provider
	}
	if *model == "" {
		*model = cfg.Model
	}

	// The TUI owns the terminal, so logs go to a file or nowhere while it runs.
	var logOut io.Writer = os.Stderr
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	case !*printOnly:
		logOut = io.Discard
	}
	logger, err := newLogger(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	provider, providerName, err := resolveProvider(ctx, *providerFlag, *apiKey, cfg.providerKeys())
	if err != nil {
		return err
	}
	svc, err := services(cfg, provider)
	if err != nil {
		return err
	}
	modelID := modelFor(providerName, *model)
	session, err := wayfare.NewSession(svc,
		wayfare.WithLogger(logger),
		wayfare.WithCallTimeout(cfg.CallTimeout),
		wayfare.WithGenerator(wayfare.NewGenerator(provider, wayfare.WithGeneratorModel(modelID))),
		wayfare.WithRefiner(wayfare.NewRefiner(provider, wayfare.WithRefinerModel(modelID))),
	)
	if err != nil {
		return err
	}
	logger.Info("session started", "session_id", session.ID(), "provider", providerName, "model", modelID)

	itinerary, err := session.Plan(ctx, wayfare.RawRequest{
		Destination: *destination,
		StartDate:   *start,
		EndDate:     *end,
		Budget:      *budget,
		Interests:   splitInterests(*interests),
	})
	if err != nil {
		return err
	}

	if *printOnly {
		session.Terminate()
		fmt.Println(itinerary)
		return nil
	}

	final, err := bt.Run(ctx, bt.New(session, wayfare.DefaultTheme()))
	if err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	session.Terminate()

	// Leave the final itinerary on the normal screen.
	fmt.Println(final.Itinerary())
	return nil
}

// services wires the Google Maps and OpenWeather adapters behind the
// in-memory caches.
func services(cfg config, provider wayfare.Provider) (wayfare.Services, error) {
	if cfg.GoogleMapsKey == "" {
		return wayfare.Services{}, errors.New("GOOGLEMAPS_API_KEY not set")
	}
	if cfg.OpenWeatherKey == "" {
		return wayfare.Services{}, errors.New("OPENWEATHER_API_KEY not set")
	}
	maps, err := googlemaps.New(cfg.GoogleMapsKey)
	if err != nil {
		return wayfare.Services{}, err
	}
	return wayfare.Services{
		Geocoder:    cache.NewGeocoder(maps, cfg.CacheTTL),
		Attractions: cache.NewAttractionFinder(maps, cfg.CacheTTL),
		Weather:     openweather.New(cfg.OpenWeatherKey),
		Provider:    provider,
	}, nil
}

func splitInterests(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
