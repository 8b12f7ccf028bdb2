package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fwojciec/wayfare/cache"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/viper"
)

// config is the environment-derived configuration. Flags override it in run.
type config struct {
	Provider string
	Model    string

	OpenAIKey      string
	AnthropicKey   string
	GeminiKey      string
	GoogleMapsKey  string
	OpenWeatherKey string

	CallTimeout time.Duration
	CacheTTL    time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

func (c config) providerKeys() providerKeys {
	return providerKeys{OpenAI: c.OpenAIKey, Anthropic: c.AnthropicKey, Gemini: c.GeminiKey}
}

// loadConfig loads dotenv if it exists, then reads the environment. Values
// already set in the environment win over the file.
func loadConfig(dotenv string) (config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return config{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("WAYFARE_CACHE_TTL", cache.DefaultTTL)
	v.SetDefault("WAYFARE_LOG_LEVEL", "info")
	v.SetDefault("WAYFARE_LOG_FORMAT", "text")

	cfg := config{
		Provider:       strings.ToLower(v.GetString("WAYFARE_PROVIDER")),
		Model:          v.GetString("WAYFARE_MODEL"),
		OpenAIKey:      v.GetString("OPENAI_API_KEY"),
		AnthropicKey:   v.GetString("ANTHROPIC_API_KEY"),
		GeminiKey:      v.GetString("GEMINI_API_KEY"),
		GoogleMapsKey:  v.GetString("GOOGLEMAPS_API_KEY"),
		OpenWeatherKey: v.GetString("OPENWEATHER_API_KEY"),
		CallTimeout:    v.GetDuration("WAYFARE_CALL_TIMEOUT"),
		CacheTTL:       v.GetDuration("WAYFARE_CACHE_TTL"),
		LogLevel:       v.GetString("WAYFARE_LOG_LEVEL"),
		LogFormat:      v.GetString("WAYFARE_LOG_FORMAT"),
		LogFile:        v.GetString("WAYFARE_LOG_FILE"),
	}
	if cfg.CallTimeout < 0 {
		return config{}, fmt.Errorf("WAYFARE_CALL_TIMEOUT must not be negative")
	}
	return cfg, nil
}

// newLogger builds the application logger: tint for humans, JSON for
// machines.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			NoColor:    w != os.Stderr,
		})), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	default:
		return nil, fmt.Errorf("unknown log format %q: must be \"text\" or \"json\"", format)
	}
}
