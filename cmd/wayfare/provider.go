package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/wayfare"
	"github.com/fwojciec/wayfare/anthropic"
	"github.com/fwojciec/wayfare/gemini"
	"github.com/fwojciec/wayfare/openai"
)

// providerKeys holds the LLM API keys found in the environment.
type providerKeys struct {
	OpenAI    string
	Anthropic string
	Gemini    string
}

func (k providerKeys) set() []string {
	var names []string
	if k.OpenAI != "" {
		names = append(names, "openai")
	}
	if k.Anthropic != "" {
		names = append(names, "anthropic")
	}
	if k.Gemini != "" {
		names = append(names, "gemini")
	}
	return names
}

// resolveProvider selects and constructs the provider and returns its name.
// All env var values are passed in as parameters: env is only read in main().
func resolveProvider(ctx context.Context, providerFlag, apiKeyFlag string, keys providerKeys) (wayfare.Provider, string, error) {
	provider := providerFlag

	// Auto-detect from env vars if no flag.
	if provider == "" {
		switch found := keys.set(); len(found) {
		case 0:
			return nil, "", fmt.Errorf("no API key found: set OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY (or use -provider and -api-key flags)")
		case 1:
			provider = found[0]
		default:
			return nil, "", fmt.Errorf("multiple API keys found (%v): use -provider flag to select", found)
		}
	}

	// Resolve API key: explicit flag overrides env var.
	key := apiKeyFlag
	switch provider {
	case "openai":
		if key == "" {
			key = keys.OpenAI
		}
		if key == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY not set (use -api-key flag or environment variable)")
		}
		return openai.New(key), provider, nil
	case "anthropic":
		if key == "" {
			key = keys.Anthropic
		}
		if key == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY not set (use -api-key flag or environment variable)")
		}
		return anthropic.New(key), provider, nil
	case "gemini":
		if key == "" {
			key = keys.Gemini
		}
		if key == "" {
			return nil, "", fmt.Errorf("GEMINI_API_KEY not set (use -api-key flag or environment variable)")
		}
		client, err := gemini.New(ctx, key)
		if err != nil {
			return nil, "", fmt.Errorf("gemini: %w", err)
		}
		return client, provider, nil
	default:
		return nil, "", fmt.Errorf("unknown provider %q: must be \"openai\", \"anthropic\" or \"gemini\"", provider)
	}
}

// modelFor returns the model ID to request. Only openai shares
// wayfare.DefaultModel; other providers fall back to their own default.
func modelFor(provider, model string) string {
	switch {
	case model != "":
		return model
	case provider == "openai":
		return wayfare.DefaultModel
	default:
		return ""
	}
}
