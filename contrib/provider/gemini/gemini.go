package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mealforge/mealforge/config"
	"github.com/mealforge/mealforge/contrib/provider"
	"github.com/mealforge/mealforge/genstream"
	"github.com/mealforge/mealforge/search"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Config holds Gemini provider configuration
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		Model:       "gemini-1.5-flash",
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// Provider generates recipes by streaming Gemini output through the wire
// protocol bridge.
type Provider struct {
	config *Config
	client *genai.Client
}

// New creates a new Gemini provider using the official SDK
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if err := config.ValidateProviderConfig(cfg.APIKey, cfg.Model, float64(cfg.Temperature), int(cfg.MaxTokens)); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Provider{
		config: cfg,
		client: client,
	}, nil
}

// Transport returns a genstream.Transport backed by this provider. The
// search client and reference URL are optional prompt enrichment.
func (p *Provider) Transport(searchClient *search.Client, referenceURL string) genstream.Transport {
	return &provider.Bridge{
		Run:          p.run,
		Search:       searchClient,
		ReferenceURL: referenceURL,
	}
}

func (p *Provider) run(ctx context.Context, system, user string, emit func(string) error) error {
	model := p.client.GenerativeModel(p.config.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(system)},
	}
	if p.config.Temperature > 0 {
		model.SetTemperature(p.config.Temperature)
	}
	if p.config.MaxTokens > 0 {
		model.SetMaxOutputTokens(p.config.MaxTokens)
	}

	iter := model.GenerateContentStream(ctx, genai.Text(user))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Gemini streaming error: %w", err)
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok && text != "" {
					if err := emit(string(text)); err != nil {
						return err
					}
				}
			}
		}
	}
}

// Close releases the underlying SDK client.
func (p *Provider) Close() error {
	return p.client.Close()
}
