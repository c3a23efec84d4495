package claude

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/mealforge/mealforge/config"
	"github.com/mealforge/mealforge/contrib/provider"
	"github.com/mealforge/mealforge/genstream"
	"github.com/mealforge/mealforge/search"
)

// Config holds Claude provider configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// DefaultConfig returns default Claude configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		Model:       "claude-sonnet-4-5-20250929",
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// Provider generates recipes by streaming Claude output through the wire
// protocol bridge.
type Provider struct {
	config *Config
	client anthropic.Client
}

// New creates a new Claude provider using the official SDK
func New(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5-20250929"
	}
	if err := config.ValidateProviderConfig(cfg.APIKey, cfg.Model, cfg.Temperature, int(cfg.MaxTokens)); err != nil {
		return nil, err
	}

	options := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{
		config: cfg,
		client: anthropic.NewClient(options...),
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
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.config.Model),
		MaxTokens: p.config.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}
	if p.config.Temperature > 0 {
		params.Temperature = param.NewOpt(p.config.Temperature)
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "content_block_delta":
			contentDelta := event.AsContentBlockDelta()
			if contentDelta.Delta.Type == "text_delta" && contentDelta.Delta.Text != "" {
				if err := emit(contentDelta.Delta.Text); err != nil {
					return err
				}
			}
		case "message_stop":
			// End of stream
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("Claude streaming error: %w", err)
	}
	return nil
}
