package openai

import (
	"context"
	"fmt"

	"github.com/mealforge/mealforge/config"
	"github.com/mealforge/mealforge/contrib/provider"
	"github.com/mealforge/mealforge/genstream"
	"github.com/mealforge/mealforge/pkg/logging"
	"github.com/mealforge/mealforge/search"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/pkoukk/tiktoken-go"
)

// Config holds OpenAI provider configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
	// ContextTokens bounds the prompt size; a request whose rendered prompt
	// exceeds it is refused before any API call. 0 disables the check.
	ContextTokens int
}

// DefaultConfig returns default OpenAI configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:        apiKey,
		Model:         string(openai.ChatModelGPT4oMini),
		MaxTokens:     4096,
		Temperature:   0.7,
		ContextTokens: 100000,
	}
}

// Provider generates recipes by streaming OpenAI chat completions through
// the wire protocol bridge.
type Provider struct {
	config *Config
	client openai.Client
}

// New creates a new OpenAI provider using the official SDK
func New(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.ChatModelGPT4oMini)
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
		client: openai.NewClient(options...),
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
	if err := p.checkPromptBudget(system + user); err != nil {
		return err
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}
	if p.config.Temperature > 0 {
		params.Temperature = param.NewOpt(p.config.Temperature)
	}
	if p.config.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(p.config.MaxTokens)
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		if len(event.Choices) == 0 {
			continue
		}
		if delta := event.Choices[0].Delta.Content; delta != "" {
			if err := emit(delta); err != nil {
				return err
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("OpenAI streaming error: %w", err)
	}
	return nil
}

// checkPromptBudget counts prompt tokens and refuses oversized requests
// up front rather than letting the API truncate silently.
func (p *Provider) checkPromptBudget(prompt string) error {
	if p.config.ContextTokens <= 0 {
		return nil
	}
	enc, err := tiktoken.EncodingForModel(p.config.Model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		logging.WithComponent("provider").Warn("token counting unavailable", "error", err)
		return nil
	}
	n := len(enc.Encode(prompt, nil, nil))
	if n > p.config.ContextTokens {
		return fmt.Errorf("prompt is %d tokens, over the %d token budget", n, p.config.ContextTokens)
	}
	return nil
}
