package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// Options controls a single generation call
type Options struct {
	Tier        ModelTier
	Temperature float32
	MaxTokens   int32
}

// DefaultOptions returns conservative generation settings for structured output
func DefaultOptions(tier ModelTier) Options {
	return Options{Tier: tier, Temperature: 0.1}
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content with the given options
	GenerateContent(ctx context.Context, prompt string, opts Options) (string, error)
	// GenerateJSON generates JSON content with the given options
	GenerateJSON(ctx context.Context, prompt string, opts Options) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}

// GeminiClient implements Client for Google Gemini. Outbound calls share a
// token-bucket throttle so concurrent pipeline stages cannot exceed the
// provider quota, and every call gets a deadline.
type GeminiClient struct {
	client      *genai.Client
	config      *Config
	throttle    *rate.Limiter
	callTimeout time.Duration
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	rps := config.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 4
	}
	timeout := config.CallTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &GeminiClient{
		client:      client,
		config:      config,
		throttle:    rate.NewLimiter(rate.Limit(rps), burst),
		callTimeout: timeout,
	}, nil
}

// GenerateContent generates text content with the given options
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, opts Options) (string, error) {
	resp, err := c.generate(ctx, prompt, opts, "")
	if err != nil {
		return "", err
	}
	return extractTextFromResponse(resp)
}

// GenerateJSON generates JSON content with the given options
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, opts Options) (string, error) {
	resp, err := c.generate(ctx, prompt, opts, "application/json")
	if err != nil {
		return "", err
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	// Clean any markdown code block wrappers
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, opts Options, mimeType string) (*genai.GenerateContentResponse, error) {
	modelName := c.config.GetModel(opts.Tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", opts.Tier)
	}

	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for model quota: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(opts.Temperature)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxTokens)
	}
	if mimeType != "" {
		model.ResponseMIMEType = mimeType
	}

	resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return resp, nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
