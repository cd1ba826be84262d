package quizgen

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
	"tubequiz/internal/domain"
)

// GeminiClientName is reported when the Gemini client is not wired in.
const GeminiClientName = "google-genai"

// GeminiClientFactory builds Gemini API clients from an explicit API key.
type GeminiClientFactory struct {
	baseURL string
	logger  *zap.Logger
}

// NewGeminiClientFactory creates a new GeminiClientFactory.
// baseURL may be empty to use the public Gemini endpoint.
func NewGeminiClientFactory(baseURL string, logger *zap.Logger) *GeminiClientFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiClientFactory{baseURL: baseURL, logger: logger}
}

var _ domain.GenerativeClientFactory = (*GeminiClientFactory)(nil)

// Configure creates a Gemini client for apiKey.
func (f *GeminiClientFactory) Configure(ctx context.Context, apiKey string) (domain.GenerativeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key cannot be empty")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if f.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: f.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiClient{client: client, logger: f.logger}, nil
}

type geminiClient struct {
	client *genai.Client
	logger *zap.Logger
}

func (c *geminiClient) NewModel(name string, config *domain.GenerationConfig) (domain.TextModel, error) {
	if name == "" {
		return nil, fmt.Errorf("Gemini model name cannot be empty")
	}
	m := &geminiModel{client: c.client, name: name}
	if config != nil {
		temperature := config.Temperature
		m.config = &genai.GenerateContentConfig{
			ResponseMIMEType: config.ResponseMIMEType,
			Temperature:      &temperature,
		}
	}
	c.logger.Info("Initializing Gemini model", zap.String("model", name), zap.Bool("generation_config", config != nil))
	return m, nil
}

type geminiModel struct {
	client *genai.Client
	name   string
	config *genai.GenerateContentConfig
}

// GenerateContent sends parts as a single user turn and concatenates the text
// parts of the first candidate.
func (m *geminiModel) GenerateContent(ctx context.Context, parts []string) (*domain.GenerateResponse, error) {
	content := &genai.Content{Role: "user"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}

	result, err := m.client.Models.GenerateContent(ctx, m.name, []*genai.Content{content}, m.config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	var text strings.Builder
	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		for _, part := range result.Candidates[0].Content.Parts {
			if part != nil && part.Text != "" {
				text.WriteString(part.Text)
			}
		}
	}
	return &domain.GenerateResponse{Text: text.String()}, nil
}
