package quizgen

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
	"tubequiz/internal/domain"
)

// OllamaClientFactory serves quiz synthesis from a self-hosted Ollama server.
// Ollama needs no credential, so the API key passed to Configure is ignored.
type OllamaClientFactory struct {
	serverURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewOllamaClientFactory creates a new OllamaClientFactory
func NewOllamaClientFactory(serverURL string, timeout time.Duration, logger *zap.Logger) *OllamaClientFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaClientFactory{
		serverURL:  serverURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

var _ domain.GenerativeClientFactory = (*OllamaClientFactory)(nil)

func (f *OllamaClientFactory) Configure(ctx context.Context, apiKey string) (domain.GenerativeClient, error) {
	if f.serverURL == "" {
		return nil, fmt.Errorf("ollama server url cannot be empty")
	}
	return &ollamaClient{factory: f}, nil
}

type ollamaClient struct {
	factory *OllamaClientFactory
}

// NewModel builds an Ollama-backed model. Only JSON output can be requested;
// any other response MIME type yields domain.ErrGenerationConfigUnsupported.
func (c *ollamaClient) NewModel(name string, config *domain.GenerationConfig) (domain.TextModel, error) {
	opts := []ollama.Option{
		ollama.WithServerURL(c.factory.serverURL),
		ollama.WithModel(name),
		ollama.WithHTTPClient(c.factory.httpClient),
	}
	var callOpts []llms.CallOption
	if config != nil {
		switch config.ResponseMIMEType {
		case "", "text/plain":
		case "application/json":
			opts = append(opts, ollama.WithFormat("json"))
		default:
			return nil, domain.ErrGenerationConfigUnsupported
		}
		callOpts = append(callOpts, llms.WithTemperature(float64(config.Temperature)))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	c.factory.logger.Info("Initializing Ollama model", zap.String("model", name), zap.String("server", c.factory.serverURL))
	return &ollamaModel{llm: llm, callOpts: callOpts}, nil
}

type ollamaModel struct {
	llm      llms.Model
	callOpts []llms.CallOption
}

func (m *ollamaModel) GenerateContent(ctx context.Context, parts []string) (*domain.GenerateResponse, error) {
	msgs := []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, parts...)}
	resp, err := m.llm.GenerateContent(ctx, msgs, m.callOpts...)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return &domain.GenerateResponse{}, nil
	}
	return &domain.GenerateResponse{Text: resp.Choices[0].Content}, nil
}
