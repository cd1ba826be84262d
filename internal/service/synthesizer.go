package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"tubequiz/internal/domain"
)

// QuizSystemPrompt is sent ahead of the transcript on every synthesis call.
const QuizSystemPrompt = "You are a quiz generator. Create exactly 10 multiple-choice questions (4 options each)\n" +
	"based ONLY on the provided transcript. Include a short title and description.\n" +
	"Return STRICT JSON with keys: title, description, questions. Each question must have\n" +
	"question_title, options (list of 4 strings), and answer (one of options). No extra text."

const (
	DefaultClientName         = "google-genai"
	DefaultAPIKeyEnv          = "GEMINI_API_KEY"
	DefaultQuizModel          = "gemini-1.5-flash"
	DefaultTemperature        = 0.3
	DefaultMaxTranscriptChars = 15000

	rawResponseLogChars = 600
)

// SynthesizerConfig controls how transcripts are sent to the generative model.
type SynthesizerConfig struct {
	ClientName string
	// APIKeyEnv names the environment variable holding the credential.
	// Empty skips the credential check.
	APIKeyEnv          string
	Model              string
	Temperature        float32
	MaxTranscriptChars int
}

// DefaultSynthesizerConfig returns the Gemini defaults.
func DefaultSynthesizerConfig() SynthesizerConfig {
	return SynthesizerConfig{
		ClientName:         DefaultClientName,
		APIKeyEnv:          DefaultAPIKeyEnv,
		Model:              DefaultQuizModel,
		Temperature:        DefaultTemperature,
		MaxTranscriptChars: DefaultMaxTranscriptChars,
	}
}

// QuizSynthesizer asks a generative text model to write the quiz.
type QuizSynthesizer struct {
	factory   domain.GenerativeClientFactory
	cfg       SynthesizerConfig
	lookupEnv func(string) (string, bool)
	logger    *zap.Logger
}

// SynthesizerOption configures a QuizSynthesizer.
type SynthesizerOption func(*QuizSynthesizer)

// WithEnvLookup replaces os.LookupEnv as the credential source.
func WithEnvLookup(fn func(string) (string, bool)) SynthesizerOption {
	return func(s *QuizSynthesizer) {
		if fn != nil {
			s.lookupEnv = fn
		}
	}
}

// NewQuizSynthesizer creates a new QuizSynthesizer. factory may be nil when no
// generative client is available; Synthesize then fails with a pipeline error.
func NewQuizSynthesizer(factory domain.GenerativeClientFactory, cfg SynthesizerConfig, logger *zap.Logger, opts ...SynthesizerOption) *QuizSynthesizer {
	if cfg.ClientName == "" {
		cfg.ClientName = DefaultClientName
	}
	if cfg.Model == "" {
		cfg.Model = DefaultQuizModel
	}
	if cfg.MaxTranscriptChars <= 0 {
		cfg.MaxTranscriptChars = DefaultMaxTranscriptChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &QuizSynthesizer{
		factory:   factory,
		cfg:       cfg,
		lookupEnv: os.LookupEnv,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns the raw model text for transcript. The text may be strict
// JSON or JSON wrapped in prose; extraction happens later.
func (s *QuizSynthesizer) Synthesize(ctx context.Context, transcript string) (string, error) {
	if s.factory == nil {
		return "", domain.NewClientUnavailableError(s.cfg.ClientName)
	}
	var apiKey string
	if s.cfg.APIKeyEnv != "" {
		apiKey, _ = s.lookupEnv(s.cfg.APIKeyEnv)
		if apiKey == "" {
			return "", domain.NewCredentialMissingError(s.cfg.APIKeyEnv)
		}
	}

	client, err := s.factory.Configure(ctx, apiKey)
	if err != nil {
		return "", fmt.Errorf("failed to configure %s client: %w", s.cfg.ClientName, err)
	}

	model, err := client.NewModel(s.cfg.Model, &domain.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      s.cfg.Temperature,
	})
	if errors.Is(err, domain.ErrGenerationConfigUnsupported) {
		s.logger.Debug("Generation config not supported, using model defaults", zap.String("model", s.cfg.Model))
		model, err = client.NewModel(s.cfg.Model, nil)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create model %s: %w", s.cfg.Model, err)
	}

	resp, err := model.GenerateContent(ctx, []string{QuizSystemPrompt, truncateRunes(transcript, s.cfg.MaxTranscriptChars)})
	if err != nil {
		return "", err
	}

	var text string
	if resp != nil {
		text = resp.Text
	}
	s.logger.Info("Model raw response", zap.String("model", s.cfg.Model), zap.String("head", truncateRunes(text, rawResponseLogChars)))
	return text, nil
}

// truncateRunes cuts s to its first n characters.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
