// Package app assembles the quiz pipeline from configuration.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"tubequiz/internal/adapter/media"
	"tubequiz/internal/adapter/quizgen"
	"tubequiz/internal/adapter/whisper"
	"tubequiz/internal/config"
	"tubequiz/internal/domain"
	"tubequiz/internal/executor"
	"tubequiz/internal/metrics"
	"tubequiz/internal/service"
)

// OllamaClientName is reported for the self-hosted provider.
const OllamaClientName = "ollama"

// NewSpeechLoader picks the Whisper backend named in cfg.
func NewSpeechLoader(cfg config.WhisperConfig, runner executor.Runner, logger *zap.Logger) (domain.SpeechModelLoader, error) {
	switch cfg.Backend {
	case config.WhisperBackendCLI:
		return whisper.NewCLILoader(runner, logger, whisper.WithBinary(cfg.Binary)), nil
	case config.WhisperBackendHTTP:
		return whisper.NewHTTPLoader(cfg.ServerURL, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown whisper backend %q", cfg.Backend)
	}
}

// NewSynthesizer picks the generative provider named in cfg. Ollama needs no
// credential, so its API key check is disabled.
func NewSynthesizer(cfg config.LLMConfig, logger *zap.Logger) (*service.QuizSynthesizer, error) {
	synthCfg := service.SynthesizerConfig{
		ClientName:         cfg.ClientName,
		APIKeyEnv:          cfg.APIKeyEnv,
		Model:              cfg.Model,
		Temperature:        cfg.Temperature,
		MaxTranscriptChars: cfg.MaxTranscriptChars,
	}

	var factory domain.GenerativeClientFactory
	switch cfg.Provider {
	case config.ProviderGemini:
		factory = quizgen.NewGeminiClientFactory(cfg.ServerURL, logger)
	case config.ProviderOllama:
		factory = quizgen.NewOllamaClientFactory(cfg.ServerURL, cfg.Timeout, logger)
		synthCfg.ClientName = OllamaClientName
		synthCfg.APIKeyEnv = ""
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	return service.NewQuizSynthesizer(factory, synthCfg, logger), nil
}

// NewPipeline wires acquisition, transcription and synthesis into a pipeline.
// reg may be nil to disable metrics.
func NewPipeline(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*service.Pipeline, error) {
	runner := executor.New()

	loader, err := NewSpeechLoader(cfg.Whisper, runner, logger)
	if err != nil {
		return nil, err
	}
	synthesizer, err := NewSynthesizer(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	acquirer := media.NewAcquirer(runner, logger,
		media.WithDownloaderBinary(cfg.Media.DownloaderBinary),
		media.WithTranscoderBinary(cfg.Media.TranscoderBinary),
	)

	opts := []service.PipelineOption{
		service.WithTempDir(cfg.Media.TempDir),
		service.WithWhisperModel(cfg.Whisper.Model),
	}
	if reg != nil {
		opts = append(opts, service.WithMetrics(metrics.NewPipeline(reg)))
	}

	return service.NewPipeline(
		acquirer,
		service.NewTranscriber(loader, cfg.Whisper.Model, logger),
		synthesizer,
		logger,
		opts...,
	), nil
}
