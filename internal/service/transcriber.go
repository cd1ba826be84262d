package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"tubequiz/internal/domain"
)

// DefaultWhisperModel is the speech model used when none is named.
const DefaultWhisperModel = "base"

// Transcriber turns a WAV file into transcript text with a local speech model.
type Transcriber struct {
	loader       domain.SpeechModelLoader
	defaultModel string
	logger       *zap.Logger
}

// NewTranscriber creates a new Transcriber. An empty defaultModel means "base".
func NewTranscriber(loader domain.SpeechModelLoader, defaultModel string, logger *zap.Logger) *Transcriber {
	if defaultModel == "" {
		defaultModel = DefaultWhisperModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcriber{loader: loader, defaultModel: defaultModel, logger: logger}
}

// Transcribe loads modelName (or the default) and returns the trimmed transcript.
// Loader and inference errors are returned as they are; only an empty result
// becomes a pipeline error.
func (t *Transcriber) Transcribe(ctx context.Context, wavPath, modelName string) (string, error) {
	if modelName == "" {
		modelName = t.defaultModel
	}

	model, err := t.loader.LoadModel(ctx, modelName)
	if err != nil {
		return "", err
	}
	result, err := model.Transcribe(ctx, wavPath)
	if err != nil {
		return "", err
	}

	text, _ := result["text"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.ErrEmptyTranscript
	}

	t.logger.Info("Transcription complete",
		zap.String("model", modelName),
		zap.Int("chars", len([]rune(text))))
	return text, nil
}
