package domain

import (
	"context"
	"errors"
)

// ErrGenerationConfigUnsupported is returned by GenerativeClient.NewModel when the
// backing client cannot honour a generation config. Callers retry without one.
var ErrGenerationConfigUnsupported = errors.New("generation config not supported by client")

// GenerationConfig holds optional output-shaping hints for a text model.
type GenerationConfig struct {
	ResponseMIMEType string
	Temperature      float32
}

// GenerateResponse is the raw result of a generation call.
type GenerateResponse struct {
	Text string
}

// TextModel generates text from an ordered list of prompt parts.
type TextModel interface {
	GenerateContent(ctx context.Context, parts []string) (*GenerateResponse, error)
}

// GenerativeClient constructs text models by name.
// A nil config requests the model's defaults.
type GenerativeClient interface {
	NewModel(name string, config *GenerationConfig) (TextModel, error)
}

// GenerativeClientFactory configures a client with an explicit credential.
type GenerativeClientFactory interface {
	Configure(ctx context.Context, apiKey string) (GenerativeClient, error)
}
