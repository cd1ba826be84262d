package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"tubequiz/internal/domain"
)

// HTTPLoader talks to an OpenAI-compatible /v1/audio/transcriptions endpoint
// (faster-whisper-server, speaches, whisper.cpp server).
type HTTPLoader struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPLoader creates a new HTTPLoader. url is the full transcription endpoint.
func NewHTTPLoader(url string, timeout time.Duration, logger *zap.Logger) *HTTPLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPLoader{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

var _ domain.SpeechModelLoader = (*HTTPLoader)(nil)

// LoadModel binds the model name to the endpoint. No request is made until Transcribe.
func (l *HTTPLoader) LoadModel(ctx context.Context, name string) (domain.SpeechModel, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("whisper model name cannot be empty")
	}
	if l.url == "" {
		return nil, fmt.Errorf("whisper server url is not configured")
	}
	return &httpModel{loader: l, name: name}, nil
}

type httpModel struct {
	loader *HTTPLoader
	name   string
}

// Transcribe uploads the WAV file as multipart/form-data and returns the decoded JSON body.
func (m *httpModel) Transcribe(ctx context.Context, wavPath string) (map[string]any, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	contentType, err := writeUploadForm(&buf, f, filepath.Base(wavPath), m.name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.loader.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := m.loader.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisper API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	m.loader.logger.Debug("Whisper server transcription done",
		zap.String("model", m.name),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// writeUploadForm writes the transcription request form to dst and returns its
// content type. The language is left to the server to detect.
func writeUploadForm(dst io.Writer, audio io.Reader, filename, model string) (string, error) {
	w := multipart.NewWriter(dst)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio data: %w", err)
	}
	fields := []struct{ name, value string }{
		{"model", model},
		{"response_format", "json"},
	}
	for _, field := range fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return "", fmt.Errorf("write form field %s: %w", field.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart form: %w", err)
	}
	return w.FormDataContentType(), nil
}
