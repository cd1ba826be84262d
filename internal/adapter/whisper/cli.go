package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"tubequiz/internal/domain"
	"tubequiz/internal/executor"
)

const (
	// DefaultBinary is the openai-whisper command line tool.
	DefaultBinary = "whisper"
	// DefaultModel is the model used when none is named.
	DefaultModel = "base"
)

// CLILoader loads local Whisper models through the whisper command line tool.
type CLILoader struct {
	binary   string
	runner   executor.Runner
	lookPath func(string) (string, error)
	logger   *zap.Logger
}

// CLIOption configures a CLILoader.
type CLIOption func(*CLILoader)

// WithBinary overrides the whisper executable name or path.
func WithBinary(bin string) CLIOption {
	return func(l *CLILoader) {
		if bin != "" {
			l.binary = bin
		}
	}
}

// WithLookPath replaces exec.LookPath, mainly for tests.
func WithLookPath(fn func(string) (string, error)) CLIOption {
	return func(l *CLILoader) {
		if fn != nil {
			l.lookPath = fn
		}
	}
}

// NewCLILoader creates a new CLILoader
func NewCLILoader(runner executor.Runner, logger *zap.Logger, opts ...CLIOption) *CLILoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &CLILoader{
		binary:   DefaultBinary,
		runner:   runner,
		lookPath: exec.LookPath,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ domain.SpeechModelLoader = (*CLILoader)(nil)

// LoadModel resolves the whisper binary and binds it to the named model.
// The model itself is fetched by whisper on first use.
func (l *CLILoader) LoadModel(ctx context.Context, name string) (domain.SpeechModel, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("whisper model name cannot be empty")
	}
	path, err := l.lookPath(l.binary)
	if err != nil {
		return nil, fmt.Errorf("whisper binary %q not available: %w", l.binary, err)
	}
	l.logger.Debug("Loaded whisper model", zap.String("binary", path), zap.String("model", name))
	return &cliModel{binary: path, name: name, runner: l.runner, logger: l.logger}, nil
}

type cliModel struct {
	binary string
	name   string
	runner executor.Runner
	logger *zap.Logger
}

// Transcribe runs whisper on wavPath and reads the JSON result it writes next to it.
func (m *cliModel) Transcribe(ctx context.Context, wavPath string) (map[string]any, error) {
	outDir := filepath.Dir(wavPath)
	res, err := m.runner.Run(ctx, m.binary,
		wavPath,
		"--model", m.name,
		"--output_format", "json",
		"--output_dir", outDir,
		"--fp16", "False",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run whisper: %w", err)
	}
	if !res.Success() {
		m.logger.Warn("Whisper exited with error",
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", executor.Tail(res.Stderr, 2048)))
		return nil, fmt.Errorf("whisper exited with code %d", res.ExitCode)
	}

	base := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode whisper output: %w", err)
	}
	return result, nil
}
