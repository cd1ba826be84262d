package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"tubequiz/internal/domain"
	"tubequiz/internal/executor"
)

const (
	// DownloadFileName is the intermediate best-audio file written by the downloader.
	DownloadFileName = "audio.m4a"
	// WAVFileName is the normalized waveform handed to transcription.
	WAVFileName = "audio.wav"

	DefaultDownloaderBinary = "yt-dlp"
	DefaultTranscoderBinary = "ffmpeg"

	stderrTailBytes = 2048
)

// Acquirer implements domain.AudioAcquirer with yt-dlp and ffmpeg.
type Acquirer struct {
	runner     executor.Runner
	downloader string
	transcoder string
	logger     *zap.Logger
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithDownloaderBinary overrides the yt-dlp executable name or path.
func WithDownloaderBinary(bin string) Option {
	return func(a *Acquirer) {
		if bin != "" {
			a.downloader = bin
		}
	}
}

// WithTranscoderBinary overrides the ffmpeg executable name or path.
func WithTranscoderBinary(bin string) Option {
	return func(a *Acquirer) {
		if bin != "" {
			a.transcoder = bin
		}
	}
}

// NewAcquirer creates a new Acquirer
func NewAcquirer(runner executor.Runner, logger *zap.Logger, opts ...Option) *Acquirer {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Acquirer{
		runner:     runner,
		downloader: DefaultDownloaderBinary,
		transcoder: DefaultTranscoderBinary,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var _ domain.AudioAcquirer = (*Acquirer)(nil)

// Acquire downloads the best audio stream of sourceURL into workdir and converts it
// to a mono 16 kHz WAV file. The transcoder only runs after a successful download.
// Files are left in workdir for the caller to clean up.
func (a *Acquirer) Acquire(ctx context.Context, sourceURL, workdir string) (string, error) {
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workdir %s: %w", workdir, err)
	}
	downloadPath := filepath.Join(workdir, DownloadFileName)
	wavPath := filepath.Join(workdir, WAVFileName)

	a.logger.Info("Downloading audio", zap.String("url", sourceURL), zap.String("workdir", workdir))
	res, err := a.runner.Run(ctx, a.downloader,
		"-f", "bestaudio",
		"-o", downloadPath,
		sourceURL,
	)
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", a.downloader, err)
	}
	if !res.Success() {
		a.logger.Warn("Audio download failed",
			zap.String("url", sourceURL),
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", executor.Tail(res.Stderr, stderrTailBytes)))
		return "", domain.ErrDownloadFailed
	}

	res, err = a.runner.Run(ctx, a.transcoder,
		"-y",
		"-i", downloadPath,
		"-ac", "1", // mono
		"-ar", "16000",
		wavPath,
	)
	if err != nil {
		return "", fmt.Errorf("failed to run %s: %w", a.transcoder, err)
	}
	if !res.Success() {
		a.logger.Warn("Audio conversion failed",
			zap.String("input", downloadPath),
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", executor.Tail(res.Stderr, stderrTailBytes)))
		return "", domain.ErrConvertFailed
	}

	a.logger.Debug("Audio ready", zap.String("path", wavPath))
	return wavPath, nil
}
