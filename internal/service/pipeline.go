package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"tubequiz/internal/domain"
	"tubequiz/internal/metrics"
)

// Pipeline turns a video URL into a validated quiz:
// acquire audio, transcribe, synthesize, extract, repair, validate.
// Each run is a single attempt; the first failing stage ends it.
type Pipeline struct {
	acquirer     domain.AudioAcquirer
	transcriber  *Transcriber
	synthesizer  *QuizSynthesizer
	tempDir      string
	whisperModel string
	metrics      *metrics.Pipeline
	logger       *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithTempDir sets the parent directory for per-run working directories.
func WithTempDir(dir string) PipelineOption {
	return func(p *Pipeline) { p.tempDir = dir }
}

// WithWhisperModel selects the speech model by name for every run.
func WithWhisperModel(name string) PipelineOption {
	return func(p *Pipeline) { p.whisperModel = name }
}

// WithMetrics records stage timings and outcomes.
func WithMetrics(m *metrics.Pipeline) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline creates a new Pipeline
func NewPipeline(acquirer domain.AudioAcquirer, transcriber *Transcriber, synthesizer *QuizSynthesizer, logger *zap.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		acquirer:    acquirer,
		transcriber: transcriber,
		synthesizer: synthesizer,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ domain.QuizGenerator = (*Pipeline)(nil)

// Run executes the pipeline in a fresh temporary directory that is removed
// when Run returns, whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, sourceURL string) (*domain.QuizPayload, error) {
	workdir, err := os.MkdirTemp(p.tempDir, "tubequiz-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workdir); rmErr != nil {
			p.logger.Warn("Failed to remove temp dir", zap.String("dir", workdir), zap.Error(rmErr))
		}
	}()
	return p.RunInDir(ctx, sourceURL, workdir)
}

// RunInDir executes the pipeline using a caller-owned writable directory.
// Stage failures are *domain.PipelineError; anything else is returned unchanged.
func (p *Pipeline) RunInDir(ctx context.Context, sourceURL, workdir string) (payload *domain.QuizPayload, err error) {
	log := p.logger.With(zap.String("url", sourceURL))
	defer func() { p.recordOutcome(log, err) }()

	var wavPath string
	if err = p.stage(metrics.StageAcquire, func() (e error) {
		wavPath, e = p.acquirer.Acquire(ctx, sourceURL, workdir)
		return e
	}); err != nil {
		return nil, err
	}

	var transcript string
	if err = p.stage(metrics.StageTranscribe, func() (e error) {
		transcript, e = p.transcriber.Transcribe(ctx, wavPath, p.whisperModel)
		return e
	}); err != nil {
		return nil, err
	}

	var raw string
	if err = p.stage(metrics.StageSynthesize, func() (e error) {
		raw, e = p.synthesizer.Synthesize(ctx, transcript)
		return e
	}); err != nil {
		return nil, err
	}

	if err = p.stage(metrics.StageExtract, func() error {
		var strategy string
		var e error
		payload, strategy, e = extractJSON(raw)
		if e == nil {
			log.Debug("Extracted quiz JSON", zap.String("strategy", strategy))
		}
		return e
	}); err != nil {
		return nil, err
	}

	if err = p.stage(metrics.StageValidate, func() error {
		p.logRepairs(log, payload.Repair())
		return payload.Validate()
	}); err != nil {
		return nil, err
	}
	return payload, nil
}

func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.metrics.ObserveStage(name, time.Since(start))
	return err
}

func (p *Pipeline) logRepairs(log *zap.Logger, report domain.RepairReport) {
	for i, outcome := range report.Outcomes {
		switch outcome {
		case domain.RepairIndex:
			log.Info("Repaired answer by index mapping", zap.Int("question", i+1))
		case domain.RepairNormalized:
			log.Info("Repaired answer by normalized match", zap.Int("question", i+1))
		case domain.RepairUnrepaired:
			log.Warn("Could not repair answer mismatch", zap.Int("question", i+1))
		}
	}
	for _, s := range []domain.RepairStrategy{domain.RepairIndex, domain.RepairNormalized, domain.RepairUnrepaired} {
		p.metrics.RepairsApplied(string(s), report.Count(s))
	}
}

func (p *Pipeline) recordOutcome(log *zap.Logger, err error) {
	var perr *domain.PipelineError
	switch {
	case err == nil:
		p.metrics.RunFinished(metrics.OutcomeSuccess)
		log.Info("Quiz pipeline finished")
	case errors.As(err, &perr):
		p.metrics.RunFinished(metrics.OutcomePipelineError)
		log.Warn("Quiz pipeline failed", zap.String("code", string(perr.Code)), zap.String("reason", perr.Message))
	default:
		p.metrics.RunFinished(metrics.OutcomeError)
		log.Error("Quiz pipeline error", zap.Error(err))
	}
}
