package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tubequiz/internal/adapter/media"
	"tubequiz/internal/domain"
	"tubequiz/internal/executor"
	"tubequiz/internal/metrics"
)

// scriptedRunner answers downloader/transcoder invocations by binary name.
type scriptedRunner struct {
	exitCodes map[string]int
	invoked   []string
}

func (r *scriptedRunner) Run(ctx context.Context, name string, args ...string) (executor.Result, error) {
	r.invoked = append(r.invoked, name)
	return executor.Result{ExitCode: r.exitCodes[name]}, nil
}

type pipelineFixture struct {
	runner  *scriptedRunner
	speech  *fakeSpeechLoader
	gen     *fakeGenerativeFactory
	metrics *metrics.Pipeline
	tmp     string
	p       *Pipeline
}

func newPipelineFixture(t *testing.T, modelText string) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		runner:  &scriptedRunner{exitCodes: map[string]int{}},
		speech:  &fakeSpeechLoader{result: map[string]any{"text": "short transcript about climate change"}},
		gen:     &fakeGenerativeFactory{text: modelText},
		metrics: metrics.NewPipeline(prometheus.NewRegistry()),
		tmp:     t.TempDir(),
	}
	f.p = NewPipeline(
		media.NewAcquirer(f.runner, nil),
		NewTranscriber(f.speech, "", nil),
		NewQuizSynthesizer(f.gen, DefaultSynthesizerConfig(), nil,
			WithEnvLookup(envWith(map[string]string{"GEMINI_API_KEY": "k"}))),
		nil,
		WithTempDir(f.tmp),
		WithMetrics(f.metrics),
	)
	return f
}

func (f *pipelineFixture) assertTempDirClean(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "per-run working directory should be removed")
}

func TestPipeline_Run_Success(t *testing.T) {
	want := validPayload()
	f := newPipelineFixture(t, payloadJSON(t, want))

	got, err := f.p.Run(context.Background(), "https://www.youtube.com/watch?v=abc")
	require.NoError(t, err)

	assert.JSONEq(t, payloadJSON(t, want), payloadJSON(t, got))
	assert.Equal(t, []string{"yt-dlp", "ffmpeg"}, f.runner.invoked)
	assert.Equal(t, "short transcript about climate change", f.gen.gotParts[1])
	f.assertTempDirClean(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metricsRuns(metrics.OutcomeSuccess)))
}

func TestPipeline_Run_DownloadFailure(t *testing.T) {
	f := newPipelineFixture(t, "")
	f.runner.exitCodes["yt-dlp"] = 1

	_, err := f.p.Run(context.Background(), "https://youtu.be/abc")
	assert.EqualError(t, err, "Failed to download audio with yt-dlp.")
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	assert.Equal(t, []string{"yt-dlp"}, f.runner.invoked, "transcoder must not run")
	assert.Zero(t, f.speech.loadCalls)
	assert.Zero(t, f.gen.configureCalls)
	f.assertTempDirClean(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metricsRuns(metrics.OutcomePipelineError)))
}

func TestPipeline_Run_NotJSON(t *testing.T) {
	f := newPipelineFixture(t, "not-json-response")

	_, err := f.p.Run(context.Background(), "https://youtu.be/abc")
	assert.ErrorIs(t, err, domain.ErrNoJSON)
	assert.EqualError(t, err, "Gemini returned unexpected format (no JSON).")
	f.assertTempDirClean(t)
}

func TestPipeline_Run_ThreeOptions(t *testing.T) {
	p := validPayload()
	p.Questions[3].Options = []string{"Warming", "Cooling", "No change"}
	f := newPipelineFixture(t, payloadJSON(t, p))

	_, err := f.p.Run(context.Background(), "https://youtu.be/abc")
	assert.EqualError(t, err, "Each question must have 4 options.")
	assert.ErrorIs(t, err, domain.ErrOptionCount)
}

func TestPipeline_Run_OptionsAsSingleString(t *testing.T) {
	body := payloadJSON(t, validPayload())
	raw := strings.Replace(body, `"options":["Warming","Cooling","No change","Unknown"]`, `"options":"Warming, Cooling, No change, Unknown"`, 1)
	require.NotEqual(t, body, raw)
	f := newPipelineFixture(t, raw)

	_, err := f.p.Run(context.Background(), "https://youtu.be/abc")
	assert.EqualError(t, err, "Each question must have 4 options.")
	assert.ErrorIs(t, err, domain.ErrOptionCount)
}

func TestPipeline_Run_QuestionsAsObject(t *testing.T) {
	f := newPipelineFixture(t, `{"title":"t","description":"d","questions":{"q1":1}}`)

	_, err := f.p.Run(context.Background(), "https://youtu.be/abc")
	assert.EqualError(t, err, "Model did not produce exactly 10 questions.")
	assert.ErrorIs(t, err, domain.ErrQuestionCount)
}

func TestPipeline_Run_RepairsBeforeValidating(t *testing.T) {
	p := validPayload()
	p.Questions[0].Answer = "A"
	p.Questions[1].Answer = "option b"
	p.Questions[2].Answer = "no change."
	raw := "Sure! ```json\n" + payloadJSON(t, p) + "\n```"
	f := newPipelineFixture(t, raw)

	got, err := f.p.Run(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, "Warming", got.Questions[0].Answer)
	assert.Equal(t, "Cooling", got.Questions[1].Answer)
	assert.Equal(t, "No change", got.Questions[2].Answer)
}

func TestPipeline_Run_UnrepairableAnswer(t *testing.T) {
	p := validPayload()
	p.Questions[9].Answer = "Something else"
	f := newPipelineFixture(t, payloadJSON(t, p))

	_, err := f.p.Run(context.Background(), "https://youtu.be/abc")
	assert.ErrorIs(t, err, domain.ErrAnswerNotInOptions)
}

func TestPipeline_Run_WrongQuestionCount(t *testing.T) {
	p := validPayload()
	p.Questions = p.Questions[:7]
	f := newPipelineFixture(t, payloadJSON(t, p))

	_, err := f.p.Run(context.Background(), "https://youtu.be/abc")
	assert.ErrorIs(t, err, domain.ErrQuestionCount)
}

func TestPipeline_Run_UnexpectedErrorPropagates(t *testing.T) {
	f := newPipelineFixture(t, "")
	f.gen.generateErr = errBoom

	_, err := f.p.Run(context.Background(), "https://youtu.be/abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	var perr *domain.PipelineError
	assert.False(t, errors.As(err, &perr))
	f.assertTempDirClean(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metricsRuns(metrics.OutcomeError)))
}

func TestPipeline_RunInDir_KeepsCallerDirectory(t *testing.T) {
	f := newPipelineFixture(t, payloadJSON(t, validPayload()))
	dir := t.TempDir()

	payload, err := f.p.RunInDir(context.Background(), "https://youtu.be/abc", dir)
	require.NoError(t, err)
	assert.Len(t, payload.Questions, domain.QuestionsPerQuiz)
	assert.DirExists(t, dir)
	assert.Equal(t, dir+"/audio.wav", f.speech.gotWAV)
}

func TestPipeline_ConcurrentRunsAreIndependent(t *testing.T) {
	body := payloadJSON(t, validPayload())
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			f := newPipelineFixture(t, body)
			_, err := f.p.Run(context.Background(), "https://youtu.be/abc")
			errs <- err
		}()
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, <-errs)
	}
}

func (f *pipelineFixture) metricsRuns(outcome string) prometheus.Collector {
	return f.metrics.RunsCounter(outcome)
}
