package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tubequiz"

// Pipeline stage labels.
const (
	StageAcquire    = "acquire"
	StageTranscribe = "transcribe"
	StageSynthesize = "synthesize"
	StageExtract    = "extract"
	StageValidate   = "validate"
)

// Run outcome labels.
const (
	OutcomeSuccess       = "success"
	OutcomePipelineError = "pipeline_error"
	OutcomeError         = "error"
)

// Pipeline holds the quiz pipeline collectors. A nil *Pipeline records nothing.
type Pipeline struct {
	stageDuration *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	repairs       *prometheus.CounterVec
}

// NewPipeline creates the pipeline collectors and registers them with reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of each quiz pipeline stage.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total quiz pipeline invocations by outcome.",
		}, []string{"outcome"}),
		repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_repairs_total",
			Help:      "Answer repair results by strategy.",
		}, []string{"strategy"}),
	}
	reg.MustRegister(p.stageDuration, p.runs, p.repairs)
	return p
}

// ObserveStage records how long a stage took.
func (p *Pipeline) ObserveStage(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RunFinished counts a finished invocation.
func (p *Pipeline) RunFinished(outcome string) {
	if p == nil {
		return
	}
	p.runs.WithLabelValues(outcome).Inc()
}

// RepairsApplied adds n repairs of the given strategy.
func (p *Pipeline) RepairsApplied(strategy string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.repairs.WithLabelValues(strategy).Add(float64(n))
}

// RunsCounter exposes the run counter for one outcome, for scraping in tests.
func (p *Pipeline) RunsCounter(outcome string) prometheus.Counter {
	return p.runs.WithLabelValues(outcome)
}
