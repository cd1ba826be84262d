package service

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
	"tubequiz/internal/domain"
)

// --- MockQuizRepository ---
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetQuizIDByVideoURL(ctx context.Context, videoURL string) (string, error) {
	args := m.Called(ctx, videoURL)
	return args.String(0), args.Error(1)
}

func (m *MockQuizRepository) ListQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) DeleteQuiz(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// --- MockQuizGenerator ---
type MockQuizGenerator struct {
	mock.Mock
}

func (m *MockQuizGenerator) Run(ctx context.Context, sourceURL string) (*domain.QuizPayload, error) {
	args := m.Called(ctx, sourceURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizPayload), args.Error(1)
}

// --- fakeAcquirer ---
type fakeAcquirer struct {
	mu      sync.Mutex
	err     error
	workdir string
	calls   int
}

func (f *fakeAcquirer) Acquire(ctx context.Context, sourceURL, workdir string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.workdir = workdir
	if f.err != nil {
		return "", f.err
	}
	return workdir + "/audio.wav", nil
}

// --- fakeSpeechLoader ---
type fakeSpeechLoader struct {
	result    map[string]any
	loadErr   error
	runErr    error
	gotModel  string
	gotWAV    string
	loadCalls int
}

func (f *fakeSpeechLoader) LoadModel(ctx context.Context, name string) (domain.SpeechModel, error) {
	f.loadCalls++
	f.gotModel = name
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f, nil
}

func (f *fakeSpeechLoader) Transcribe(ctx context.Context, wavPath string) (map[string]any, error) {
	f.gotWAV = wavPath
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.result, nil
}

// --- fakeGenerativeFactory ---
// It records every interaction so tests can assert on the request shape.
type fakeGenerativeFactory struct {
	text              string
	configureErr      error
	generateErr       error
	rejectConfig      bool
	gotAPIKey         string
	gotModelName      string
	gotConfigs        []*domain.GenerationConfig
	gotParts          []string
	configureCalls    int
	generateCallCount int
}

func (f *fakeGenerativeFactory) Configure(ctx context.Context, apiKey string) (domain.GenerativeClient, error) {
	f.configureCalls++
	f.gotAPIKey = apiKey
	if f.configureErr != nil {
		return nil, f.configureErr
	}
	return f, nil
}

func (f *fakeGenerativeFactory) NewModel(name string, config *domain.GenerationConfig) (domain.TextModel, error) {
	f.gotModelName = name
	f.gotConfigs = append(f.gotConfigs, config)
	if config != nil && f.rejectConfig {
		return nil, domain.ErrGenerationConfigUnsupported
	}
	return f, nil
}

func (f *fakeGenerativeFactory) GenerateContent(ctx context.Context, parts []string) (*domain.GenerateResponse, error) {
	f.generateCallCount++
	f.gotParts = parts
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return &domain.GenerateResponse{Text: f.text}, nil
}

var errBoom = errors.New("boom")

func envWith(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}
