package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"tubequiz/internal/domain"
)

const testVideoURL = "https://www.youtube.com/watch?v=abc123"

func TestValidateVideoURL(t *testing.T) {
	tests := []struct {
		url     string
		wantMsg string
	}{
		{"https://www.youtube.com/watch?v=abc", ""},
		{"https://youtu.be/abc", ""},
		{"", "URL must not be empty."},
		{"   ", "URL must not be empty."},
		{"https://vimeo.com/123", "Only YouTube URLs are allowed for now."},
		{"https://www.youtube.com/channel/xyz", "Only YouTube URLs are allowed for now."},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateVideoURL(tt.url)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var derr *domain.DomainError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domain.CodeInvalidVideoURL, derr.Code)
			assert.Equal(t, tt.wantMsg, derr.Message)
		})
	}
}

func TestQuizService_CreateQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("generates and stores a new quiz", func(t *testing.T) {
		repo := new(MockQuizRepository)
		gen := new(MockQuizGenerator)
		payload := validPayload()
		payload.Title = ""

		repo.On("GetQuizIDByVideoURL", ctx, testVideoURL).Return("", nil)
		gen.On("Run", mock.Anything, testVideoURL).Return(payload, nil)
		repo.On("SaveQuiz", mock.Anything, mock.MatchedBy(func(q *domain.Quiz) bool {
			return q.VideoURL == testVideoURL && q.ID != ""
		})).Return(nil)

		svc := NewQuizService(repo, gen, nil)
		quiz, created, err := svc.CreateQuiz(ctx, "  "+testVideoURL+" ")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, domain.DefaultQuizTitle, quiz.Title)
		assert.Len(t, quiz.Questions, domain.QuestionsPerQuiz)
		repo.AssertExpectations(t)
		gen.AssertExpectations(t)
	})

	t.Run("returns existing quiz without regenerating", func(t *testing.T) {
		repo := new(MockQuizRepository)
		gen := new(MockQuizGenerator)
		existing := &domain.Quiz{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", VideoURL: testVideoURL, Title: "Old"}

		repo.On("GetQuizIDByVideoURL", ctx, testVideoURL).Return(existing.ID, nil)
		repo.On("GetQuizByID", ctx, existing.ID).Return(existing, nil)

		svc := NewQuizService(repo, gen, nil)
		quiz, created, err := svc.CreateQuiz(ctx, testVideoURL)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Same(t, existing, quiz)
		gen.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("invalid url never reaches the pipeline", func(t *testing.T) {
		repo := new(MockQuizRepository)
		gen := new(MockQuizGenerator)
		svc := NewQuizService(repo, gen, nil)

		_, _, err := svc.CreateQuiz(ctx, "https://example.com/video")
		var derr *domain.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domain.CodeInvalidVideoURL, derr.Code)
		repo.AssertNotCalled(t, "GetQuizIDByVideoURL", mock.Anything, mock.Anything)
		gen.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})

	t.Run("pipeline error returned unchanged and nothing stored", func(t *testing.T) {
		repo := new(MockQuizRepository)
		gen := new(MockQuizGenerator)
		repo.On("GetQuizIDByVideoURL", ctx, testVideoURL).Return("", nil)
		gen.On("Run", mock.Anything, testVideoURL).Return(nil, domain.ErrDownloadFailed)

		svc := NewQuizService(repo, gen, nil)
		_, _, err := svc.CreateQuiz(ctx, testVideoURL)
		assert.Same(t, domain.ErrDownloadFailed, err)
		repo.AssertNotCalled(t, "SaveQuiz", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is internal", func(t *testing.T) {
		repo := new(MockQuizRepository)
		repo.On("GetQuizIDByVideoURL", ctx, testVideoURL).Return("", errBoom)

		svc := NewQuizService(repo, new(MockQuizGenerator), nil)
		_, _, err := svc.CreateQuiz(ctx, testVideoURL)
		var derr *domain.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domain.CodeInternal, derr.Code)
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("quiz stored by a finished run is reused", func(t *testing.T) {
		repo := new(MockQuizRepository)
		gen := new(MockQuizGenerator)
		stored := &domain.Quiz{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", VideoURL: testVideoURL, Title: "Stored"}

		// The first lookup misses; by the time the run starts another caller has saved one.
		repo.On("GetQuizIDByVideoURL", ctx, testVideoURL).Return("", nil).Once()
		repo.On("GetQuizIDByVideoURL", ctx, testVideoURL).Return(stored.ID, nil).Once()
		repo.On("GetQuizByID", ctx, stored.ID).Return(stored, nil)

		svc := NewQuizService(repo, gen, nil)
		quiz, created, err := svc.CreateQuiz(ctx, testVideoURL)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Same(t, stored, quiz)
		gen.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "SaveQuiz", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("save failure is internal", func(t *testing.T) {
		repo := new(MockQuizRepository)
		gen := new(MockQuizGenerator)
		repo.On("GetQuizIDByVideoURL", ctx, testVideoURL).Return("", nil)
		gen.On("Run", mock.Anything, testVideoURL).Return(validPayload(), nil)
		repo.On("SaveQuiz", mock.Anything, mock.Anything).Return(errBoom)

		svc := NewQuizService(repo, gen, nil)
		_, _, err := svc.CreateQuiz(ctx, testVideoURL)
		assert.ErrorIs(t, err, errBoom)
	})
}

// slowGenerator blocks until released so concurrent callers overlap.
type slowGenerator struct {
	calls   atomic.Int32
	release chan struct{}
}

func (g *slowGenerator) Run(ctx context.Context, sourceURL string) (*domain.QuizPayload, error) {
	g.calls.Add(1)
	<-g.release
	return validPayload(), nil
}

func TestQuizService_CreateQuiz_CollapsesConcurrentRuns(t *testing.T) {
	repo := new(MockQuizRepository)
	repo.On("GetQuizIDByVideoURL", mock.Anything, testVideoURL).Return("", nil)
	repo.On("SaveQuiz", mock.Anything, mock.Anything).Return(nil).Once()

	gen := &slowGenerator{release: make(chan struct{})}
	svc := NewQuizService(repo, gen, nil)

	const callers = 5
	var wg sync.WaitGroup
	ids := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			quiz, _, err := svc.CreateQuiz(context.Background(), testVideoURL)
			if assert.NoError(t, err) {
				ids[i] = quiz.ID
			}
		}(i)
	}

	// Let every caller join the in-flight run before it completes.
	time.Sleep(100 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	repo.AssertExpectations(t)
}

func TestQuizService_GetQuiz(t *testing.T) {
	ctx := context.Background()
	repo := new(MockQuizRepository)
	quiz := &domain.Quiz{ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV"}
	repo.On("GetQuizByID", ctx, quiz.ID).Return(quiz, nil)
	repo.On("GetQuizByID", ctx, "missing").Return(nil, nil)
	repo.On("GetQuizByID", ctx, "broken").Return(nil, errors.New("redis down"))

	svc := NewQuizService(repo, new(MockQuizGenerator), nil)

	got, err := svc.GetQuiz(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Same(t, quiz, got)

	_, err = svc.GetQuiz(ctx, "missing")
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeQuizNotFound, derr.Code)

	_, err = svc.GetQuiz(ctx, "broken")
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeInternal, derr.Code)
}

func TestQuizService_ListQuizzes(t *testing.T) {
	ctx := context.Background()
	quizzes := []*domain.Quiz{{ID: "02"}, {ID: "01"}}

	repo := new(MockQuizRepository)
	repo.On("ListQuizzes", ctx).Return(quizzes, nil).Once()
	repo.On("ListQuizzes", ctx).Return(nil, errBoom).Once()
	svc := NewQuizService(repo, new(MockQuizGenerator), nil)

	got, err := svc.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Equal(t, quizzes, got)

	_, err = svc.ListQuizzes(ctx)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeInternal, derr.Code)
}

func TestQuizService_UpdateQuiz(t *testing.T) {
	ctx := context.Background()
	id := "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	title := "New title"

	t.Run("applies and stores", func(t *testing.T) {
		repo := new(MockQuizRepository)
		repo.On("GetQuizByID", ctx, id).Return(&domain.Quiz{ID: id, Title: "Old", Description: "Keep"}, nil)
		repo.On("UpdateQuiz", ctx, mock.MatchedBy(func(q *domain.Quiz) bool {
			return q.Title == title && q.Description == "Keep"
		})).Return(nil)

		svc := NewQuizService(repo, new(MockQuizGenerator), nil)
		quiz, err := svc.UpdateQuiz(ctx, id, domain.QuizUpdate{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, quiz.Title)
		assert.False(t, quiz.UpdatedAt.IsZero())
		repo.AssertExpectations(t)
	})

	t.Run("missing quiz", func(t *testing.T) {
		repo := new(MockQuizRepository)
		repo.On("GetQuizByID", ctx, id).Return(nil, nil)

		svc := NewQuizService(repo, new(MockQuizGenerator), nil)
		_, err := svc.UpdateQuiz(ctx, id, domain.QuizUpdate{Title: &title})
		var derr *domain.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domain.CodeQuizNotFound, derr.Code)
		repo.AssertNotCalled(t, "UpdateQuiz", mock.Anything, mock.Anything)
	})
}

func TestQuizService_DeleteQuiz(t *testing.T) {
	ctx := context.Background()
	repo := new(MockQuizRepository)
	repo.On("DeleteQuiz", ctx, "present").Return(true, nil)
	repo.On("DeleteQuiz", ctx, "absent").Return(false, nil)
	repo.On("DeleteQuiz", ctx, "broken").Return(false, errBoom)
	svc := NewQuizService(repo, new(MockQuizGenerator), nil)

	assert.NoError(t, svc.DeleteQuiz(ctx, "present"))

	var derr *domain.DomainError
	require.ErrorAs(t, svc.DeleteQuiz(ctx, "absent"), &derr)
	assert.Equal(t, domain.CodeQuizNotFound, derr.Code)

	require.ErrorAs(t, svc.DeleteQuiz(ctx, "broken"), &derr)
	assert.Equal(t, domain.CodeInternal, derr.Code)
}
