package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"tubequiz/internal/domain"
	"tubequiz/internal/util"
)

// QuizService defines the caller-facing quiz operations
type QuizService interface {
	// CreateQuiz returns the quiz for videoURL, generating and storing it when
	// none exists yet. created reports whether generation ran.
	CreateQuiz(ctx context.Context, videoURL string) (quiz *domain.Quiz, created bool, err error)

	// GetQuiz returns a stored quiz by ID
	GetQuiz(ctx context.Context, id string) (*domain.Quiz, error)

	// ListQuizzes returns stored quizzes, newest first
	ListQuizzes(ctx context.Context) ([]*domain.Quiz, error)

	// UpdateQuiz changes the title and/or description of a stored quiz
	UpdateQuiz(ctx context.Context, id string, update domain.QuizUpdate) (*domain.Quiz, error)

	// DeleteQuiz removes a stored quiz
	DeleteQuiz(ctx context.Context, id string) error
}

// quizService implements QuizService
type quizService struct {
	repo      domain.QuizRepository
	generator domain.QuizGenerator
	inflight  singleflight.Group
	newID     func() string
	logger    *zap.Logger
}

// NewQuizService creates a new instance of quizService
func NewQuizService(repo domain.QuizRepository, generator domain.QuizGenerator, logger *zap.Logger) QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &quizService{
		repo:      repo,
		generator: generator,
		newID:     util.NewULID,
		logger:    logger,
	}
}

// ValidateVideoURL accepts non-empty YouTube watch or short links.
func ValidateVideoURL(videoURL string) error {
	if strings.TrimSpace(videoURL) == "" {
		return domain.NewInvalidVideoURLError("URL must not be empty.")
	}
	if !strings.Contains(videoURL, "youtube.com/watch") && !strings.Contains(videoURL, "youtu.be/") {
		return domain.NewInvalidVideoURLError("Only YouTube URLs are allowed for now.")
	}
	return nil
}

// CreateQuiz implements QuizService. Concurrent requests for the same URL share
// one pipeline run. Pipeline errors are returned unchanged so their message
// reaches the user verbatim.
func (s *quizService) CreateQuiz(ctx context.Context, videoURL string) (*domain.Quiz, bool, error) {
	videoURL = strings.TrimSpace(videoURL)
	if err := ValidateVideoURL(videoURL); err != nil {
		return nil, false, err
	}

	existing, err := s.findByVideoURL(ctx, videoURL)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		s.logger.Debug("Returning existing quiz", zap.String("quiz_id", existing.ID), zap.String("url", videoURL))
		return existing, false, nil
	}

	type outcome struct {
		quiz    *domain.Quiz
		created bool
	}
	v, err, _ := s.inflight.Do(videoURL, func() (interface{}, error) {
		// A flight that finished after the first lookup may already have stored a quiz.
		existing, err := s.findByVideoURL(ctx, videoURL)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return outcome{quiz: existing}, nil
		}

		payload, err := s.generator.Run(ctx, videoURL)
		if err != nil {
			return nil, err
		}
		quiz := domain.NewQuiz(s.newID(), videoURL, payload)
		if err := s.repo.SaveQuiz(ctx, quiz); err != nil {
			return nil, domain.NewInternalError("Failed to save quiz", err)
		}
		s.logger.Info("Quiz created", zap.String("quiz_id", quiz.ID), zap.String("url", videoURL))
		return outcome{quiz: quiz, created: true}, nil
	})
	if err != nil {
		return nil, false, err
	}
	out := v.(outcome)
	return out.quiz, out.created, nil
}

func (s *quizService) findByVideoURL(ctx context.Context, videoURL string) (*domain.Quiz, error) {
	id, err := s.repo.GetQuizIDByVideoURL(ctx, videoURL)
	if err != nil {
		return nil, domain.NewInternalError("Failed to look up quiz", err)
	}
	if id == "" {
		return nil, nil
	}
	quiz, err := s.repo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load quiz", err)
	}
	return quiz, nil
}

// GetQuiz implements QuizService
func (s *quizService) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	quiz, err := s.repo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}
	return quiz, nil
}

// ListQuizzes implements QuizService
func (s *quizService) ListQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	quizzes, err := s.repo.ListQuizzes(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list quizzes", err)
	}
	return quizzes, nil
}

// UpdateQuiz implements QuizService
func (s *quizService) UpdateQuiz(ctx context.Context, id string, update domain.QuizUpdate) (*domain.Quiz, error) {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	quiz.Apply(update)
	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		return nil, domain.NewInternalError("Failed to update quiz", err)
	}
	s.logger.Info("Quiz updated", zap.String("quiz_id", id))
	return quiz, nil
}

// DeleteQuiz implements QuizService
func (s *quizService) DeleteQuiz(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteQuiz(ctx, id)
	if err != nil {
		return domain.NewInternalError("Failed to delete quiz", err)
	}
	if !deleted {
		return domain.NewQuizNotFoundError(id)
	}
	s.logger.Info("Quiz deleted", zap.String("quiz_id", id))
	return nil
}
