package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"tubequiz/internal/cache"
	"tubequiz/internal/domain"
)

// QuizStore persists generated quizzes in a key/value cache.
//
// Each quiz is stored as JSON under its ID, and a second key maps the source
// video URL to that ID so repeated requests for the same video are served
// without regenerating.
type QuizStore struct {
	cache  domain.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewQuizStore creates a new QuizStore. A zero ttl keeps quizzes indefinitely.
func NewQuizStore(c domain.Cache, ttl time.Duration, logger *zap.Logger) *QuizStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizStore{cache: c, ttl: ttl, logger: logger}
}

var _ domain.QuizRepository = (*QuizStore)(nil)

// SaveQuiz stores the quiz and claims the URL index for it. If another quiz
// already owns the URL the index is left alone.
func (s *QuizStore) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz %s: %w", quiz.ID, err)
	}
	if err := s.cache.Set(ctx, cache.QuizKey(quiz.ID), string(data), s.ttl); err != nil {
		return err
	}

	claimed, err := s.cache.SetNX(ctx, cache.VideoURLKey(quiz.VideoURL), quiz.ID, s.ttl)
	if err != nil {
		return err
	}
	if !claimed {
		s.logger.Warn("Video URL already indexed to another quiz",
			zap.String("quiz_id", quiz.ID),
			zap.String("url", quiz.VideoURL))
	}
	return s.cache.ZAdd(ctx, cache.QuizIndexKey(), quiz.ID, float64(quiz.CreatedAt.UnixMilli()))
}

// UpdateQuiz overwrites the quiz document. Its URL and listing entries are unchanged.
func (s *QuizStore) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz %s: %w", quiz.ID, err)
	}
	return s.cache.Set(ctx, cache.QuizKey(quiz.ID), string(data), s.ttl)
}

// ListQuizzes returns stored quizzes newest first. Index entries whose quiz has
// expired are dropped from the index as they are found.
func (s *QuizStore) ListQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	ids, err := s.cache.ZRevRange(ctx, cache.QuizIndexKey(), 0, -1)
	if err != nil {
		return nil, err
	}

	quizzes := make([]*domain.Quiz, 0, len(ids))
	for _, id := range ids {
		quiz, err := s.GetQuizByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if quiz == nil {
			s.logger.Debug("Dropping expired quiz from index", zap.String("quiz_id", id))
			if err := s.cache.ZRem(ctx, cache.QuizIndexKey(), id); err != nil {
				return nil, err
			}
			continue
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// DeleteQuiz removes the quiz, its listing entry and the URL index when the
// index still points at it.
func (s *QuizStore) DeleteQuiz(ctx context.Context, id string) (bool, error) {
	quiz, err := s.GetQuizByID(ctx, id)
	if err != nil {
		return false, err
	}
	if quiz == nil {
		return false, nil
	}

	if err := s.cache.Delete(ctx, cache.QuizKey(id)); err != nil {
		return false, err
	}
	indexed, err := s.GetQuizIDByVideoURL(ctx, quiz.VideoURL)
	if err != nil {
		return false, err
	}
	if indexed == id {
		if err := s.cache.Delete(ctx, cache.VideoURLKey(quiz.VideoURL)); err != nil {
			return false, err
		}
	}
	if err := s.cache.ZRem(ctx, cache.QuizIndexKey(), id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *QuizStore) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	data, err := s.cache.Get(ctx, cache.QuizKey(id))
	if errors.Is(err, domain.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(data), &quiz); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz %s: %w", id, err)
	}
	return &quiz, nil
}

func (s *QuizStore) GetQuizIDByVideoURL(ctx context.Context, videoURL string) (string, error) {
	id, err := s.cache.Get(ctx, cache.VideoURLKey(videoURL))
	if errors.Is(err, domain.ErrCacheMiss) {
		return "", nil
	}
	return id, err
}
