package domain

import "context"

// QuizRepository defines the interface for generated quiz persistence
type QuizRepository interface {
	// SaveQuiz persists a quiz and indexes it by its source video URL
	SaveQuiz(ctx context.Context, quiz *Quiz) error

	// GetQuizByID retrieves a quiz by its ID.
	// It returns nil and no error when the quiz does not exist.
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)

	// GetQuizIDByVideoURL returns the ID of the quiz generated for a video URL,
	// or an empty string when none exists
	GetQuizIDByVideoURL(ctx context.Context, videoURL string) (string, error)

	// ListQuizzes returns all stored quizzes, newest first
	ListQuizzes(ctx context.Context) ([]*Quiz, error)

	// UpdateQuiz overwrites a stored quiz's document
	UpdateQuiz(ctx context.Context, quiz *Quiz) error

	// DeleteQuiz removes a quiz together with its URL and listing entries.
	// It reports false when the quiz does not exist.
	DeleteQuiz(ctx context.Context, id string) (bool, error)
}

// QuizGenerator turns a source video URL into a validated quiz payload.
type QuizGenerator interface {
	Run(ctx context.Context, sourceURL string) (*QuizPayload, error)
}
