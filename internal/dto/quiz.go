package dto

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"tubequiz/internal/domain"
)

// CreateQuizRequest is the body of POST /api/quizzes
type CreateQuizRequest struct {
	URL string `json:"url"`
}

// UpdateQuizRequest is the body of PATCH /api/quizzes/:id.
// Only these two fields may be sent.
type UpdateQuizRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

var updatableQuizFields = map[string]bool{"title": true, "description": true}

// DecodeUpdateQuizRequest parses a PATCH body, rejecting fields other than
// title and description and values that are not strings.
func DecodeUpdateQuizRequest(body []byte) (domain.QuizUpdate, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return domain.QuizUpdate{}, domain.NewInvalidInputError("Invalid request body.")
	}

	var unknown []string
	for name := range fields {
		if !updatableQuizFields[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return domain.QuizUpdate{}, domain.NewInvalidInputError("Unknown field(s): " + strings.Join(unknown, ", "))
	}

	var req UpdateQuizRequest
	targets := []struct {
		name  string
		value **string
	}{
		{"title", &req.Title},
		{"description", &req.Description},
	}
	for _, target := range targets {
		raw, ok := fields[target.name]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil || string(raw) == "null" {
			return domain.QuizUpdate{}, domain.NewInvalidInputError(fmt.Sprintf("%s must be a string.", target.name))
		}
		*target.value = &value
	}
	return domain.QuizUpdate{Title: req.Title, Description: req.Description}, nil
}

// QuestionResponse represents one multiple-choice question in the API response
type QuestionResponse struct {
	QuestionTitle string   `json:"question_title"`
	Options       []string `json:"options"`
	Answer        string   `json:"answer"`
}

// QuizResponse represents a generated quiz in the API response
type QuizResponse struct {
	ID          string             `json:"id"`
	VideoURL    string             `json:"video_url"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Questions   []QuestionResponse `json:"questions"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ErrorDetailResponse is the error body returned for every failed request.
// Detail is safe to show to the user as is.
type ErrorDetailResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// NewQuizResponse converts a domain quiz into its API shape.
func NewQuizResponse(quiz *domain.Quiz) *QuizResponse {
	questions := make([]QuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if q == nil {
			continue
		}
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		questions = append(questions, QuestionResponse{
			QuestionTitle: q.QuestionTitle,
			Options:       options,
			Answer:        q.Answer,
		})
	}
	return &QuizResponse{
		ID:          quiz.ID,
		VideoURL:    quiz.VideoURL,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   questions,
		CreatedAt:   quiz.CreatedAt,
	}
}
