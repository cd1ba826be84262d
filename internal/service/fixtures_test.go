package service

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"tubequiz/internal/domain"
)

func validPayload() *domain.QuizPayload {
	questions := make([]*domain.QuestionDraft, 0, domain.QuestionsPerQuiz)
	for i := 0; i < domain.QuestionsPerQuiz; i++ {
		questions = append(questions, domain.NewQuestionDraft(
			fmt.Sprintf("What does the speaker say about point %d?", i+1),
			[]string{"Warming", "Cooling", "No change", "Unknown"},
			"Warming",
		))
	}
	return &domain.QuizPayload{
		Title:       "Climate change basics",
		Description: "Ten questions about the talk",
		Questions:   questions,
	}
}

func payloadJSON(t *testing.T, p *domain.QuizPayload) string {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return string(data)
}
