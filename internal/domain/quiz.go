package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	// QuestionsPerQuiz is the exact number of questions a generated quiz must hold.
	QuestionsPerQuiz = 10
	// OptionsPerQuestion is the exact number of options each question must offer.
	OptionsPerQuestion = 4
)

// QuizPayload is the structured quiz produced by one pipeline invocation.
// Questions keep the order the model emitted them in.
type QuizPayload struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []*QuestionDraft `json:"questions"`
}

// QuestionDraft is a single multiple-choice question as decoded from model output.
//
// Models sometimes emit numbers or null where strings are expected. Such values are
// kept as their JSON text and remembered as non-text, so they never compare equal to
// a string and normalize to the empty string during repair.
type QuestionDraft struct {
	QuestionTitle string   `json:"question_title"`
	Options       []string `json:"options"`
	Answer        string   `json:"answer"`

	answerNotText bool
	optionNotText []bool
}

// NewQuestionDraft creates a question whose options and answer are all plain text.
func NewQuestionDraft(title string, options []string, answer string) *QuestionDraft {
	return &QuestionDraft{
		QuestionTitle: title,
		Options:       options,
		Answer:        answer,
	}
}

type quizPayloadJSON struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
	Questions   json.RawMessage `json:"questions"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. Any JSON object is
// accepted: non-string titles and descriptions are kept as their JSON text, and
// a questions value that is not an array decodes to no questions so that
// Validate rejects it by count.
func (p *QuizPayload) UnmarshalJSON(data []byte) error {
	var raw quizPayloadJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = QuizPayload{
		Title:       looseText(raw.Title),
		Description: looseText(raw.Description),
	}
	if isJSONArray(raw.Questions) {
		if err := json.Unmarshal(raw.Questions, &p.Questions); err != nil {
			return err
		}
	}
	return nil
}

type questionDraftJSON struct {
	QuestionTitle json.RawMessage `json:"question_title"`
	Options       json.RawMessage `json:"options"`
	Answer        json.RawMessage `json:"answer"`
}

// UnmarshalJSON implements the json.Unmarshaler interface. A question that is
// not an object, or whose options are not an array, decodes with no options
// and fails validation on the option count.
func (q *QuestionDraft) UnmarshalJSON(data []byte) error {
	*q = QuestionDraft{}
	if !isJSONObject(data) {
		return nil
	}
	var raw questionDraftJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	q.QuestionTitle = looseText(raw.QuestionTitle)
	if isJSONArray(raw.Options) {
		var options []json.RawMessage
		if err := json.Unmarshal(raw.Options, &options); err != nil {
			return err
		}
		q.Options = make([]string, len(options))
		q.optionNotText = make([]bool, len(options))
		for i, opt := range options {
			q.Options[i], q.optionNotText[i] = decodeText(opt)
		}
	}
	// A missing answer behaves like an empty string.
	if len(raw.Answer) > 0 {
		q.Answer, q.answerNotText = decodeText(raw.Answer)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface
func (q *QuestionDraft) MarshalJSON() ([]byte, error) {
	var options json.RawMessage = []byte("null")
	if q.Options != nil {
		items := make([]json.RawMessage, len(q.Options))
		for i, opt := range q.Options {
			items[i] = encodeText(opt, q.optionIsNotText(i))
		}
		b, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		options = b
	}
	return json.Marshal(&questionDraftJSON{
		QuestionTitle: encodeText(q.QuestionTitle, false),
		Options:       options,
		Answer:        encodeText(q.Answer, q.answerNotText),
	})
}

func isJSONArray(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isJSONObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func decodeText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	var s string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, false
		}
	}
	return string(raw), true
}

// looseText decodes a free-text field; null or missing yields "".
func looseText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	s, _ := decodeText(raw)
	return s
}

func encodeText(s string, notText bool) json.RawMessage {
	if notText && json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	b, _ := json.Marshal(s)
	return b
}

func (q *QuestionDraft) optionIsNotText(i int) bool {
	return i < len(q.optionNotText) && q.optionNotText[i]
}

// answerOptionIndex returns the index of the option the answer is identical to, or -1.
func (q *QuestionDraft) answerOptionIndex() int {
	for i, opt := range q.Options {
		if opt == q.Answer && q.optionIsNotText(i) == q.answerNotText {
			return i
		}
	}
	return -1
}

// HasValidAnswer reports whether the answer is exactly one of the options.
func (q *QuestionDraft) HasValidAnswer() bool {
	return q.answerOptionIndex() >= 0
}

// adoptOption sets the answer to a copy of options[i], kind included.
func (q *QuestionDraft) adoptOption(i int) {
	q.Answer = q.Options[i]
	q.answerNotText = q.optionIsNotText(i)
}

// Validate enforces the quiz shape: question count first, then per question the
// option count followed by answer membership. The first violation is returned.
func (p *QuizPayload) Validate() error {
	if len(p.Questions) != QuestionsPerQuiz {
		return ErrQuestionCount
	}
	for _, q := range p.Questions {
		if q == nil || len(q.Options) != OptionsPerQuestion {
			return ErrOptionCount
		}
		if !q.HasValidAnswer() {
			return ErrAnswerNotInOptions
		}
	}
	return nil
}

// Quiz is a generated quiz stored for a source video.
type Quiz struct {
	ID          string           `json:"id"`
	VideoURL    string           `json:"video_url"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []*QuestionDraft `json:"questions"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// DefaultQuizTitle is used when the model leaves the title empty.
const DefaultQuizTitle = "Quiz"

// NewQuiz creates a Quiz from a validated payload.
func NewQuiz(id, videoURL string, payload *QuizPayload) *Quiz {
	now := time.Now()
	title := payload.Title
	if title == "" {
		title = DefaultQuizTitle
	}
	return &Quiz{
		ID:          id,
		VideoURL:    videoURL,
		Title:       title,
		Description: payload.Description,
		Questions:   payload.Questions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// QuizUpdate carries the editable fields of a stored quiz. Nil fields are left as they are.
type QuizUpdate struct {
	Title       *string
	Description *string
}

// Apply changes the quiz in place and bumps UpdatedAt.
func (q *Quiz) Apply(update QuizUpdate) {
	if update.Title != nil {
		q.Title = *update.Title
	}
	if update.Description != nil {
		q.Description = *update.Description
	}
	q.UpdatedAt = time.Now()
}
