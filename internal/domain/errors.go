package domain

import "fmt"

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Quiz specific errors
	CodeQuizNotFound    ErrorCode = "QUIZ_NOT_FOUND"
	CodeInvalidVideoURL ErrorCode = "INVALID_VIDEO_URL"

	// Pipeline errors
	CodeDownloadFailed     ErrorCode = "DOWNLOAD_FAILED"
	CodeConvertFailed      ErrorCode = "CONVERT_FAILED"
	CodeEmptyTranscript    ErrorCode = "EMPTY_TRANSCRIPT"
	CodeClientUnavailable  ErrorCode = "CLIENT_UNAVAILABLE"
	CodeCredentialMissing  ErrorCode = "CREDENTIAL_MISSING"
	CodeNoJSON             ErrorCode = "NO_JSON"
	CodeQuestionCount      ErrorCode = "QUESTION_COUNT"
	CodeOptionCount        ErrorCode = "OPTION_COUNT"
	CodeAnswerNotInOptions ErrorCode = "ANSWER_NOT_IN_OPTIONS"
)

// DomainError represents a domain-specific error raised by the caller layer
// (request validation, lookups). Pipeline failures use PipelineError instead.
type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewInvalidVideoURLError(message string) *DomainError {
	return NewError(CodeInvalidVideoURL, message, nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz not found with ID: %s", quizID), nil)
}

// PipelineError is the single failure kind surfaced by the quiz pipeline.
// Message is user-displayable and must be shown verbatim.
type PipelineError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *PipelineError) Error() string {
	return e.Message
}

// Is matches another PipelineError with the same code and message.
func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	if !ok || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewPipelineError creates a new PipelineError
func NewPipelineError(code ErrorCode, message string) *PipelineError {
	return &PipelineError{Code: code, Message: message}
}

var (
	ErrDownloadFailed     = NewPipelineError(CodeDownloadFailed, "Failed to download audio with yt-dlp.")
	ErrConvertFailed      = NewPipelineError(CodeConvertFailed, "Failed to convert audio with ffmpeg.")
	ErrEmptyTranscript    = NewPipelineError(CodeEmptyTranscript, "Whisper returned empty transcript.")
	ErrNoJSON             = NewPipelineError(CodeNoJSON, "Gemini returned unexpected format (no JSON).")
	ErrQuestionCount      = NewPipelineError(CodeQuestionCount, "Model did not produce exactly 10 questions.")
	ErrOptionCount        = NewPipelineError(CodeOptionCount, "Each question must have 4 options.")
	ErrAnswerNotInOptions = NewPipelineError(CodeAnswerNotInOptions, "Answer must be one of the options.")
)

// NewClientUnavailableError reports that the generative client library is not wired in.
func NewClientUnavailableError(client string) *PipelineError {
	return NewPipelineError(CodeClientUnavailable, fmt.Sprintf("%s package not installed.", client))
}

// NewCredentialMissingError reports an absent API credential.
func NewCredentialMissingError(envVar string) *PipelineError {
	return NewPipelineError(CodeCredentialMissing, fmt.Sprintf("%s environment variable is missing.", envVar))
}
