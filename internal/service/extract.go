package service

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"tubequiz/internal/domain"
)

// extractStrategy is one way of recovering a quiz object from raw model text.
type extractStrategy struct {
	name  string
	parse func(raw string) (*domain.QuizPayload, bool)
}

// extractStrategies run in order; the first success wins.
var extractStrategies = []extractStrategy{
	{name: "direct", parse: parseDirect},
	{name: "fenced", parse: parseFenced},
	{name: "braces", parse: parseBraces},
}

var fencedJSONPattern = regexp.MustCompile("(?i)```(?:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")

// ExtractJSON recovers the quiz object from raw model output: the whole text,
// then a fenced code block, then the widest brace-delimited span that parses.
func ExtractJSON(raw string) (*domain.QuizPayload, error) {
	payload, _, err := extractJSON(raw)
	return payload, err
}

func extractJSON(raw string) (*domain.QuizPayload, string, error) {
	for _, s := range extractStrategies {
		if payload, ok := s.parse(raw); ok {
			return payload, s.name, nil
		}
	}
	return nil, "", domain.ErrNoJSON
}

// decodeObject succeeds for any JSON object. Shape problems inside it are left
// for validation to report.
func decodeObject(s string) (*domain.QuizPayload, bool) {
	data := bytes.TrimSpace([]byte(s))
	if len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var payload domain.QuizPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	return &payload, true
}

func parseDirect(raw string) (*domain.QuizPayload, bool) {
	return decodeObject(raw)
}

func parseFenced(raw string) (*domain.QuizPayload, bool) {
	m := fencedJSONPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	return decodeObject(m[1])
}

// parseBraces tries text[first '{' : last '}'] and keeps pulling the right
// boundary back to the previous '}' until something parses.
func parseBraces(raw string) (*domain.QuizPayload, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	for start != -1 && end >= start {
		if payload, ok := decodeObject(raw[start : end+1]); ok {
			return payload, true
		}
		end = strings.LastIndexByte(raw[:end], '}')
	}
	return nil, false
}
