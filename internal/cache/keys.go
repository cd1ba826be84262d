package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	GlobalKeyPrefix = "tubequiz"
)

// GenerateCacheKey joins the prefix, object type and identifier with ":".
// Extra params are joined by "_" and appended as a final segment.
func GenerateCacheKey(objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// QuizKey is where a stored quiz's JSON lives.
func QuizKey(quizID string) string {
	return GenerateCacheKey("quiz", quizID)
}

// VideoURLKey maps a source video URL to the ID of its quiz. The URL is hashed
// to keep keys short and free of separator characters.
func VideoURLKey(videoURL string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(videoURL)))
	return GenerateCacheKey("quiz", "url", hex.EncodeToString(sum[:]))
}

// QuizIndexKey is the sorted set of quiz IDs scored by creation time.
func QuizIndexKey() string {
	return GenerateCacheKey("quiz", "index", "created")
}
