package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{"without paramsKey", "quiz", "123", nil, "tubequiz:quiz:123"},
		{"with empty paramsKey", "quiz", "123", []string{}, "tubequiz:quiz:123"},
		{"with one paramsKey", "quiz", "abc", []string{"v2"}, "tubequiz:quiz:abc:v2"},
		{"with multiple paramsKey", "quiz", "abc", []string{"en", "base"}, "tubequiz:quiz:abc:en_base"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestQuizKeys(t *testing.T) {
	assert.Equal(t, "tubequiz:quiz:01HZ", QuizKey("01HZ"))

	k1 := VideoURLKey("https://youtu.be/abc")
	k2 := VideoURLKey("  https://youtu.be/abc ")
	k3 := VideoURLKey("https://youtu.be/xyz")
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.True(t, strings.HasPrefix(k1, "tubequiz:quiz:url:"))
	assert.Len(t, strings.TrimPrefix(k1, "tubequiz:quiz:url:"), 64)

	assert.Equal(t, "tubequiz:quiz:index:created", QuizIndexKey())
}
