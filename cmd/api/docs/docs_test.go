package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocIsRegistered(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed struct {
		Swagger  string                                `json:"swagger"`
		BasePath string                                `json:"basePath"`
		Schemes  []string                              `json:"schemes"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	assert.Equal(t, "2.0", parsed.Swagger)
	assert.Equal(t, "/api", parsed.BasePath)
	assert.Equal(t, []string{"http", "https"}, parsed.Schemes)
	assert.Contains(t, parsed.Paths["/quizzes"], "get")
	assert.Contains(t, parsed.Paths["/quizzes"], "post")
	for _, method := range []string{"get", "patch", "delete"} {
		assert.Contains(t, parsed.Paths["/quizzes/{id}"], method)
	}
}
