package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDoc(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))

	assert.Equal(t, "/api", parsed["basePath"])
	paths := parsed["paths"].(map[string]any)
	for _, path := range []string{
		"/lessons/{track}",
		"/users/register",
		"/users/login",
		"/users/quiz",
		"/users/dashboard",
		"/users/lesson/{id}/complete",
		"/users/certificates",
		"/admin/lessons",
		"/admin/lessons/{id}/approve",
		"/admin/users",
	} {
		assert.Contains(t, paths, path)
	}
}
