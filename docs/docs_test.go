package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var routerAnnotation = regexp.MustCompile(`@Router\s+(\S+)\s+\[(\w+)\]`)

func TestDocCoversAnnotatedRoutes(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	sources, err := filepath.Glob(filepath.Join("..", "internal", "httpserver", "*.go"))
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	annotated := 0
	for _, src := range sources {
		body, err := os.ReadFile(src)
		require.NoError(t, err)
		for _, m := range routerAnnotation.FindAllStringSubmatch(string(body), -1) {
			annotated++
			path, method := m[1], strings.ToLower(m[2])
			ops, ok := doc.Paths[path]
			if assert.True(t, ok, "%s: %s missing from doc", filepath.Base(src), path) {
				assert.Contains(t, ops, method, "%s: %s %s missing from doc", filepath.Base(src), method, path)
			}
		}
	}
	assert.NotZero(t, annotated)
}
