package markdown

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/cache"
)

func TestRenderBasics(t *testing.T) {
	r := New(nil, 0)
	ctx := context.Background()

	out := string(r.Render(ctx, "**bold** and `code`"))
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<code>code</code>")

	assert.Equal(t, "", string(r.Render(ctx, "")))
}

func TestRenderFencedCode(t *testing.T) {
	r := New(nil, 0)
	out := string(r.Render(context.Background(), "```go\nfmt.Println(1)\n```"))
	assert.Contains(t, out, `<code class="language-go">`)
	assert.Contains(t, out, "fmt.Println(1)")
}

func TestRenderStripsScripts(t *testing.T) {
	r := New(nil, 0)
	out := string(r.Render(context.Background(), "hi <script>alert(1)</script> [x](javascript:alert(1))"))
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}

func TestRenderUsesCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(8)
	r := New(c, 0)

	first := r.Render(ctx, "# Title")
	v, err := c.Get(ctx, cacheKey("# Title"))
	require.NoError(t, err)
	assert.Equal(t, string(first), v)

	require.NoError(t, c.Set(ctx, cacheKey("# Title"), "<p>cached</p>", 0))
	assert.True(t, strings.Contains(string(r.Render(ctx, "# Title")), "cached"))
}
