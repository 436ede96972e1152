// Package markdown turns user-authored Markdown into sanitized HTML.
package markdown

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"html/template"
	"log"
	"regexp"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"devconnect/internal/cache"
)

// Renderer converts Markdown to HTML safe for embedding in a page.
// Results are memoized in the cache keyed by a digest of the source.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	cache  cache.Cache
	ttl    time.Duration
}

// New builds a Renderer. c may be nil to disable memoization.
func New(c cache.Cache, ttl time.Duration) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#-]+$`)).OnElements("code")
	return &Renderer{md: md, policy: policy, cache: c, ttl: ttl}
}

// Render returns sanitized HTML for src. Rendering failures fall back to
// the escaped source.
func (r *Renderer) Render(ctx context.Context, src string) template.HTML {
	if src == "" {
		return ""
	}
	key := cacheKey(src)
	if r.cache != nil {
		if v, err := r.cache.Get(ctx, key); err == nil {
			return template.HTML(v)
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("markdown: cache get: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		log.Printf("markdown: convert: %v", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	out := r.policy.SanitizeBytes(buf.Bytes())

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, string(out), r.ttl); err != nil {
			log.Printf("markdown: cache set: %v", err)
		}
	}
	return template.HTML(out)
}

func cacheKey(src string) string {
	sum := sha256.Sum256([]byte(src))
	return "md:" + hex.EncodeToString(sum[:])
}
