package export

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns GitHub-flavored markdown into an HTML fragment. Raw HTML in
// the source is dropped, so drafts from the model render inert.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// HTML renders markdown. It is a pure function of its input.
func (r *Renderer) HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Excerpt collapses whitespace in markdown and cuts it to at most limit
// characters, for dashboard rows.
func Excerpt(markdown string, limit int) string {
	joined := strings.Join(strings.Fields(markdown), " ")
	runes := []rune(joined)
	if limit <= 0 || len(runes) <= limit {
		return joined
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
