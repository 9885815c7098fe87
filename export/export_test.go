package export

import (
	"context"
	"strings"
	"testing"
	"time"

	"aethelred/document"
	"github.com/stretchr/testify/require"
)

var sample = document.Document{
	ID:        "doc-1",
	Title:     "NDA between Acme & Globex",
	Content:   "## Terms\n\n| Party | Role |\n|---|---|\n| Acme | Discloser |\n\n- [x] signed\n\n<script>alert(1)</script>",
	Status:    document.StatusDraft,
	UpdatedAt: time.Date(2023, 10, 26, 0, 0, 0, 0, time.UTC),
}

func TestRenderer_GFM(t *testing.T) {
	out, err := NewRenderer().HTML(sample.Content)
	require.NoError(t, err)
	require.Contains(t, out, "<h2>Terms</h2>")
	require.Contains(t, out, "<table>")
	require.Contains(t, out, `type="checkbox"`)
	require.NotContains(t, out, "<script>")
}

func TestExcerpt(t *testing.T) {
	require.Equal(t, "## Terms | Party", Excerpt("## Terms\n\n| Party", 100))
	require.Equal(t, "Mutual…", Excerpt("Mutual non-disclosure", 7))
	require.Equal(t, "Überein…", Excerpt("Übereinkunft", 7))
}

func TestExport_Markdown(t *testing.T) {
	res, err := NewExporter().Export(context.Background(), sample, FormatMarkdown)
	require.NoError(t, err)
	require.Equal(t, sample.Content, string(res.Data))
	require.Equal(t, "NDA-between-Acme--Globex.md", res.Filename)
	require.True(t, strings.HasPrefix(res.MimeType, "text/markdown"))
}

func TestExport_HTMLPage(t *testing.T) {
	res, err := NewExporter().Export(context.Background(), sample, FormatHTML)
	require.NoError(t, err)
	page := string(res.Data)
	require.Contains(t, page, "<title>NDA between Acme &amp; Globex</title>")
	require.Contains(t, page, "<h2>Terms</h2>")
	require.Contains(t, page, "Status: draft")
	require.Contains(t, page, "October 26, 2023")
	require.Equal(t, "NDA-between-Acme--Globex.html", res.Filename)
}

func TestExport_PDFWithoutChrome(t *testing.T) {
	x := NewExporter()
	x.ChromePath = "/nonexistent/chromium"
	_, err := x.Export(context.Background(), sample, FormatPDF)
	require.ErrorIs(t, err, ErrPDFDependencyMissing)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	require.Equal(t, FormatPDF, f)
	f, err = ParseFormat("markdown")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, f)
	_, err = ParseFormat("docx")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewExporter().Export(context.Background(), sample, Format("docx"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSanitizeFilename(t *testing.T) {
	require.Equal(t, "document", sanitizeFilename("???"))
	require.Len(t, sanitizeFilename(strings.Repeat("a", 80)), 50)
}
