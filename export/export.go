// Package export renders documents for preview and produces downloadable
// markdown, HTML and PDF files.
package export

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"aethelred/document"
)

var (
	// ErrUnsupportedFormat is returned for a format Export doesn't know.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrPDFDependencyMissing means no Chrome or Chromium binary was found.
	ErrPDFDependencyMissing = errors.New("pdf export requires chrome or chromium")
)

// Format is an export output format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// ParseFormat accepts "md", "markdown", "html" and "pdf".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown", "":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Result is an exported file.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// Exporter writes documents out in the supported formats.
type Exporter struct {
	Renderer *Renderer
	// ChromePath overrides browser discovery for PDF export.
	ChromePath string
}

func NewExporter() *Exporter {
	return &Exporter{Renderer: NewRenderer()}
}

// Export produces doc in the requested format.
func (x *Exporter) Export(ctx context.Context, doc document.Document, format Format) (*Result, error) {
	switch format {
	case FormatMarkdown:
		return &Result{
			Data:     []byte(doc.Content),
			Filename: sanitizeFilename(doc.Title) + ".md",
			MimeType: "text/markdown; charset=utf-8",
		}, nil
	case FormatHTML:
		page, err := x.Page(doc)
		if err != nil {
			return nil, err
		}
		return &Result{
			Data:     []byte(page),
			Filename: sanitizeFilename(doc.Title) + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF:
		page, err := x.Page(doc)
		if err != nil {
			return nil, err
		}
		data, err := x.printPDF(ctx, page)
		if err != nil {
			return nil, err
		}
		return &Result{
			Data:     data,
			Filename: sanitizeFilename(doc.Title) + ".pdf",
			MimeType: "application/pdf",
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Page renders doc as a standalone HTML page.
func (x *Exporter) Page(doc document.Document) (string, error) {
	r := x.Renderer
	if r == nil {
		r = NewRenderer()
	}
	body, err := r.HTML(doc.Content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return renderPage(pageData{
		Title:     doc.Title,
		Status:    string(doc.Status),
		UpdatedAt: doc.UpdatedAt,
		Body:      template.HTML(body),
	})
}

// sanitizeFilename keeps letters, digits, '-' and '_', turning spaces into
// hyphens.
func sanitizeFilename(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	out := b.String()
	if len(out) > 50 {
		out = out[:50]
	}
	if out == "" {
		out = "document"
	}
	return out
}
