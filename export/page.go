package export

import (
	"bytes"
	"html/template"
	"time"
)

type pageData struct {
	Title     string
	Status    string
	UpdatedAt time.Time
	Body      template.HTML
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("January 2, 2006")
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, "Times New Roman", serif; max-width: 46rem; margin: 2rem auto; padding: 0 1.5rem; line-height: 1.6; color: #1f2328; }
  header { border-bottom: 1px solid #d0d7de; margin-bottom: 1.5rem; }
  header p { color: #57606a; font-size: 0.9rem; }
  table { border-collapse: collapse; }
  th, td { border: 1px solid #d0d7de; padding: 0.3rem 0.6rem; }
  @page { size: Letter; margin: 0.75in; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p>{{if .Status}}Status: {{.Status}}{{end}}{{with formatDate .UpdatedAt}} · Last updated {{.}}{{end}}</p>
</header>
<main>
{{.Body}}
</main>
</body>
</html>
`))

func renderPage(data pageData) (string, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
