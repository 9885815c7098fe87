package generator

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	mockDocTypeRe  = regexp.MustCompile(`(?m)^\*\*Document Type:\*\* (.+)$`)
	mockInputRe    = regexp.MustCompile(`(?m)^- \*\*(.+?):\*\* (.*)$`)
	mockOriginalRe = regexp.MustCompile(`(?s)Original text:\n---\n(.*)\n---`)
)

// MockLLM is a placeholder for local runs that never calls an external model.
// Drafts echo the form inputs as markdown; refinements echo the original text.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	if !prompt.JSON {
		if match := mockOriginalRe.FindStringSubmatch(prompt.User); match != nil {
			return match[1], nil
		}
		return prompt.User, nil
	}

	docType := "Document"
	if match := mockDocTypeRe.FindStringSubmatch(prompt.User); match != nil {
		docType = strings.TrimSpace(match[1])
	}

	var sb strings.Builder
	sb.WriteString("## " + strings.ToUpper(docType) + "\n\n")
	sb.WriteString("This draft was produced without a language model.\n\n")
	sb.WriteString("### Details\n\n")
	var values []string
	for _, match := range mockInputRe.FindAllStringSubmatch(prompt.User, -1) {
		sb.WriteString("- **" + match[1] + ":** " + match[2] + "\n")
		values = append(values, match[2])
	}

	title := docType
	if len(values) >= 2 {
		title += " between " + values[0] + " and " + values[1]
	}
	out, err := json.Marshal(Draft{Title: title, Content: sb.String()})
	if err != nil {
		return "", err
	}
	return "```json\n" + string(out) + "\n```", nil
}
