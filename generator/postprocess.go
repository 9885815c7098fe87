package generator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	openFenceRe  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\n?")
	closeFenceRe = regexp.MustCompile("\n?```$")
	delimiterRe  = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n\s*---$`)
	labelRe      = regexp.MustCompile(`(?i)^(rewritten|refined) text:\s*`)
)

// StripFences removes a code fence the model wrapped around its answer,
// with or without a language tag.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = openFenceRe.ReplaceAllString(s, "")
	s = closeFenceRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseDraft validates the model's JSON answer and extracts the draft.
func ParseDraft(raw string) (Draft, error) {
	body := StripFences(raw)
	if body == "" {
		return Draft{}, errors.New("model returned an empty response")
	}
	if !gjson.Valid(body) {
		return Draft{}, errors.New("model response is not valid JSON")
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		return Draft{}, errors.New("model response is not a JSON object")
	}

	title, err := requiredString(root, "title")
	if err != nil {
		return Draft{}, err
	}
	content, err := requiredString(root, "content")
	if err != nil {
		return Draft{}, err
	}
	return Draft{Title: title, Content: content}, nil
}

func requiredString(root gjson.Result, field string) (string, error) {
	v := root.Get(field)
	if !v.Exists() {
		return "", errors.New("model response is missing " + field)
	}
	if v.Type != gjson.String {
		return "", errors.New("model response field " + field + " is not a string")
	}
	s := strings.TrimSpace(v.String())
	if s == "" {
		return "", errors.New("model response field " + field + " is empty")
	}
	return s, nil
}

// CleanRefinement turns the model's rewrite into plain replacement text:
// fences, echoed delimiters and answer labels are removed.
func CleanRefinement(raw string) (string, error) {
	s := StripFences(raw)
	s = labelRe.ReplaceAllString(s, "")
	if m := delimiterRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("model returned an empty rewrite")
	}
	return s, nil
}
