package generator

import "aethelred/catalog"

// DraftRequest is what the drafting model is told about the document to write.
type DraftRequest struct {
	TemplateName        string                 `json:"templateName"`
	TemplateDescription string                 `json:"templateDescription"`
	Inputs              []catalog.LabeledInput `json:"inputs"`
}

// NewDraftRequest builds a request from a template and the filled form.
func NewDraftRequest(t catalog.Template, inputs map[string]string) DraftRequest {
	return DraftRequest{
		TemplateName:        t.Name,
		TemplateDescription: t.Description,
		Inputs:              t.Labeled(inputs),
	}
}

// Draft is the model's structured output: a title and a GitHub-flavored
// markdown body.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
