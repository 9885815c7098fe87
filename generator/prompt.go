package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message set sent to the model.
type Prompt struct {
	System string
	User   string
	// JSON asks the provider for a JSON object response when it supports it.
	JSON bool
	// Temperature overrides the client default when set.
	Temperature *float64
}

const draftSystem = "You are an AI legal assistant named Aethelred. Your purpose is to draft clear, professional, and comprehensive legal documents. Your output must be a single JSON object with string fields \"title\" and \"content\"."

const refineSystem = "You are an expert legal editor. Rewrite only the text you are given. Do not add introductory or concluding remarks, explanations, quotation marks, or markdown code fences. Reply with the rewritten text as a plain string."

const refineTemperature = 0.2

// BuildDraftPrompt builds the prompt for a first draft.
func BuildDraftPrompt(req DraftRequest) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Please act as an expert legal drafting assistant. Your task is to generate a formal %q document.\n\n", req.TemplateName))
	sb.WriteString(fmt.Sprintf("**Document Type:** %s\n", req.TemplateName))
	sb.WriteString(fmt.Sprintf("**Template Description:** %s\n\n", req.TemplateDescription))
	sb.WriteString("**User-Provided Information:**\n")
	for _, in := range req.Inputs {
		sb.WriteString(fmt.Sprintf("- **%s:** %s\n", in.Label, in.Value))
	}
	sb.WriteString("\nRespond with a JSON object of the form {\"title\": string, \"content\": string}.\n")
	sb.WriteString("- The title should be specific and professional, incorporating details from the provided information (e.g., party names).\n")
	sb.WriteString("- The content must be a complete, well-structured legal document in GitHub Flavored Markdown.\n")
	sb.WriteString("- Where information is missing, use standard boilerplate language or clear placeholders like \"[Specify Details Here]\".\n")

	return Prompt{
		System: draftSystem,
		User:   sb.String(),
		JSON:   true,
	}
}

// BuildRefinePrompt builds the prompt that rewrites a span in the given style.
func BuildRefinePrompt(text string, style Style) Prompt {
	var sb strings.Builder
	sb.WriteString("Rewrite the following text from a legal document.\n")
	sb.WriteString(fmt.Sprintf("Style: %s. %s\n", style.Label, style.Instruction))
	sb.WriteString("Preserve the original legal meaning.\n\n")
	sb.WriteString("Original text:\n---\n")
	sb.WriteString(text)
	sb.WriteString("\n---\n\nRewritten text:")

	temp := refineTemperature
	return Prompt{
		System:      refineSystem,
		User:        sb.String(),
		Temperature: &temp,
	}
}
