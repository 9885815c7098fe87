package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"aethelred/catalog"
)

// Agent drafts documents and rewrites spans through an LLMClient. Every
// failure it returns is a *ServiceError.
type Agent struct {
	llm    LLMClient
	logger *slog.Logger
}

func NewAgent(llm LLMClient, logger *slog.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{llm: llm, logger: logger}, nil
}

// Generate produces a draft for the template from the filled form. Inputs
// are expected to have passed Template.Validate already.
func (a *Agent) Generate(ctx context.Context, t catalog.Template, inputs map[string]string) (Draft, error) {
	req := NewDraftRequest(t, inputs)
	raw, err := a.llm.Complete(ctx, BuildDraftPrompt(req))
	if err != nil {
		a.logger.Error("draft generation failed", "template", t.ID, "error", err)
		return Draft{}, generationFailed(err)
	}
	draft, err := ParseDraft(raw)
	if err != nil {
		a.logger.Error("draft response rejected", "template", t.ID, "error", err, "response_bytes", len(raw))
		return Draft{}, generationFailed(err)
	}
	a.logger.Info("draft generated", "template", t.ID, "title", draft.Title, "content_bytes", len(draft.Content))
	return draft, nil
}

// Refine rewrites text in the given style and returns the replacement.
func (a *Agent) Refine(ctx context.Context, text string, style Style) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", refineFailed(errors.New("nothing to refine"))
	}
	raw, err := a.llm.Complete(ctx, BuildRefinePrompt(text, style))
	if err != nil {
		a.logger.Error("refine failed", "style", style.ID, "error", err)
		return "", refineFailed(err)
	}
	out, err := CleanRefinement(raw)
	if err != nil {
		a.logger.Error("refine response rejected", "style", style.ID, "error", err)
		return "", refineFailed(err)
	}
	a.logger.Debug("refined span", "style", style.ID, "in_bytes", len(text), "out_bytes", len(out))
	return out, nil
}
