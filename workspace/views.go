package workspace

import (
	"context"

	"aethelred/catalog"
)

// ViewKind names the screen a workspace is showing.
type ViewKind string

const (
	KindDashboard        ViewKind = "dashboard"
	KindTemplateSelector ViewKind = "template_selector"
	KindDocumentForm     ViewKind = "document_form"
	KindEditor           ViewKind = "editor"
)

// View is exactly one of DashboardView, TemplateSelectorView,
// DocumentFormView or EditorView.
type View interface {
	Kind() ViewKind
}

type DashboardView struct{}

type TemplateSelectorView struct{}

// DocumentFormView collects inputs for Template.
type DocumentFormView struct {
	Template catalog.Template
}

// EditorView shows one document. The document may have been deleted since
// the view was entered; see Controller.CurrentDocument.
type EditorView struct {
	DocumentID string
}

func (DashboardView) Kind() ViewKind        { return KindDashboard }
func (TemplateSelectorView) Kind() ViewKind { return KindTemplateSelector }
func (DocumentFormView) Kind() ViewKind     { return KindDocumentForm }
func (EditorView) Kind() ViewKind           { return KindEditor }

// Confirmer is the yes/no gate consulted before destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Answer returns a Confirmer that always gives the same answer.
func Answer(yes bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return yes, nil })
}
