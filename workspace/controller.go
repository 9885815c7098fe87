// Package workspace is the view-state controller: it owns which screen is
// showing, the form being filled in, the open editor, and routes every user
// intent to the document store and the drafting services.
//
// A Controller is not safe for concurrent use. Long-running service calls are
// split into Begin/Complete pairs so a caller can release its lock while the
// call is in flight; completions that no longer apply are rejected.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"aethelred/catalog"
	"aethelred/document"
	"aethelred/editor"
	"aethelred/generator"
)

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrGenerationInFlight = errors.New("a draft is already being generated")
	ErrStaleGeneration    = errors.New("generation result no longer applies")
	ErrWrongView          = errors.New("action is not available on the current view")
)

const missingDocumentMessage = "This document no longer exists. Return to the dashboard to continue."

// Drafter produces a draft from a filled template form.
type Drafter interface {
	Generate(ctx context.Context, t catalog.Template, inputs map[string]string) (generator.Draft, error)
}

// Deps are the collaborators a Controller routes intents to.
type Deps struct {
	Catalog   *catalog.Catalog
	Store     *document.Store
	Drafter   Drafter
	Refiner   editor.Refiner
	Confirmer Confirmer
	Logger    *slog.Logger
}

// Form is the state of the document form view.
type Form struct {
	Template    catalog.Template
	Inputs      map[string]string
	Generating  bool
	FieldErrors map[string]string
}

// GenerateTicket identifies one generation attempt.
type GenerateTicket struct {
	ID       uint64
	Template catalog.Template
	Inputs   map[string]string
}

type Controller struct {
	catalog *catalog.Catalog
	store   *document.Store
	drafter Drafter
	refiner editor.Refiner
	confirm Confirmer
	logger  *slog.Logger

	view   View
	form   *Form
	engine *editor.Engine
	errMsg string

	genSeq    uint64
	genActive uint64
	refineSeq uint64
}

// New returns a controller on the dashboard. Catalog and Store are required.
// Without a Confirmer every deletion is declined.
func New(deps Deps) (*Controller, error) {
	if deps.Catalog == nil {
		return nil, errors.New("workspace: catalog is required")
	}
	if deps.Store == nil {
		return nil, errors.New("workspace: store is required")
	}
	if deps.Confirmer == nil {
		deps.Confirmer = Answer(false)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Controller{
		catalog: deps.Catalog,
		store:   deps.Store,
		drafter: deps.Drafter,
		refiner: deps.Refiner,
		confirm: deps.Confirmer,
		logger:  deps.Logger,
		view:    DashboardView{},
	}, nil
}

func (c *Controller) View() View                { return c.view }
func (c *Controller) Error() string             { return c.errMsg }
func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }
func (c *Controller) Store() *document.Store    { return c.store }

// Form returns a copy of the form state when the form view is showing.
func (c *Controller) Form() (Form, bool) {
	if c.form == nil {
		return Form{}, false
	}
	f := *c.form
	f.Inputs = maps.Clone(c.form.Inputs)
	f.FieldErrors = maps.Clone(c.form.FieldErrors)
	return f, true
}

// Documents lists the store, newest first.
func (c *Controller) Documents() []document.Document {
	return c.store.List()
}

// setView is the single place the current view changes. Leaving a view drops
// its transient state, which also turns any completion still in flight for
// it stale.
func (c *Controller) setView(v View) {
	c.view = v
	c.errMsg = ""
	if _, ok := v.(DocumentFormView); !ok {
		c.form = nil
	}
	if _, ok := v.(EditorView); !ok {
		c.engine = nil
	}
	c.logger.Debug("view changed", "view", v.Kind())
}

// CreateNew opens the template selector.
func (c *Controller) CreateNew() {
	c.setView(TemplateSelectorView{})
}

// Back returns to the dashboard.
func (c *Controller) Back() {
	c.setView(DashboardView{})
}

// SelectTemplate opens an empty form for the template.
func (c *Controller) SelectTemplate(id string) error {
	t, err := c.catalog.Get(id)
	if err != nil {
		return err
	}
	c.setView(DocumentFormView{Template: t})
	c.form = &Form{Template: t, Inputs: map[string]string{}}
	return nil
}

// SelectDocument opens the document in the editor, in viewing mode.
func (c *Controller) SelectDocument(id string) error {
	doc, err := c.store.Get(id)
	if err != nil {
		return c.notFound(err)
	}
	c.openEditor(doc)
	return nil
}

func (c *Controller) openEditor(doc document.Document) {
	c.setView(EditorView{DocumentID: doc.ID})
	c.engine = editor.New(doc.Content, editor.WithRequestIDs(c.nextRequestID))
}

func (c *Controller) nextRequestID() uint64 {
	c.refineSeq++
	return c.refineSeq
}

// SetInputs merges values into the form. Entered values survive failed
// generation attempts.
func (c *Controller) SetInputs(values map[string]string) error {
	if c.form == nil {
		return ErrWrongView
	}
	maps.Copy(c.form.Inputs, values)
	return nil
}

// BeginGenerate validates the form and marks it as generating. The ticket
// carries what the drafter should be called with; hand its outcome to
// CompleteGenerate.
func (c *Controller) BeginGenerate(values map[string]string) (GenerateTicket, error) {
	if c.form == nil {
		return GenerateTicket{}, ErrWrongView
	}
	if c.form.Generating {
		return GenerateTicket{}, ErrGenerationInFlight
	}
	maps.Copy(c.form.Inputs, values)

	c.form.FieldErrors = nil
	if err := c.form.Template.Validate(c.form.Inputs); err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			c.form.FieldErrors = verr.Fields
		}
		c.errMsg = "Please fill in all required fields."
		return GenerateTicket{}, err
	}

	c.genSeq++
	c.genActive = c.genSeq
	c.form.Generating = true
	c.errMsg = ""
	return GenerateTicket{
		ID:       c.genSeq,
		Template: c.form.Template,
		Inputs:   maps.Clone(c.form.Inputs),
	}, nil
}

// CompleteGenerate applies the outcome of a generation attempt. On success
// the draft becomes a new document and the editor opens on it. On failure
// the form stays, inputs intact, with the error shown. Results for an
// attempt the user has since navigated away from return ErrStaleGeneration.
func (c *Controller) CompleteGenerate(ticket GenerateTicket, draft generator.Draft, genErr error) (document.Document, error) {
	if c.form == nil || !c.form.Generating || c.genActive != ticket.ID {
		c.logger.Info("discarding stale draft", "ticket", ticket.ID, "template", ticket.Template.ID)
		return document.Document{}, ErrStaleGeneration
	}
	c.form.Generating = false
	c.genActive = 0

	if genErr != nil {
		c.errMsg = generator.UserMessage(genErr)
		return document.Document{}, genErr
	}

	doc, err := c.store.Create(document.Document{
		Title:      draft.Title,
		Content:    draft.Content,
		Status:     document.StatusDraft,
		TemplateID: ticket.Template.ID,
	})
	if err != nil {
		c.errMsg = "Could not save the generated document."
		return document.Document{}, fmt.Errorf("store draft: %w", err)
	}
	c.logger.Info("document created", "id", doc.ID, "template", doc.TemplateID)
	c.openEditor(doc)
	return doc, nil
}

// Generate runs a whole generation round trip.
func (c *Controller) Generate(ctx context.Context, values map[string]string) (document.Document, error) {
	if c.drafter == nil {
		return document.Document{}, errors.New("workspace: no drafter configured")
	}
	ticket, err := c.BeginGenerate(values)
	if err != nil {
		return document.Document{}, err
	}
	draft, genErr := c.drafter.Generate(ctx, ticket.Template, ticket.Inputs)
	return c.CompleteGenerate(ticket, draft, genErr)
}

// DeleteDocument removes a document after the Confirmer agrees. It reports
// whether the document was deleted. Deleting the open document returns to
// the dashboard.
func (c *Controller) DeleteDocument(ctx context.Context, id string) (bool, error) {
	doc, err := c.store.Get(id)
	if err != nil {
		return false, c.notFound(err)
	}
	ok, err := c.confirm.Confirm(ctx, fmt.Sprintf("Delete %q? This cannot be undone.", doc.Title))
	if err != nil {
		return false, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := c.store.Delete(id); err != nil {
		return false, c.notFound(err)
	}
	c.logger.Info("document deleted", "id", id)
	if ev, open := c.view.(EditorView); open && ev.DocumentID == id {
		c.setView(DashboardView{})
	}
	c.errMsg = ""
	return true, nil
}

// SetStatus moves a document through the review workflow.
func (c *Controller) SetStatus(id string, status document.Status) (document.Document, error) {
	doc, err := c.store.SetStatus(id, status)
	if err != nil {
		return document.Document{}, c.notFound(err)
	}
	return doc, nil
}

// CurrentDocument revalidates the editor's document. When it has been
// deleted the error is ErrDocumentNotFound and Back is the way out.
func (c *Controller) CurrentDocument() (document.Document, error) {
	ev, ok := c.view.(EditorView)
	if !ok {
		return document.Document{}, ErrWrongView
	}
	doc, err := c.store.Get(ev.DocumentID)
	if err != nil {
		c.errMsg = missingDocumentMessage
		return document.Document{}, c.notFound(err)
	}
	return doc, nil
}

func (c *Controller) notFound(err error) error {
	if errors.Is(err, document.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrDocumentNotFound, err)
	}
	return err
}
