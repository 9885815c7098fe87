package workspace

import (
	"context"
	"errors"

	"aethelred/document"
	"aethelred/editor"
	"aethelred/generator"
)

// RefineTicket identifies one refinement in flight for the open document.
type RefineTicket struct {
	DocumentID string
	RequestID  uint64
	Text       string
	Style      generator.Style
}

// liveEditor returns the open document and its engine, first syncing the
// engine with the stored content so a change made elsewhere invalidates any
// pending refinement.
func (c *Controller) liveEditor() (document.Document, *editor.Engine, error) {
	doc, err := c.CurrentDocument()
	if err != nil {
		return document.Document{}, nil, err
	}
	if c.engine == nil {
		c.engine = editor.New(doc.Content, editor.WithRequestIDs(c.nextRequestID))
	}
	if c.engine.Content() != doc.Content {
		c.apply(doc.ID, c.engine.Reload(doc.Content))
	}
	return doc, c.engine, nil
}

// apply carries out the engine's effects against the store.
func (c *Controller) apply(docID string, effects []editor.Effect) error {
	for _, eff := range effects {
		switch e := eff.(type) {
		case editor.CommitContent:
			if _, err := c.store.UpdateContent(docID, e.Content); err != nil {
				c.errMsg = missingDocumentMessage
				return c.notFound(err)
			}
		case editor.ShowNotice:
			c.logger.Info("editor notice", "document", docID, "message", e.Message)
		case editor.DiscardResult:
			c.logger.Debug("refinement discarded", "document", docID, "request", e.RequestID, "reason", e.Reason)
		case editor.InvokeRefine:
			// Handled by BeginRefine's caller.
		}
	}
	return nil
}

// SetEditorMode switches the open document between viewing and editing.
func (c *Controller) SetEditorMode(m editor.Mode) error {
	doc, eng, err := c.liveEditor()
	if err != nil {
		return err
	}
	return c.apply(doc.ID, eng.SetMode(m))
}

// Select records the editor's selection in code point offsets.
func (c *Controller) Select(start, end int) error {
	_, eng, err := c.liveEditor()
	if err != nil {
		return err
	}
	return eng.Select(start, end)
}

// ClearSelection forgets the editor's selection.
func (c *Controller) ClearSelection() error {
	_, eng, err := c.liveEditor()
	if err != nil {
		return err
	}
	eng.ClearSelection()
	return nil
}

// DismissNotice clears the editor's message.
func (c *Controller) DismissNotice() error {
	_, eng, err := c.liveEditor()
	if err != nil {
		return err
	}
	eng.ClearNotice()
	return nil
}

// EditContent stores content typed into the editor.
func (c *Controller) EditContent(content string) error {
	doc, eng, err := c.liveEditor()
	if err != nil {
		return err
	}
	effects, err := eng.Edit(content)
	if err != nil {
		return err
	}
	return c.apply(doc.ID, effects)
}

// BeginRefine starts a refinement of the current selection with the named
// style. Pass the ticket's outcome to CompleteRefine.
func (c *Controller) BeginRefine(styleID string) (RefineTicket, error) {
	style, err := generator.LookupStyle(styleID)
	if err != nil {
		return RefineTicket{}, err
	}
	doc, eng, err := c.liveEditor()
	if err != nil {
		return RefineTicket{}, err
	}
	invoke, err := eng.BeginRefine(style)
	if err != nil {
		return RefineTicket{}, err
	}
	return RefineTicket{
		DocumentID: doc.ID,
		RequestID:  invoke.Request.ID,
		Text:       invoke.Request.Original,
		Style:      invoke.Request.Style,
	}, nil
}

// CompleteRefine hands the service's answer to the engine. An answer for a
// document that is no longer open, or for a request that was discarded,
// returns editor.ErrStaleRequest and changes nothing.
func (c *Controller) CompleteRefine(ticket RefineTicket, result string, refineErr error) error {
	ev, ok := c.view.(EditorView)
	if !ok || ev.DocumentID != ticket.DocumentID || c.engine == nil {
		c.logger.Info("discarding stale refinement", "document", ticket.DocumentID, "request", ticket.RequestID)
		return editor.ErrStaleRequest
	}
	doc, eng, err := c.liveEditor()
	if err != nil {
		return err
	}
	effects, err := eng.CompleteRefine(ticket.RequestID, result, refineErr)
	if err != nil {
		if errors.Is(err, editor.ErrStaleRequest) {
			c.logger.Info("discarding stale refinement", "document", ticket.DocumentID, "request", ticket.RequestID)
		}
		return err
	}
	return c.apply(doc.ID, effects)
}

// Refine runs a whole refinement round trip.
func (c *Controller) Refine(ctx context.Context, styleID string) error {
	if c.refiner == nil {
		return errors.New("workspace: no refiner configured")
	}
	ticket, err := c.BeginRefine(styleID)
	if err != nil {
		return err
	}
	result, refineErr := c.refiner.Refine(ctx, ticket.Text, ticket.Style)
	return c.CompleteRefine(ticket, result, refineErr)
}

// AcceptRefine splices the reviewed result into the document and saves it.
func (c *Controller) AcceptRefine() error {
	doc, eng, err := c.liveEditor()
	if err != nil {
		return err
	}
	effects, acceptErr := eng.Accept()
	if err := c.apply(doc.ID, effects); err != nil {
		return err
	}
	return acceptErr
}

// CancelRefine discards the pending or reviewed refinement.
func (c *Controller) CancelRefine() error {
	doc, eng, err := c.liveEditor()
	if err != nil {
		return err
	}
	return c.apply(doc.ID, eng.Cancel())
}
