package workspace

import (
	"aethelred/catalog"
	"aethelred/document"
	"aethelred/editor"
	"aethelred/export"
)

const excerptLimit = 140

// Snapshot is everything a view layer needs to draw the workspace.
type Snapshot struct {
	View       ViewKind           `json:"view"`
	Error      string             `json:"error,omitempty"`
	Documents  []DocumentRow      `json:"documents"`
	Templates  []catalog.Template `json:"templates,omitempty"`
	Form       *FormState         `json:"form,omitempty"`
	DocumentID string             `json:"documentId,omitempty"`
	Document   *document.Document `json:"document,omitempty"`
	Editor     *EditorState       `json:"editor,omitempty"`
}

// DocumentRow is one dashboard entry.
type DocumentRow struct {
	document.Document
	Excerpt string `json:"excerpt"`
}

type FormState struct {
	Template    catalog.Template  `json:"template"`
	Inputs      map[string]string `json:"inputs"`
	Generating  bool              `json:"generating"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

type EditorState struct {
	Mode      editor.Mode           `json:"mode"`
	Phase     editor.Phase          `json:"phase"`
	Selection *editor.Selection     `json:"selection,omitempty"`
	Request   *editor.RefineRequest `json:"request,omitempty"`
	Review    *editor.Review        `json:"review,omitempty"`
	Failed    *editor.RefineRequest `json:"failed,omitempty"`
	CanRefine bool                  `json:"canRefine"`
	Notice    string                `json:"notice,omitempty"`
}

// Snapshot captures the current state. On the editor view it revalidates the
// open document; a deleted document shows up as an error with no Document.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		View:      c.view.Kind(),
		Documents: documentRows(c.store.List()),
	}
	switch v := c.view.(type) {
	case TemplateSelectorView:
		s.Templates = c.catalog.List()
	case DocumentFormView:
		if f, ok := c.Form(); ok {
			s.Form = &FormState{
				Template:    f.Template,
				Inputs:      f.Inputs,
				Generating:  f.Generating,
				FieldErrors: f.FieldErrors,
			}
		}
	case EditorView:
		s.DocumentID = v.DocumentID
		if doc, _, err := c.liveEditor(); err == nil {
			s.Document = &doc
			s.Editor = editorState(c.engine)
		}
	}
	s.Error = c.errMsg
	return s
}

func documentRows(docs []document.Document) []DocumentRow {
	rows := make([]DocumentRow, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, DocumentRow{Document: d, Excerpt: export.Excerpt(d.Content, excerptLimit)})
	}
	return rows
}

func editorState(e *editor.Engine) *EditorState {
	st := &EditorState{
		Mode:      e.Mode(),
		Phase:     e.Phase(),
		CanRefine: e.CanRefine(),
		Notice:    e.Notice(),
	}
	if sel, ok := e.Selection(); ok {
		st.Selection = &sel
	}
	if req, ok := e.Request(); ok {
		st.Request = &req
	}
	if rev, ok := e.Review(); ok {
		st.Review = &rev
	}
	if f, ok := e.Failed(); ok {
		st.Failed = &f
	}
	return st
}
