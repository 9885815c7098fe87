package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"aethelred/document"
	"aethelred/editor"
	"aethelred/export"
	"aethelred/generator"
	"aethelred/workspace"
)

var (
	errBadRequest   = errors.New("bad request")
	errNotConfirmed = errors.New("deletion must be confirmed with confirm=true")
)

type workspaceResp struct {
	ID string `json:"id"`
	workspace.Snapshot
}

type generateReq struct {
	Inputs map[string]string `json:"inputs"`
}

type statusReq struct {
	Status string `json:"status"`
}

type modeReq struct {
	Mode string `json:"mode"`
}

type selectionReq struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type contentReq struct {
	Content string `json:"content"`
}

type refineReq struct {
	Style string `json:"style"`
}

type previewResp struct {
	DocumentID string `json:"documentId"`
	HTML       string `json:"html"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) respondSnapshot(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	writeJSON(w, http.StatusOK, workspaceResp{ID: r.PathValue("id"), Snapshot: ctl.Snapshot()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.List())
}

func (s *Server) handleStyles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, generator.Styles())
}

func (s *Server) handleWorkspaceCreate(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.newWorkspace()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess.mu.Lock()
	snap := sess.ctl.Snapshot()
	sess.mu.Unlock()
	s.logger.Info("workspace created", "workspace", id)
	writeJSON(w, http.StatusCreated, workspaceResp{ID: id, Snapshot: snap})
}

func (s *Server) handleWorkspaceGet(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	ctl.CreateNew()
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	ctl.Back()
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	if err := ctl.SelectTemplate(r.PathValue("templateID")); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleFormInputs(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	var req generateReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := ctl.SetInputs(req.Inputs); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

// handleGenerate holds the workspace lock only around Begin and Complete so
// the workspace stays readable while the model is drafting.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req generateReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess.mu.Lock()
	ticket, err := sess.ctl.BeginGenerate(req.Inputs)
	sess.mu.Unlock()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	draft, genErr := s.drafter.Generate(ctx, ticket.Template, ticket.Inputs)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, err := sess.ctl.CompleteGenerate(ticket, draft, genErr); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, sess.ctl)
}

func (s *Server) handleOpenDocument(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	if err := ctl.SelectDocument(r.PathValue("docID")); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	yes, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	deleted, err := ctl.DeleteDocument(withConfirmation(r.Context(), yes), r.PathValue("docID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !deleted {
		s.fail(w, r, errNotConfirmed)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	var req statusReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	status, err := document.ParseStatus(req.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := ctl.SetStatus(r.PathValue("docID"), status); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	doc, err := ctl.Store().Get(r.PathValue("docID"))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", workspace.ErrDocumentNotFound, err))
		return
	}
	html, err := s.exporter.Renderer.HTML(doc.Content)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResp{DocumentID: doc.ID, HTML: html})
}

// handleExport copies the document under the lock and renders without it;
// PDF export starts a browser.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess.mu.Lock()
	doc, err := sess.ctl.Store().Get(r.PathValue("docID"))
	sess.mu.Unlock()
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", workspace.ErrDocumentNotFound, err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := s.exporter.Export(ctx, doc, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (s *Server) handleEditorMode(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	var req modeReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	mode, err := editor.ParseMode(req.Mode)
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := ctl.SetEditorMode(mode); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	var req selectionReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := ctl.Select(req.Start, req.End); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	if err := ctl.ClearSelection(); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	if err := ctl.DismissNotice(); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	var req contentReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := ctl.EditContent(req.Content); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

// handleRefine mirrors handleGenerate: the refine call runs unlocked and its
// answer is dropped if the workspace moved on meanwhile.
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookup(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req refineReq
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess.mu.Lock()
	ticket, err := sess.ctl.BeginRefine(req.Style)
	sess.mu.Unlock()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	result, refineErr := s.refiner.Refine(ctx, ticket.Text, ticket.Style)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.ctl.CompleteRefine(ticket, result, refineErr); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, sess.ctl)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	if err := ctl.AcceptRefine(); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller) {
	if err := ctl.CancelRefine(); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respondSnapshot(w, r, ctl)
}
