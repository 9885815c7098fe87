package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"aethelred/catalog"
	"aethelred/document"
	"aethelred/editor"
	"aethelred/export"
	"aethelred/generator"
	"aethelred/workspace"
)

// problem is an RFC 7807 problem details body.
type problem struct {
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Status      int               `json:"status"`
	Detail      string            `json:"detail,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondProblem(w, problem{Status: status, Detail: detail})
}

func respondProblem(w http.ResponseWriter, p problem) {
	p.Type = "about:blank"
	p.Title = http.StatusText(p.Status)
	payload, err := json.Marshal(p)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal server error"))
		return
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}

// fail maps err to a status and writes it as a problem.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	p := problem{Status: statusFor(err), Detail: err.Error()}

	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		p.FieldErrors = verr.Fields
		p.Detail = "required fields are missing"
	}
	var serr *generator.ServiceError
	if errors.As(err, &serr) {
		p.Detail = serr.Message
	}

	if p.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", p.Status, "error", err)
	}
	respondProblem(w, p)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errWorkspaceNotFound),
		errors.Is(err, catalog.ErrTemplateNotFound),
		errors.Is(err, workspace.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidInputs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, document.ErrInvalidStatus),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, generator.ErrUnknownStyle),
		errors.Is(err, editor.ErrSpanOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errNotConfirmed):
		return http.StatusPreconditionRequired
	case errors.Is(err, workspace.ErrGenerationInFlight),
		errors.Is(err, workspace.ErrStaleGeneration),
		errors.Is(err, workspace.ErrWrongView),
		errors.Is(err, editor.ErrRefineInFlight),
		errors.Is(err, editor.ErrStaleRequest),
		errors.Is(err, editor.ErrNotEditing),
		errors.Is(err, editor.ErrNoSelection),
		errors.Is(err, editor.ErrNoReview):
		return http.StatusConflict
	case errors.Is(err, generator.ErrGenerationFailed),
		errors.Is(err, generator.ErrRefineFailed):
		return http.StatusBadGateway
	case errors.Is(err, export.ErrPDFDependencyMissing):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
