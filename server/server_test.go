package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aethelred/catalog"
	"aethelred/generator"
	"github.com/stretchr/testify/require"
)

type echoRefiner struct{ out string }

func (e echoRefiner) Refine(context.Context, string, generator.Style) (string, error) {
	return e.out, nil
}

type apiClient struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestServer(t *testing.T, seed bool) apiClient {
	t.Helper()
	agent, err := generator.NewAgent(generator.MockLLM{}, nil)
	require.NoError(t, err)
	srv, err := New(Options{
		Catalog:      catalog.Default(),
		Drafter:      agent,
		Refiner:      echoRefiner{out: "the party shall"},
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		SeedExamples: seed,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return apiClient{t: t, srv: ts}
}

func (c apiClient) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, rdr)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

// snap is the subset of the workspace response the tests read.
type snap struct {
	ID         string `json:"id"`
	View       string `json:"view"`
	Error      string `json:"error"`
	DocumentID string `json:"documentId"`
	Documents  []struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		Status     string `json:"status"`
		TemplateID string `json:"templateId"`
		Excerpt    string `json:"excerpt"`
	} `json:"documents"`
	Form *struct {
		Inputs map[string]string `json:"inputs"`
	} `json:"form"`
	Document *struct {
		ID      string `json:"id"`
		Content string `json:"content"`
		Status  string `json:"status"`
	} `json:"document"`
	Editor *struct {
		Mode      string `json:"mode"`
		Phase     string `json:"phase"`
		CanRefine bool   `json:"canRefine"`
		Notice    string `json:"notice"`
		Selection *struct {
			Text string `json:"text"`
		} `json:"selection"`
		Review *struct {
			Request struct {
				Original string `json:"original"`
				Result   string `json:"result"`
			} `json:"request"`
		} `json:"review"`
	} `json:"editor"`
}

func (c apiClient) expect(status int, method, path string, body any) snap {
	c.t.Helper()
	resp, data := c.do(method, path, body)
	require.Equal(c.t, status, resp.StatusCode, string(data))
	var s snap
	require.NoError(c.t, json.Unmarshal(data, &s))
	return s
}

var ndaInputs = map[string]string{
	"disclosingParty": "Acme",
	"receivingParty":  "Globex",
	"effectiveDate":   "2024-01-01",
	"purpose":         "party shall evaluate",
}

func TestHealthAndCatalog(t *testing.T) {
	c := newTestServer(t, false)
	resp, body := c.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = c.do(http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var templates []catalog.Template
	require.NoError(t, json.Unmarshal(body, &templates))
	require.Equal(t, "nda", templates[0].ID)

	resp, body = c.do(http.MethodGet, "/api/styles", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"id":"formal"`)
	require.NotContains(t, string(body), "Instruction")
}

func TestWorkspaceLifecycle(t *testing.T) {
	c := newTestServer(t, false)
	ws := c.expect(http.StatusCreated, http.MethodPost, "/api/workspaces", nil)
	require.NotEmpty(t, ws.ID)
	require.Equal(t, "dashboard", ws.View)
	base := "/api/workspaces/" + ws.ID

	require.Equal(t, "template_selector", c.expect(http.StatusOK, http.MethodPost, base+"/new", nil).View)
	require.Equal(t, "document_form", c.expect(http.StatusOK, http.MethodPost, base+"/templates/nda", nil).View)

	s := c.expect(http.StatusOK, http.MethodPost, base+"/generate", map[string]any{"inputs": ndaInputs})
	require.Equal(t, "editor", s.View)
	require.Len(t, s.Documents, 1)
	require.Equal(t, "Non-Disclosure Agreement between Acme and Globex", s.Documents[0].Title)
	require.Equal(t, "draft", s.Documents[0].Status)
	require.Equal(t, "nda", s.Documents[0].TemplateID)
	docID := s.DocumentID
	content := s.Document.Content

	s = c.expect(http.StatusOK, http.MethodPost, base+"/editor/mode", map[string]string{"mode": "editing"})
	require.Equal(t, "editing", s.Editor.Mode)

	start := len([]rune(content[:strings.Index(content, "party shall")]))
	s = c.expect(http.StatusOK, http.MethodPost, base+"/editor/selection", map[string]int{"start": start, "end": start + 11})
	require.True(t, s.Editor.CanRefine)

	s = c.expect(http.StatusOK, http.MethodPost, base+"/editor/refine", map[string]string{"style": "formal"})
	require.Equal(t, "review_ready", s.Editor.Phase)
	require.Equal(t, "party shall", s.Editor.Review.Request.Original)

	s = c.expect(http.StatusOK, http.MethodPost, base+"/editor/refine/accept", nil)
	require.Equal(t, "idle", s.Editor.Phase)
	require.Equal(t, strings.Replace(content, "party shall", "the party shall", 1), s.Document.Content)

	s = c.expect(http.StatusOK, http.MethodPatch, base+"/documents/"+docID+"/status", map[string]string{"status": "final"})
	require.Equal(t, "final", s.Document.Status)

	resp, body := c.do(http.MethodGet, base+"/documents/"+docID+"/preview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "<h2>")

	resp, body = c.do(http.MethodGet, base+"/documents/"+docID+"/export?format=md", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	require.Contains(t, string(body), "the party shall")

	resp, _ = c.do(http.MethodDelete, base+"/documents/"+docID, nil)
	require.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)

	s = c.expect(http.StatusOK, http.MethodDelete, base+"/documents/"+docID+"?confirm=true", nil)
	require.Equal(t, "dashboard", s.View)
	require.Empty(t, s.Documents)
}

func TestEditInvalidatesReviewOverHTTP(t *testing.T) {
	c := newTestServer(t, true)
	ws := c.expect(http.StatusCreated, http.MethodPost, "/api/workspaces", nil)
	require.Len(t, ws.Documents, 2)
	base := "/api/workspaces/" + ws.ID
	docID := ws.Documents[0].ID

	s := c.expect(http.StatusOK, http.MethodPost, base+"/documents/"+docID+"/open", nil)
	c.expect(http.StatusOK, http.MethodPost, base+"/editor/mode", map[string]string{"mode": "edit"})
	c.expect(http.StatusOK, http.MethodPost, base+"/editor/selection", map[string]int{"start": 0, "end": 5})
	c.expect(http.StatusOK, http.MethodPost, base+"/editor/refine", map[string]string{"style": "concise"})

	edited := s.Document.Content + "\nA new clause."
	s = c.expect(http.StatusOK, http.MethodPut, base+"/editor/content", map[string]string{"content": edited})
	require.Equal(t, "idle", s.Editor.Phase)

	resp, _ := c.do(http.MethodPost, base+"/editor/refine/accept", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	s = c.expect(http.StatusOK, http.MethodGet, base, nil)
	require.Equal(t, edited, s.Document.Content)
}

func TestFormInputsAndEditorHousekeeping(t *testing.T) {
	c := newTestServer(t, true)
	ws := c.expect(http.StatusCreated, http.MethodPost, "/api/workspaces", nil)
	require.True(t, strings.HasPrefix(ws.Documents[1].Excerpt, "## MUTUAL NON-DISCLOSURE AGREEMENT This agreement"))
	base := "/api/workspaces/" + ws.ID

	resp, _ := c.do(http.MethodPut, base+"/form/inputs", map[string]any{"inputs": map[string]string{"purpose": "x"}})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	c.expect(http.StatusOK, http.MethodPost, base+"/templates/nda", nil)
	s := c.expect(http.StatusOK, http.MethodPut, base+"/form/inputs", map[string]any{"inputs": map[string]string{"disclosingParty": "Acme"}})
	require.Equal(t, "Acme", s.Form.Inputs["disclosingParty"])
	s = c.expect(http.StatusOK, http.MethodPost, base+"/generate", map[string]any{"inputs": map[string]string{
		"receivingParty": "Globex",
		"effectiveDate":  "2024-01-01",
		"purpose":        "evaluation",
	}})
	require.Equal(t, "editor", s.View)

	c.expect(http.StatusOK, http.MethodPost, base+"/editor/mode", map[string]string{"mode": "editing"})
	s = c.expect(http.StatusOK, http.MethodPost, base+"/editor/selection", map[string]int{"start": 0, "end": 2})
	require.NotNil(t, s.Editor.Selection)
	s = c.expect(http.StatusOK, http.MethodDelete, base+"/editor/selection", nil)
	require.Nil(t, s.Editor.Selection)
	require.False(t, s.Editor.CanRefine)

	c.expect(http.StatusOK, http.MethodPost, base+"/editor/selection", map[string]int{"start": 0, "end": 2})
	c.expect(http.StatusOK, http.MethodPost, base+"/editor/refine", map[string]string{"style": "formal"})
	s = c.expect(http.StatusOK, http.MethodPut, base+"/editor/content", map[string]string{"content": "changed"})
	require.NotEmpty(t, s.Editor.Notice)
	s = c.expect(http.StatusOK, http.MethodDelete, base+"/editor/notice", nil)
	require.Empty(t, s.Editor.Notice)
}

func TestProblemResponses(t *testing.T) {
	c := newTestServer(t, false)
	resp, body := c.do(http.MethodGet, "/api/workspaces/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	var p problem
	require.NoError(t, json.Unmarshal(body, &p))
	require.Equal(t, http.StatusNotFound, p.Status)
	require.Equal(t, "Not Found", p.Title)

	ws := c.expect(http.StatusCreated, http.MethodPost, "/api/workspaces", nil)
	base := "/api/workspaces/" + ws.ID

	resp, _ = c.do(http.MethodPost, base+"/templates/lease", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	c.expect(http.StatusOK, http.MethodPost, base+"/templates/nda", nil)
	resp, body = c.do(http.MethodPost, base+"/generate", map[string]any{"inputs": map[string]string{"disclosingParty": "Acme"}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &p))
	require.Contains(t, p.FieldErrors, "receivingParty")

	s := c.expect(http.StatusOK, http.MethodGet, base, nil)
	require.Equal(t, "document_form", s.View)

	resp, _ = c.do(http.MethodPost, base+"/generate", "not an object")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = c.do(http.MethodPost, base+"/editor/mode", map[string]string{"mode": "editing"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = c.do(http.MethodGet, "/api/unknown", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStaticIndex(t *testing.T) {
	c := newTestServer(t, false)
	resp, body := c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "<title>Aethelred")
}
