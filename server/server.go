package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"aethelred/catalog"
	"aethelred/document"
	"aethelred/editor"
	"aethelred/export"
	"aethelred/workspace"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

//go:embed web/dist
var embeddedStatic embed.FS

var errWorkspaceNotFound = errors.New("workspace not found")

// Options wires the server to its collaborators. Catalog, Drafter and
// Refiner are required.
type Options struct {
	Catalog        *catalog.Catalog
	Drafter        workspace.Drafter
	Refiner        editor.Refiner
	Exporter       *export.Exporter
	Logger         *slog.Logger
	RequestTimeout time.Duration
	CORSOrigins    []string
	SeedExamples   bool
}

type Server struct {
	catalog    *catalog.Catalog
	drafter    workspace.Drafter
	refiner    editor.Refiner
	exporter   *export.Exporter
	logger     *slog.Logger
	timeout    time.Duration
	origins    []string
	seed       bool
	workspaces *workspaceStore
	staticFS   http.Handler
}

// session is one browser's workspace. Its controller is only touched with
// mu held; service calls run with mu released.
type session struct {
	mu  sync.Mutex
	ctl *workspace.Controller
}

type workspaceStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newStore() *workspaceStore {
	return &workspaceStore{sessions: make(map[string]*session)}
}

func (s *workspaceStore) set(id string, sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *workspaceStore) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, errors.New("template catalog required")
	}
	if opts.Drafter == nil || opts.Refiner == nil {
		return nil, errors.New("drafter and refiner required")
	}
	if opts.Exporter == nil {
		opts.Exporter = export.NewExporter()
	}
	if opts.Exporter.Renderer == nil {
		opts.Exporter.Renderer = export.NewRenderer()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}

	return &Server{
		catalog:    opts.Catalog,
		drafter:    opts.Drafter,
		refiner:    opts.Refiner,
		exporter:   opts.Exporter,
		logger:     opts.Logger,
		timeout:    opts.RequestTimeout,
		origins:    opts.CORSOrigins,
		seed:       opts.SeedExamples,
		workspaces: newStore(),
		staticFS:   http.FileServer(http.FS(sub)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/templates", s.handleTemplates)
	mux.HandleFunc("GET /api/styles", s.handleStyles)

	mux.HandleFunc("POST /api/workspaces", s.handleWorkspaceCreate)
	mux.HandleFunc("GET /api/workspaces/{id}", s.locked(s.handleWorkspaceGet))
	mux.HandleFunc("POST /api/workspaces/{id}/new", s.locked(s.handleNew))
	mux.HandleFunc("POST /api/workspaces/{id}/back", s.locked(s.handleBack))
	mux.HandleFunc("POST /api/workspaces/{id}/templates/{templateID}", s.locked(s.handleSelectTemplate))
	mux.HandleFunc("PUT /api/workspaces/{id}/form/inputs", s.locked(s.handleFormInputs))
	mux.HandleFunc("POST /api/workspaces/{id}/generate", s.handleGenerate)

	mux.HandleFunc("POST /api/workspaces/{id}/documents/{docID}/open", s.locked(s.handleOpenDocument))
	mux.HandleFunc("DELETE /api/workspaces/{id}/documents/{docID}", s.locked(s.handleDeleteDocument))
	mux.HandleFunc("PATCH /api/workspaces/{id}/documents/{docID}/status", s.locked(s.handleSetStatus))
	mux.HandleFunc("GET /api/workspaces/{id}/documents/{docID}/preview", s.locked(s.handlePreview))
	mux.HandleFunc("GET /api/workspaces/{id}/documents/{docID}/export", s.handleExport)

	mux.HandleFunc("POST /api/workspaces/{id}/editor/mode", s.locked(s.handleEditorMode))
	mux.HandleFunc("POST /api/workspaces/{id}/editor/selection", s.locked(s.handleSelection))
	mux.HandleFunc("DELETE /api/workspaces/{id}/editor/selection", s.locked(s.handleClearSelection))
	mux.HandleFunc("DELETE /api/workspaces/{id}/editor/notice", s.locked(s.handleDismissNotice))
	mux.HandleFunc("PUT /api/workspaces/{id}/editor/content", s.locked(s.handleContent))
	mux.HandleFunc("POST /api/workspaces/{id}/editor/refine", s.handleRefine)
	mux.HandleFunc("POST /api/workspaces/{id}/editor/refine/accept", s.locked(s.handleAccept))
	mux.HandleFunc("POST /api/workspaces/{id}/editor/refine/cancel", s.locked(s.handleCancel))

	mux.Handle("GET /", s.staticHandler())

	var handler http.Handler = mux
	if len(s.origins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
		}).Handler(handler)
	}
	return recovery(s.logger)(logMiddleware(s.logger)(handler))
}

func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			respondError(w, http.StatusNotFound, "no such endpoint")
			return
		}
		s.staticFS.ServeHTTP(w, r)
	})
}

// newWorkspace builds a controller over a fresh in-memory store. Deletion
// is confirmed by whatever the request put in its context.
func (s *Server) newWorkspace() (string, *session, error) {
	store := document.NewStore()
	if s.seed {
		for _, doc := range document.Examples() {
			if _, err := store.Create(doc); err != nil {
				return "", nil, err
			}
		}
	}
	ctl, err := workspace.New(workspace.Deps{
		Catalog:   s.catalog,
		Store:     store,
		Drafter:   s.drafter,
		Refiner:   s.refiner,
		Confirmer: workspace.ConfirmFunc(confirmedFrom),
		Logger:    s.logger,
	})
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	sess := &session{ctl: ctl}
	s.workspaces.set(id, sess)
	return id, sess, nil
}

func (s *Server) lookup(r *http.Request) (*session, error) {
	sess, ok := s.workspaces.get(r.PathValue("id"))
	if !ok {
		return nil, errWorkspaceNotFound
	}
	return sess, nil
}

// locked runs h with the workspace's lock held.
func (s *Server) locked(h func(w http.ResponseWriter, r *http.Request, ctl *workspace.Controller)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.lookup(r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		h(w, r, sess.ctl)
	}
}

type confirmKey struct{}

func withConfirmation(ctx context.Context, yes bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, yes)
}

func confirmedFrom(ctx context.Context, _ string) (bool, error) {
	yes, _ := ctx.Value(confirmKey{}).(bool)
	return yes, nil
}
