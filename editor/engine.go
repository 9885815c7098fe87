// Package editor holds the document editor's state machine: viewing versus
// editing, selection tracking, and the refine workflow that rewrites one
// selected span at a time and splices the accepted result back at the
// offsets captured when the request was made.
//
// Offsets are Unicode code point offsets into the content. Transitions return
// the side effects the caller must carry out (persist content, call the
// refinement service, show a message) instead of performing them.
package editor

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"aethelred/generator"
)

var (
	ErrNotEditing     = errors.New("editor is not in editing mode")
	ErrNoSelection    = errors.New("no text selected")
	ErrRefineInFlight = errors.New("a refinement is already in progress")
	ErrNoReview       = errors.New("no refinement is ready for review")
	ErrStaleRequest   = errors.New("refinement no longer applies to the document")
	ErrSpanOutOfRange = errors.New("selection is outside the document")
)

const staleNotice = "The document changed while a refinement was pending, so the suggestion was discarded."

// Refiner is the refinement service boundary.
type Refiner interface {
	Refine(ctx context.Context, text string, style generator.Style) (string, error)
}

// Mode is the editor's display mode.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "viewing"
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseMode accepts "viewing"/"preview" and "editing"/"edit".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "viewing", "view", "preview":
		return ModeViewing, nil
	case "editing", "edit":
		return ModeEditing, nil
	}
	return ModeViewing, errors.New("unknown editor mode: " + s)
}

// Phase is the refine sub-state while editing.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRequesting
	PhaseReviewReady
)

func (p Phase) String() string {
	switch p {
	case PhaseRequesting:
		return "requesting"
	case PhaseReviewReady:
		return "review_ready"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Span is a half-open [Start, End) range of code points.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Span) Len() int { return s.End - s.Start }

// Selection is a non-empty span together with the text it covered when made.
type Selection struct {
	Span
	Text string `json:"text"`
}

// RequestStatus tracks a refine request's outcome.
type RequestStatus int

const (
	RequestPending RequestStatus = iota
	RequestSucceeded
	RequestFailed
)

func (s RequestStatus) String() string {
	switch s {
	case RequestSucceeded:
		return "succeeded"
	case RequestFailed:
		return "failed"
	default:
		return "pending"
	}
}

func (s RequestStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// RefineRequest is one rewrite of a captured span. Span and Original are the
// splice target, fixed at request time.
type RefineRequest struct {
	ID       uint64          `json:"id"`
	Style    generator.Style `json:"style"`
	Span     Span            `json:"span"`
	Original string          `json:"original"`
	Status   RequestStatus   `json:"status"`
	Result   string          `json:"result,omitempty"`
	Err      string          `json:"error,omitempty"`
}

// Engine is the editor state for one open document. It is not safe for
// concurrent use; callers serialize access.
type Engine struct {
	content   string
	mode      Mode
	selection *Selection
	request   *RefineRequest
	review    *Review
	failed    *RefineRequest
	notice    string
	nextID    func() uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithRequestIDs sets the source of refine request ids. Sharing one source
// across engines keeps ids unique for the life of a workspace.
func WithRequestIDs(next func() uint64) Option {
	return func(e *Engine) {
		if next != nil {
			e.nextID = next
		}
	}
}

// New opens content in viewing mode.
func New(content string, opts ...Option) *Engine {
	var seq uint64
	e := &Engine{
		content: content,
		nextID: func() uint64 {
			seq++
			return seq
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Content() string { return e.content }
func (e *Engine) Mode() Mode      { return e.mode }
func (e *Engine) Notice() string  { return e.notice }

// ClearNotice dismisses the current message.
func (e *Engine) ClearNotice() { e.notice = "" }

func (e *Engine) Phase() Phase {
	switch {
	case e.review != nil:
		return PhaseReviewReady
	case e.request != nil:
		return PhaseRequesting
	default:
		return PhaseIdle
	}
}

// Selection returns the current selection, if any.
func (e *Engine) Selection() (Selection, bool) {
	if e.selection == nil {
		return Selection{}, false
	}
	return *e.selection, true
}

// Request returns the in-flight or under-review request, if any.
func (e *Engine) Request() (RefineRequest, bool) {
	if e.request == nil {
		return RefineRequest{}, false
	}
	return *e.request, true
}

// Review returns the result awaiting accept or cancel, if any.
func (e *Engine) Review() (Review, bool) {
	if e.review == nil {
		return Review{}, false
	}
	return *e.review, true
}

// Failed returns the most recent request that failed, until the next one
// starts.
func (e *Engine) Failed() (RefineRequest, bool) {
	if e.failed == nil {
		return RefineRequest{}, false
	}
	return *e.failed, true
}

// CanRefine reports whether the refine action is available.
func (e *Engine) CanRefine() bool {
	return e.mode == ModeEditing && e.selection != nil && e.request == nil
}

// SetMode switches between viewing and editing. Leaving editing drops the
// selection and discards any pending or reviewed refinement.
func (e *Engine) SetMode(m Mode) []Effect {
	if m == e.mode {
		return nil
	}
	e.mode = m
	e.selection = nil
	if m == ModeViewing {
		return e.discard("editing mode closed")
	}
	return nil
}

// Select records the current selection. A zero-length selection clears it
// but leaves any refinement in flight alone.
func (e *Engine) Select(start, end int) error {
	if e.mode != ModeEditing {
		return ErrNotEditing
	}
	if start > end {
		start, end = end, start
	}
	bs, be, ok := byteSpan(e.content, start, end)
	if !ok {
		return ErrSpanOutOfRange
	}
	if start == end {
		e.selection = nil
		return nil
	}
	e.selection = &Selection{Span: Span{Start: start, End: end}, Text: e.content[bs:be]}
	return nil
}

// ClearSelection forgets the selection.
func (e *Engine) ClearSelection() { e.selection = nil }

// Edit replaces the content with what the user typed. A pending or reviewed
// refinement is discarded: its captured offsets no longer describe the text.
func (e *Engine) Edit(content string) ([]Effect, error) {
	if e.mode != ModeEditing {
		return nil, ErrNotEditing
	}
	if content == e.content {
		return nil, nil
	}
	e.content = content
	e.selection = nil
	effects := e.invalidate()
	return append(effects, CommitContent{Content: content}), nil
}

// Reload replaces the content after a change made outside the editor. It
// invalidates like Edit but produces no commit.
func (e *Engine) Reload(content string) []Effect {
	if content == e.content {
		return nil
	}
	e.content = content
	e.selection = nil
	return e.invalidate()
}

// BeginRefine captures the selection and style into a pending request. The
// returned effect carries the request the caller must send to the service.
func (e *Engine) BeginRefine(style generator.Style) (InvokeRefine, error) {
	if e.mode != ModeEditing {
		return InvokeRefine{}, ErrNotEditing
	}
	if e.request != nil {
		return InvokeRefine{}, ErrRefineInFlight
	}
	if e.selection == nil {
		return InvokeRefine{}, ErrNoSelection
	}
	req := RefineRequest{
		ID:       e.nextID(),
		Style:    style,
		Span:     e.selection.Span,
		Original: e.selection.Text,
		Status:   RequestPending,
	}
	e.request = &req
	e.failed = nil
	e.notice = ""
	return InvokeRefine{Request: req}, nil
}

// CompleteRefine delivers the service's answer for request id. Answers for
// requests that are no longer current return ErrStaleRequest and change
// nothing. A failure surfaces its message and returns to idle.
func (e *Engine) CompleteRefine(id uint64, result string, err error) ([]Effect, error) {
	if e.request == nil || e.request.ID != id || e.request.Status != RequestPending {
		return nil, ErrStaleRequest
	}
	if err == nil && strings.TrimSpace(result) == "" {
		err = errors.New("the refinement came back empty")
	}
	if err != nil {
		msg := generator.UserMessage(err)
		failed := *e.request
		failed.Status = RequestFailed
		failed.Err = msg
		e.failed = &failed
		e.request = nil
		e.selection = nil
		e.notice = msg
		return []Effect{ShowNotice{Message: msg}}, nil
	}

	e.request.Status = RequestSucceeded
	e.request.Result = result
	e.review = newReview(*e.request)
	e.selection = nil
	return nil, nil
}

// Accept splices the reviewed result over the captured span and returns to
// idle. If the span no longer holds the original text the result is
// discarded instead.
func (e *Engine) Accept() ([]Effect, error) {
	if e.review == nil {
		return nil, ErrNoReview
	}
	req := e.review.Request
	bs, be, ok := byteSpan(e.content, req.Span.Start, req.Span.End)
	if !ok || e.content[bs:be] != req.Original {
		effects := e.discard("captured span changed")
		e.notice = staleNotice
		return append(effects, ShowNotice{Message: staleNotice}), ErrStaleRequest
	}

	content := e.content[:bs] + req.Result + e.content[be:]
	e.content = content
	e.request = nil
	e.review = nil
	e.selection = nil
	return []Effect{CommitContent{Content: content}}, nil
}

// Cancel drops a pending or reviewed refinement without touching content.
func (e *Engine) Cancel() []Effect {
	return e.discard("cancelled")
}

// Refine runs a whole refine round trip against svc. Callers that must not
// hold a lock during the service call use BeginRefine and CompleteRefine.
func (e *Engine) Refine(ctx context.Context, svc Refiner, style generator.Style) ([]Effect, error) {
	invoke, err := e.BeginRefine(style)
	if err != nil {
		return nil, err
	}
	result, callErr := svc.Refine(ctx, invoke.Request.Original, invoke.Request.Style)
	return e.CompleteRefine(invoke.Request.ID, result, callErr)
}

func (e *Engine) discard(reason string) []Effect {
	e.failed = nil
	if e.request == nil {
		return nil
	}
	id := e.request.ID
	e.request = nil
	e.review = nil
	return []Effect{DiscardResult{RequestID: id, Reason: reason}}
}

func (e *Engine) invalidate() []Effect {
	effects := e.discard("document edited")
	if len(effects) == 0 {
		return nil
	}
	e.notice = staleNotice
	return append(effects, ShowNotice{Message: staleNotice})
}

// byteSpan maps a code point span of s to byte offsets. Invalid bytes count
// as one code point each and are never rewritten.
func byteSpan(s string, start, end int) (int, int, bool) {
	if start < 0 || start > end {
		return 0, 0, false
	}
	bs, be := -1, -1
	n, i := 0, 0
	for {
		if n == start {
			bs = i
		}
		if n == end {
			be = i
			break
		}
		if i >= len(s) {
			break
		}
		_, w := utf8.DecodeRuneInString(s[i:])
		i += w
		n++
	}
	if bs < 0 || be < 0 {
		return 0, 0, false
	}
	return bs, be, true
}
