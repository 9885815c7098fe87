package editor

// Effect is a side effect requested by a transition. The engine never
// persists or calls services itself.
type Effect interface {
	effect()
}

// CommitContent asks the caller to persist the new document content.
type CommitContent struct {
	Content string
}

// InvokeRefine asks the caller to send Request to the refinement service and
// report back through CompleteRefine.
type InvokeRefine struct {
	Request RefineRequest
}

// ShowNotice asks the caller to surface a message to the user.
type ShowNotice struct {
	Message string
}

// DiscardResult reports that a request was dropped. Any answer still in
// flight for it will be ignored.
type DiscardResult struct {
	RequestID uint64
	Reason    string
}

func (CommitContent) effect() {}
func (InvokeRefine) effect()  {}
func (ShowNotice) effect()    {}
func (DiscardResult) effect() {}

// Commits returns the last content commit among effects.
func Commits(effects []Effect) (string, bool) {
	content, ok := "", false
	for _, eff := range effects {
		if c, is := eff.(CommitContent); is {
			content, ok = c.Content, true
		}
	}
	return content, ok
}
