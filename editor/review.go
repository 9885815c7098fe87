package editor

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffOp labels a chunk of the original/result comparison.
type DiffOp string

const (
	DiffEqual  DiffOp = "equal"
	DiffInsert DiffOp = "insert"
	DiffDelete DiffOp = "delete"
)

// DiffChunk is one run of the word-level comparison shown during review.
type DiffChunk struct {
	Op   DiffOp `json:"op"`
	Text string `json:"text"`
}

// Review is a successful refinement waiting for the user to accept or
// cancel it.
type Review struct {
	Request RefineRequest `json:"request"`
	Diff    []DiffChunk   `json:"diff"`
}

func newReview(req RefineRequest) *Review {
	return &Review{Request: req, Diff: diffText(req.Original, req.Result)}
}

func diffText(original, result string) []DiffChunk {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, result, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]DiffChunk, 0, len(diffs))
	for _, d := range diffs {
		op := DiffEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = DiffInsert
		case diffmatchpatch.DiffDelete:
			op = DiffDelete
		}
		chunks = append(chunks, DiffChunk{Op: op, Text: d.Text})
	}
	return chunks
}
