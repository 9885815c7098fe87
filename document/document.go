package document

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates the document doesn't exist in the store.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateID indicates a create with an id already in use.
	ErrDuplicateID = errors.New("document id already exists")
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("invalid document status")
)

// Status is the review state of a document.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusInReview Status = "in_review"
	StatusFinal    Status = "final"
	StatusArchived Status = "archived"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusDraft, StatusInReview, StatusFinal, StatusArchived}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Document is a drafted document held in memory.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	TemplateID string    `json:"templateId"`
}

// Examples returns the documents a fresh workspace can be seeded with.
func Examples() []Document {
	return []Document{
		{
			ID:         "doc-1",
			Title:      "NDA between Stark Industries and Wayne Enterprises",
			Content:    "## MUTUAL NON-DISCLOSURE AGREEMENT\n\nThis agreement is made on **October 26, 2023** between **Stark Industries** and **Wayne Enterprises**.\n\n### 1. Purpose\n\nThe parties wish to explore a potential business relationship...",
			Status:     StatusInReview,
			CreatedAt:  time.Date(2023, 10, 26, 10, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2023, 10, 26, 10, 0, 0, 0, time.UTC),
			TemplateID: "nda",
		},
		{
			ID:         "doc-2",
			Title:      "Consulting Agreement for Diana Prince",
			Content:    "## CONSULTING SERVICES AGREEMENT\n\nThis agreement outlines the consulting services to be provided by **Diana Prince** to **ARGUS**.\n\n### Scope of Work\n\n- Provide expertise on ancient artifacts.\n- Assist in threat assessment.",
			Status:     StatusDraft,
			CreatedAt:  time.Date(2023, 11, 15, 9, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2023, 11, 16, 9, 0, 0, 0, time.UTC),
			TemplateID: "consulting",
		},
	}
}
