package document_test

import (
	"strings"
	"testing"
	"time"

	"aethelred/document"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestStore_CreateFillsDefaults(t *testing.T) {
	clock := newClock()
	store := document.NewStore(document.WithClock(clock.Now))

	doc, err := store.Create(document.Document{Title: "NDA", Content: "## NDA", TemplateID: "nda"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(doc.ID, "doc-"))
	require.Equal(t, document.StatusDraft, doc.Status)
	require.Equal(t, clock.t, doc.CreatedAt)
	require.Equal(t, clock.t, doc.UpdatedAt)

	_, err = store.Create(document.Document{ID: doc.ID, Title: "again"})
	require.ErrorIs(t, err, document.ErrDuplicateID)

	_, err = store.Create(document.Document{Status: "published"})
	require.ErrorIs(t, err, document.ErrInvalidStatus)
	require.Equal(t, 1, store.Len())
}

func TestStore_ListNewestFirst(t *testing.T) {
	clock := newClock()
	store := document.NewStore(document.WithClock(clock.Now))
	for _, ex := range document.Examples() {
		_, err := store.Create(ex)
		require.NoError(t, err)
	}

	a, err := store.Create(document.Document{Title: "A"})
	require.NoError(t, err)
	b, err := store.Create(document.Document{Title: "B"}) // same instant as A
	require.NoError(t, err)
	clock.Advance(time.Minute)
	c, err := store.Create(document.Document{Title: "C"})
	require.NoError(t, err)

	var ids []string
	for _, d := range store.List() {
		ids = append(ids, d.ID)
	}
	require.Equal(t, []string{c.ID, b.ID, a.ID, "doc-2", "doc-1"}, ids)
}

func TestStore_UpdatedAtMonotonic(t *testing.T) {
	clock := newClock()
	store := document.NewStore(document.WithClock(clock.Now))
	doc, err := store.Create(document.Document{Content: "one"})
	require.NoError(t, err)

	prev := doc.UpdatedAt
	// Clock frozen: each real mutation still moves UpdatedAt forward.
	for _, content := range []string{"two", "three", "four"} {
		updated, err := store.UpdateContent(doc.ID, content)
		require.NoError(t, err)
		require.True(t, updated.UpdatedAt.After(prev))
		require.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
		prev = updated.UpdatedAt
	}

	// Clock moving backwards never moves UpdatedAt backwards.
	clock.Advance(-time.Hour)
	updated, err := store.UpdateContent(doc.ID, "five")
	require.NoError(t, err)
	require.True(t, updated.UpdatedAt.After(prev))
	prev = updated.UpdatedAt

	// Unchanged content is a no-op.
	same, err := store.UpdateContent(doc.ID, "five")
	require.NoError(t, err)
	require.Equal(t, prev, same.UpdatedAt)

	clock.Advance(2 * time.Hour)
	updated, err = store.UpdateContent(doc.ID, "six")
	require.NoError(t, err)
	require.Equal(t, clock.t, updated.UpdatedAt)
}

func TestStore_UpdateLeavesOtherFields(t *testing.T) {
	clock := newClock()
	store := document.NewStore(document.WithClock(clock.Now))
	doc, err := store.Create(document.Document{Title: "T", Content: "c", TemplateID: "nda", Status: document.StatusInReview})
	require.NoError(t, err)

	clock.Advance(time.Second)
	updated, err := store.Update(doc.ID, func(d *document.Document) {
		d.Content = "new"
		d.ID = "hijack"
		d.TemplateID = "other"
		d.Status = document.StatusFinal
		d.CreatedAt = time.Time{}
	})
	require.NoError(t, err)
	require.Equal(t, doc.ID, updated.ID)
	require.Equal(t, "new", updated.Content)
	require.Equal(t, "nda", updated.TemplateID)
	require.Equal(t, document.StatusInReview, updated.Status)
	require.Equal(t, doc.CreatedAt, updated.CreatedAt)

	_, err = store.Get("hijack")
	require.ErrorIs(t, err, document.ErrNotFound)
}

func TestStore_MissingDocument(t *testing.T) {
	store := document.NewStore()
	_, err := store.UpdateContent("nope", "x")
	require.ErrorIs(t, err, document.ErrNotFound)
	_, err = store.SetStatus("nope", document.StatusFinal)
	require.ErrorIs(t, err, document.ErrNotFound)
	require.ErrorIs(t, store.Delete("nope"), document.ErrNotFound)
}

func TestStore_SetStatusAndDelete(t *testing.T) {
	clock := newClock()
	store := document.NewStore(document.WithClock(clock.Now))
	doc, err := store.Create(document.Document{Title: "T"})
	require.NoError(t, err)

	_, err = store.SetStatus(doc.ID, "shredded")
	require.ErrorIs(t, err, document.ErrInvalidStatus)

	final, err := store.SetStatus(doc.ID, document.StatusFinal)
	require.NoError(t, err)
	require.Equal(t, document.StatusFinal, final.Status)
	require.True(t, final.UpdatedAt.After(doc.UpdatedAt))

	require.NoError(t, store.Delete(doc.ID))
	require.Empty(t, store.List())
	_, err = store.Get(doc.ID)
	require.ErrorIs(t, err, document.ErrNotFound)
}

func TestParseStatus(t *testing.T) {
	st, err := document.ParseStatus("in_review")
	require.NoError(t, err)
	require.Equal(t, document.StatusInReview, st)

	_, err = document.ParseStatus("")
	require.ErrorIs(t, err, document.ErrInvalidStatus)
}
