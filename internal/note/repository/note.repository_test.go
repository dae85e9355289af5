package repository

import (
	"fmt"
	"testing"
	"time"

	"ruzznotes/internal/note/model"
	"ruzznotes/pkg/idgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(subject string, status model.Status) model.Fields {
	return model.Fields{Subject: subject, Content: subject + " content", Status: status}
}

// fixedClock never advances.
func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestCreatePrependsAndAssignsIdentity(t *testing.T) {
	repo := NewNoteRepository(WithClock(fixedClock()))

	a := repo.Create(fields("Alpha", model.StatusPending))
	b := repo.Create(fields("Beta", model.StatusCompleted))

	all := repo.All()
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "newest note must be first")
	assert.Equal(t, a.ID, all[1].ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, b.Timestamp.After(a.Timestamp), "timestamps must strictly increase even with a stalled clock")
}

func TestCreateDropsBlankLinksAndImages(t *testing.T) {
	repo := NewNoteRepository()
	f := fields("Links", model.StatusPending)
	f.Output = model.Output{Links: []string{"", "https://go.dev", " "}, Images: []string{""}}

	n := repo.Create(f)
	assert.Equal(t, []string{"https://go.dev"}, n.Output.Links)
	assert.Empty(t, n.Output.Images)
}

func TestCreateRegeneratesCollidingIDs(t *testing.T) {
	repo := NewNoteRepository(WithIDGenerator(idgen.Sequence("same")))

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		n := repo.Create(fields(fmt.Sprintf("n%d", i), model.StatusPending))
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
	assert.Equal(t, 5, repo.Len())
}

func TestUpdateReplacesRecordButKeepsTimestamp(t *testing.T) {
	repo := NewNoteRepository()
	a := repo.Create(fields("Alpha", model.StatusPending))
	repo.Create(fields("Beta", model.StatusPending))

	edited := a
	edited.Status = model.StatusInProgress
	edited.Subject = "Alpha 2"
	edited.Timestamp = time.Time{}

	assert.True(t, repo.Update(edited))

	got, ok := repo.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "Alpha 2", got.Subject)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, a.Timestamp, got.Timestamp)
	assert.Equal(t, a.ID, repo.All()[1].ID, "update must not reorder")
}

// Unmatched ids are a silent no-op; no record is appended.
func TestUpdateUnknownIDIsNoOp(t *testing.T) {
	repo := NewNoteRepository()
	repo.Create(fields("Alpha", model.StatusPending))
	before, version := repo.Snapshot()

	ok := repo.Update(model.Note{ID: "missing", Subject: "Ghost", Content: "x", Status: model.StatusPending})

	assert.False(t, ok)
	after, afterVersion := repo.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, version, afterVersion)
}

func TestDelete(t *testing.T) {
	repo := NewNoteRepository()
	a := repo.Create(fields("Alpha", model.StatusPending))
	b := repo.Create(fields("Beta", model.StatusCompleted))

	assert.True(t, repo.Delete(b.ID))
	assert.False(t, repo.Delete(b.ID))

	all := repo.All()
	require.Len(t, all, 1)
	assert.Equal(t, a.ID, all[0].ID)
}

func TestAllSnapshotIsNotModifiedByLaterMutations(t *testing.T) {
	repo := NewNoteRepository()
	a := repo.Create(fields("Alpha", model.StatusPending))
	snapshot := repo.All()

	repo.Create(fields("Beta", model.StatusPending))
	edited := a
	edited.Subject = "changed"
	repo.Update(edited)
	repo.Delete(a.ID)

	require.Len(t, snapshot, 1)
	assert.Equal(t, "Alpha", snapshot[0].Subject)
}

func TestGetReturnsCopy(t *testing.T) {
	repo := NewNoteRepository()
	f := fields("Alpha", model.StatusPending)
	f.Output.Links = []string{"https://a.example"}
	a := repo.Create(f)

	got, _ := repo.Get(a.ID)
	got.Output.Links[0] = "mutated"

	again, _ := repo.Get(a.ID)
	assert.Equal(t, "https://a.example", again.Output.Links[0])
}

func TestIDsStayUniqueAcrossMixedOperations(t *testing.T) {
	repo := NewNoteRepository(WithIDGenerator(idgen.NanoID(2)))
	for i := 0; i < 200; i++ {
		n := repo.Create(fields(fmt.Sprintf("n%d", i), model.StatusPending))
		if i%3 == 0 {
			repo.Delete(n.ID)
		}
		if i%5 == 0 {
			n.Subject = "edited"
			repo.Update(n)
		}
	}

	seen := make(map[string]bool)
	for _, n := range repo.All() {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}
