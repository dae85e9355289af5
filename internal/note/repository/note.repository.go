package repository

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"ruzznotes/internal/note/model"
	"ruzznotes/pkg/idgen"
	"ruzznotes/pkg/logger"
)

const maxIDAttempts = 8

// NoteRepository is the ordered in-memory note collection. Every mutation
// swaps in a new slice, so a slice returned by All is never modified later.
type NoteRepository struct {
	mu      sync.RWMutex
	notes   []model.Note
	version uint64
	last    time.Time

	newID idgen.Generator
	now   func() time.Time
}

type Option func(*NoteRepository)

func WithIDGenerator(gen idgen.Generator) Option {
	return func(r *NoteRepository) { r.newID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(r *NoteRepository) { r.now = now }
}

func NewNoteRepository(opts ...Option) *NoteRepository {
	r := &NoteRepository{
		notes: []model.Note{},
		newID: idgen.Default,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create assigns an id and timestamp and puts the note at the head of the list.
func (r *NoteRepository) Create(f model.Fields) model.Note {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for attempt := 1; r.indexOf(id) >= 0; attempt++ {
		logger.Sugar.Warnf("Note ID collision on %s, regenerating", id)
		if attempt < maxIDAttempts {
			id = r.newID()
		} else {
			id = fmt.Sprintf("%s-%d", r.newID(), attempt)
		}
	}

	ts := r.now()
	if !ts.After(r.last) {
		ts = r.last.Add(time.Nanosecond)
	}
	r.last = ts

	f.Output = f.Output.Compact()
	note := f.Apply(id, ts)

	next := make([]model.Note, 0, len(r.notes)+1)
	next = append(next, note)
	next = append(next, r.notes...)
	r.notes = next
	r.version++

	logger.Sugar.Debugf("Created note %s", id)
	return note.Clone()
}

// Update replaces the note with the same id. The stored timestamp is kept.
// An unknown id leaves the collection unchanged and returns false.
func (r *NoteRepository) Update(n model.Note) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(n.ID)
	if i < 0 {
		logger.Sugar.Infof("Update ignored: note %s not found", n.ID)
		return false
	}

	n = n.Clone()
	n.Output = n.Output.Compact()
	n.Timestamp = r.notes[i].Timestamp

	next := slices.Clone(r.notes)
	next[i] = n
	r.notes = next
	r.version++

	logger.Sugar.Debugf("Updated note %s", n.ID)
	return true
}

// Delete removes the note with the given id and reports whether it existed.
func (r *NoteRepository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false
	}

	next := make([]model.Note, 0, len(r.notes)-1)
	next = append(next, r.notes[:i]...)
	next = append(next, r.notes[i+1:]...)
	r.notes = next
	r.version++

	logger.Sugar.Debugf("Deleted note %s", id)
	return true
}

// All returns the notes newest-created first. The caller must not modify the result.
func (r *NoteRepository) All() []model.Note {
	notes, _ := r.Snapshot()
	return notes
}

// Snapshot returns All together with the version it was taken at.
func (r *NoteRepository) Snapshot() ([]model.Note, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.notes, r.version
}

func (r *NoteRepository) Get(id string) (model.Note, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return model.Note{}, false
	}
	return r.notes[i].Clone(), true
}

func (r *NoteRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.notes)
}

// Version increases on every successful mutation.
func (r *NoteRepository) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *NoteRepository) indexOf(id string) int {
	return slices.IndexFunc(r.notes, func(n model.Note) bool { return n.ID == id })
}
