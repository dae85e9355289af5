// Package query derives the displayed note list: a status and text filter
// followed by a stable sort on date or subject.
package query

import (
	"slices"
	"strings"
	"sync"

	"ruzznotes/internal/note/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Engine filters and sorts notes. Subjects are compared with the collation
// rules of its locale. The last result is memoized on (version, params).
type Engine struct {
	mu       sync.Mutex
	collator *collate.Collator

	cached  bool
	version uint64
	params  model.ViewParams
	result  []model.Note
}

func NewEngine(tag language.Tag) *Engine {
	return &Engine{collator: collate.New(tag)}
}

// ParseLocale resolves a BCP 47 tag, falling back to English.
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English
	}
	return tag
}

// Derive returns the filtered and sorted view of notes. notes is not modified.
func (e *Engine) Derive(notes []model.Note, v model.ViewParams) []model.Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	return derive(notes, v, e.collator)
}

// View is Derive memoized on the repository version the notes were read at.
func (e *Engine) View(notes []model.Note, version uint64, v model.ViewParams) []model.Note {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cached && e.version == version && e.params == v {
		return e.result
	}
	e.result = derive(notes, v, e.collator)
	e.version = version
	e.params = v
	e.cached = true
	return e.result
}

// Derive with English collation.
func Derive(notes []model.Note, v model.ViewParams) []model.Note {
	return derive(notes, v, collate.New(language.English))
}

// Filter keeps notes passing the status filter whose subject, content,
// output text or follow-up contains the search term, ignoring case.
func Filter(notes []model.Note, search string, status model.StatusFilter) []model.Note {
	term := strings.ToLower(search)
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if status.Matches(n.Status) && matchesSearch(n, term) {
			out = append(out, n)
		}
	}
	return out
}

func derive(notes []model.Note, v model.ViewParams, c *collate.Collator) []model.Note {
	v = v.WithDefaults()
	out := Filter(notes, v.Search, v.Status)

	cmp := compareDate
	if v.SortBy == model.SortBySubject {
		cmp = func(a, b model.Note) int { return c.CompareString(a.Subject, b.Subject) }
	}
	if v.SortOrder == model.SortDesc {
		asc := cmp
		cmp = func(a, b model.Note) int { return asc(b, a) }
	}
	// Ties keep their filtered order.
	slices.SortStableFunc(out, cmp)
	return out
}

func compareDate(a, b model.Note) int {
	return a.Timestamp.Compare(b.Timestamp)
}

func matchesSearch(n model.Note, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Subject), term) ||
		strings.Contains(strings.ToLower(n.Content), term) ||
		strings.Contains(strings.ToLower(n.Output.Text), term) ||
		strings.Contains(strings.ToLower(n.FollowUp), term)
}
