package query

import (
	"slices"
	"testing"
	"time"

	"ruzznotes/internal/note/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func note(id, subject string, status model.Status, minute int) model.Note {
	return model.Note{
		ID:        id,
		Subject:   subject,
		Content:   subject + " body",
		Status:    status,
		Timestamp: base.Add(time.Duration(minute) * time.Minute),
		Output:    model.Output{Links: []string{}, Images: []string{}},
	}
}

func ids(notes []model.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func view(search string, status model.StatusFilter, by model.SortBy, order model.SortOrder) model.ViewParams {
	return model.ViewParams{Search: search, Status: status, SortBy: by, SortOrder: order}
}

func sample() []model.Note {
	// Raw repository order: newest first.
	return []model.Note{
		note("c", "charlie", model.StatusCompleted, 3),
		note("b", "Bravo", model.StatusInProgress, 2),
		note("a", "alpha", model.StatusPending, 1),
	}
}

func TestDeriveEmpty(t *testing.T) {
	assert.Empty(t, Derive(nil, model.DefaultView()))
	assert.Empty(t, Derive([]model.Note{}, view("x", model.StatusAll, model.SortBySubject, model.SortAsc)))
}

func TestDeriveAllKeepsEveryNote(t *testing.T) {
	notes := sample()
	for _, by := range []model.SortBy{model.SortByDate, model.SortBySubject} {
		for _, order := range []model.SortOrder{model.SortAsc, model.SortDesc} {
			got := Derive(notes, view("", model.StatusAll, by, order))
			assert.ElementsMatch(t, ids(notes), ids(got), "%s %s", by, order)
		}
	}
}

func TestDeriveDateOrder(t *testing.T) {
	notes := sample()
	desc := Derive(notes, view("", model.StatusAll, model.SortByDate, model.SortDesc))
	asc := Derive(notes, view("", model.StatusAll, model.SortByDate, model.SortAsc))

	assert.Equal(t, []string{"c", "b", "a"}, ids(desc))
	reversed := ids(asc)
	slices.Reverse(reversed)
	assert.Equal(t, ids(desc), reversed)
}

func TestDeriveSubjectIsLocaleAware(t *testing.T) {
	notes := sample()
	got := Derive(notes, view("", model.StatusAll, model.SortBySubject, model.SortAsc))
	// Byte order would put "Bravo" first.
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))

	got = Derive(notes, view("", model.StatusAll, model.SortBySubject, model.SortDesc))
	assert.Equal(t, []string{"c", "b", "a"}, ids(got))
}

func TestDeriveSubjectTiesKeepFilteredOrder(t *testing.T) {
	notes := []model.Note{
		note("3", "same", model.StatusPending, 3),
		note("2", "same", model.StatusPending, 2),
		note("1", "same", model.StatusPending, 1),
	}
	for _, order := range []model.SortOrder{model.SortAsc, model.SortDesc} {
		got := Derive(notes, view("", model.StatusAll, model.SortBySubject, order))
		assert.Equal(t, []string{"3", "2", "1"}, ids(got), order)
	}
}

func TestDeriveStatusFilter(t *testing.T) {
	got := Derive(sample(), view("", "completed", model.SortBySubject, model.SortAsc))
	assert.Equal(t, []string{"c"}, ids(got))
}

func TestDeriveSearchFields(t *testing.T) {
	n := note("x", "plain", model.StatusPending, 1)
	n.Content = "abc"
	n.Output.Text = "Zebra crossing"
	n.FollowUp = "call Bob"
	notes := []model.Note{n, note("y", "other", model.StatusPending, 2)}

	assert.Equal(t, []string{"x"}, ids(Derive(notes, view("zebra", model.StatusAll, "", ""))))
	assert.Equal(t, []string{"x"}, ids(Derive(notes, view("BOB", model.StatusAll, "", ""))))
	assert.Equal(t, []string{"x"}, ids(Derive(notes, view("ABC", model.StatusAll, "", ""))))
	assert.Empty(t, Derive(notes, view("giraffe", model.StatusAll, "", "")))
}

func TestDeriveIsIdempotent(t *testing.T) {
	notes := sample()
	v := view("a", model.StatusAll, model.SortBySubject, model.SortDesc)
	once := Derive(notes, v)
	twice := Derive(once, v)
	assert.Equal(t, ids(once), ids(twice))
}

func TestDeriveDoesNotModifyInput(t *testing.T) {
	notes := sample()
	before := ids(notes)
	Derive(notes, view("", model.StatusAll, model.SortBySubject, model.SortAsc))
	assert.Equal(t, before, ids(notes))
}

func TestEngineViewMemoizes(t *testing.T) {
	e := NewEngine(language.English)
	notes := sample()
	v := model.DefaultView()

	first := e.View(notes, 1, v)
	second := e.View(notes, 1, v)
	require.NotEmpty(t, first)
	assert.Same(t, &first[0], &second[0], "same inputs must reuse the cached result")

	third := e.View(notes[:1], 2, v)
	assert.Equal(t, []string{"c"}, ids(third))
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, language.German, ParseLocale("de"))
	assert.Equal(t, language.English, ParseLocale("not a tag!"))
}
