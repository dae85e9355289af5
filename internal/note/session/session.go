// Package session tracks the single open note form and routes its
// submission to create or update.
package session

import (
	"encoding/base64"
	"fmt"
	"slices"

	"ruzznotes/internal/note/model"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Draft is the state of the open form. Original is a snapshot of the note
// being edited and never aliases repository data.
type Draft struct {
	Mode       Mode         `json:"mode"`
	Generation uint64       `json:"generation"`
	Original   *model.Note  `json:"original,omitempty"`
	Fields     model.Fields `json:"fields"`
}

func (d Draft) clone() Draft {
	if d.Original != nil {
		orig := d.Original.Clone()
		d.Original = &orig
	}
	d.Fields.Output = d.Fields.Output.Clone()
	return d
}

// Store receives submitted forms.
type Store interface {
	Create(f model.Fields) model.Note
	Update(n model.Note) bool
}

type Result struct {
	Note    model.Note
	Created bool
	// Applied is false when an update targeted a note that no longer exists.
	Applied bool
}

// Image is an uploaded file waiting to be embedded in a draft.
type Image struct {
	MimeType string
	Data     []byte
}

// DataURL encodes the image inline.
func (img Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", img.MimeType, base64.StdEncoding.EncodeToString(img.Data))
}

// Session is not safe for concurrent use.
type Session struct {
	open       bool
	draft      Draft
	generation uint64
	// uploaded holds data URLs attached to the open draft since it was opened.
	uploaded []string
}

func New() *Session {
	return &Session{}
}

// BeginCreate opens an empty form, replacing any open one.
func (s *Session) BeginCreate() Draft {
	s.generation++
	s.open = true
	s.uploaded = nil
	s.draft = Draft{
		Mode:       ModeCreate,
		Generation: s.generation,
		Fields: model.Fields{
			Status: model.StatusPending,
			Output: model.Output{Links: []string{}, Images: []string{}},
		},
	}
	return s.draft.clone()
}

// BeginEdit opens a form pre-filled from a snapshot of n, replacing any open one.
func (s *Session) BeginEdit(n model.Note) Draft {
	s.generation++
	s.open = true
	s.uploaded = nil
	orig := n.Clone()
	s.draft = Draft{
		Mode:       ModeEdit,
		Generation: s.generation,
		Original:   &orig,
		Fields:     orig.Fields(),
	}
	return s.draft.clone()
}

// Current returns the open draft, if any.
func (s *Session) Current() (Draft, bool) {
	if !s.open {
		return Draft{}, false
	}
	return s.draft.clone(), true
}

// Editing returns the note under edit, if an edit form is open.
func (s *Session) Editing() (model.Note, bool) {
	if !s.open || s.draft.Mode != ModeEdit {
		return model.Note{}, false
	}
	return s.draft.Original.Clone(), true
}

// Cancel closes the form without touching the store.
func (s *Session) Cancel() {
	s.open = false
	s.draft = Draft{}
	s.uploaded = nil
}

// Submit validates f and sends it to store: as an update carrying the
// original id and timestamp when editing, as a create otherwise. Images
// uploaded to the open form are appended when f does not already carry
// them, so clients may submit without echoing the data URLs back. The form
// closes on success and stays open when validation fails.
func (s *Session) Submit(store Store, f model.Fields) (Result, error) {
	f = s.withUploads(f).Normalize()
	if err := f.Validate(); err != nil {
		return Result{}, fmt.Errorf("submit note: %w", err)
	}

	var res Result
	if orig, ok := s.Editing(); ok {
		res.Note = f.Apply(orig.ID, orig.Timestamp)
		res.Applied = store.Update(res.Note)
	} else {
		res.Note = store.Create(f)
		res.Created = true
		res.Applied = true
	}
	s.Cancel()
	return res, nil
}

// AttachImages appends images to the draft opened at generation. Uploads
// that finish after that form was closed or replaced are dropped.
func (s *Session) AttachImages(generation uint64, images []Image) (Draft, bool) {
	if !s.open || s.draft.Generation != generation {
		return Draft{}, false
	}
	for _, img := range images {
		url := img.DataURL()
		s.draft.Fields.Output.Images = append(s.draft.Fields.Output.Images, url)
		s.uploaded = append(s.uploaded, url)
	}
	return s.draft.clone(), true
}

func (s *Session) withUploads(f model.Fields) model.Fields {
	if !s.open || len(s.uploaded) == 0 {
		return f
	}
	images := slices.Clone(f.Output.Images)
	for _, url := range s.uploaded {
		if !slices.Contains(images, url) {
			images = append(images, url)
		}
	}
	f.Output.Images = images
	return f
}
