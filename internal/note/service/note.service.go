package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"ruzznotes/internal/note/model"
	"ruzznotes/internal/note/query"
	"ruzznotes/internal/note/repository"
	"ruzznotes/internal/note/session"
	"ruzznotes/pkg/logger"
	"ruzznotes/socket"
)

// Publisher pushes state changes to connected UIs.
type Publisher interface {
	Publish(msgType string, v any)
}

// Confirmer gates deletion. Returning false cancels it.
type Confirmer interface {
	Confirm(n model.Note) bool
}

type ConfirmFunc func(n model.Note) bool

func (f ConfirmFunc) Confirm(n model.Note) bool { return f(n) }

// Always confirms.
var AutoConfirm = ConfirmFunc(func(model.Note) bool { return true })

// NoteService is the single controller of the note list. Each call runs to
// completion before the next one starts.
type NoteService struct {
	mu      sync.Mutex
	Repo    *repository.NoteRepository
	Engine  *query.Engine
	Session *session.Session
	view    model.ViewParams
	pub     Publisher
}

func NewNoteService(repo *repository.NoteRepository, engine *query.Engine) *NoteService {
	return &NoteService{
		Repo:    repo,
		Engine:  engine,
		Session: session.New(),
		view:    model.DefaultView(),
	}
}

// SetPublisher attaches p; nil disables publishing.
func (s *NoteService) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pub = p
}

// Notes returns the derived view for the current view params.
func (s *NoteService) Notes() model.ViewResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// All returns every note in creation order, newest first.
func (s *NoteService) All() []model.Note {
	return s.Repo.All()
}

func (s *NoteService) View() model.ViewParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView replaces the search, status filter and sort, then re-derives.
func (s *NoteService) SetView(v model.ViewParams) (model.ViewResponse, error) {
	v = v.WithDefaults()
	if err := v.Validate(); err != nil {
		return model.ViewResponse{}, fmt.Errorf("set view: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	resp := s.viewLocked()
	s.publishLocked(socket.ViewType, resp)
	return resp, nil
}

func (s *NoteService) BeginCreate() session.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.Session.BeginCreate()
	s.publishLocked(socket.FormType, d)
	return d
}

func (s *NoteService) BeginEdit(id string) (session.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.Repo.Get(id)
	if !ok {
		return session.Draft{}, fmt.Errorf("edit note %s: %w", id, model.ErrNoteNotFound)
	}
	d := s.Session.BeginEdit(n)
	s.publishLocked(socket.FormType, d)
	return d, nil
}

// Form returns the open draft.
func (s *NoteService) Form() (session.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.Session.Current()
	if !ok {
		return session.Draft{}, model.ErrNoActiveForm
	}
	return d, nil
}

// Submit saves f through the edit session: an update when a note is being
// edited, a create otherwise.
func (s *NoteService) Submit(f model.Fields) (session.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.Session.Submit(s.Repo, f)
	if err != nil {
		return session.Result{}, err
	}

	switch {
	case res.Created:
		logger.Sugar.Infof("Note %s created", res.Note.ID)
		s.publishLocked(socket.NoteCreatedType, res.Note)
	case res.Applied:
		logger.Sugar.Infof("Note %s updated", res.Note.ID)
		s.publishLocked(socket.NoteUpdatedType, res.Note)
	default:
		logger.Sugar.Warnf("Edited note %s no longer exists, nothing saved", res.Note.ID)
	}
	s.publishLocked(socket.FormType, nil)
	s.publishLocked(socket.ViewType, s.viewLocked())
	return res, nil
}

// Cancel closes the form without saving.
func (s *NoteService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Session.Cancel()
	s.publishLocked(socket.FormType, nil)
}

// AttachImages embeds uploaded images into the draft opened at generation.
// It reports false when that form is no longer open.
func (s *NoteService) AttachImages(generation uint64, images []session.Image) (session.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.Session.AttachImages(generation, images)
	if !ok {
		logger.Sugar.Infof("Discarding %d uploaded image(s) for closed form %d", len(images), generation)
		return session.Draft{}, false
	}
	s.publishLocked(socket.FormType, d)
	return d, true
}

// Delete removes the note after confirm approves it. A declined
// confirmation returns false and changes nothing.
func (s *NoteService) Delete(id string, confirm Confirmer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.Repo.Get(id)
	if !ok {
		return false, fmt.Errorf("delete note %s: %w", id, model.ErrNoteNotFound)
	}
	if confirm == nil || !confirm.Confirm(n) {
		logger.Sugar.Infof("Deletion of note %s declined", id)
		return false, nil
	}
	if !s.Repo.Delete(id) {
		return false, fmt.Errorf("delete note %s: %w", id, model.ErrNoteNotFound)
	}

	logger.Sugar.Infof("Note %s deleted", id)
	s.publishLocked(socket.NoteDeletedType, model.DeleteResponse{ID: id, Deleted: true})
	s.publishLocked(socket.ViewType, s.viewLocked())
	return true, nil
}

// Seed creates each entry in order, skipping invalid ones.
func (s *NoteService) Seed(entries []model.Fields) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for i, f := range entries {
		f = f.Normalize()
		if err := f.Validate(); err != nil {
			logger.Sugar.Warnf("Skipping seed entry %d: %v", i, err)
			continue
		}
		s.Repo.Create(f)
		created++
	}
	if created > 0 {
		s.publishLocked(socket.ViewType, s.viewLocked())
	}
	return created
}

// Snapshot is the message sent to a UI when it connects.
func (s *NoteService) Snapshot() (socket.WSMessage, error) {
	payload, err := json.Marshal(s.Notes())
	if err != nil {
		return socket.WSMessage{}, err
	}
	return socket.WSMessage{Type: socket.ViewType, Payload: payload}, nil
}

// HandleQuery applies a QUERY message from a UI. Rejected params are
// answered with an ERROR message to the sender only.
func (s *NoteService) HandleQuery(msg socket.WSMessage) *socket.WSMessage {
	var v model.ViewParams
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return errorMessage(fmt.Errorf("invalid query payload: %w", err))
	}
	if _, err := s.SetView(v); err != nil {
		return errorMessage(err)
	}
	return nil
}

func (s *NoteService) viewLocked() model.ViewResponse {
	notes, version := s.Repo.Snapshot()
	derived := s.Engine.View(notes, version, s.view)
	return model.ViewResponse{View: s.view, Notes: derived, Total: len(notes)}
}

func (s *NoteService) publishLocked(msgType string, v any) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(msgType, v)
}

func errorMessage(err error) *socket.WSMessage {
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	return &socket.WSMessage{Type: socket.ErrorType, Payload: payload}
}
