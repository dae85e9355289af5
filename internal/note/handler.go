package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"ruzznotes/internal/note/model"
	"ruzznotes/internal/note/service"
	"ruzznotes/internal/note/session"
	"ruzznotes/pkg/logger"

	"github.com/go-chi/chi/v5"
)

const maxUploadSize = 10 << 20

type NoteHandler struct {
	Service *service.NoteService
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{Service: service}
}

type SubmitResponse struct {
	Note    model.Note `json:"note"`
	Created bool       `json:"created"`
	Applied bool       `json:"applied"`
}

type UploadResponse struct {
	Attached bool           `json:"attached"`
	Draft    *session.Draft `json:"draft,omitempty"`
}

// GetNotes returns the derived list. Any of search, status, sortBy and
// sortOrder in the query string replace the current view params first.
func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("search") && !q.Has("status") && !q.Has("sortBy") && !q.Has("sortOrder") {
		writeJSON(w, http.StatusOK, h.Service.Notes())
		return
	}

	v := h.Service.View()
	if q.Has("search") {
		v.Search = q.Get("search")
	}
	if q.Has("status") {
		v.Status = model.StatusFilter(q.Get("status"))
	}
	if q.Has("sortBy") {
		v.SortBy = model.SortBy(q.Get("sortBy"))
	}
	if q.Has("sortOrder") {
		v.SortOrder = model.SortOrder(q.Get("sortOrder"))
	}

	resp, err := h.Service.SetView(v)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *NoteHandler) GetAllNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.All())
}

func (h *NoteHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	var req model.ViewParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.Service.SetView(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteNote deletes only when the request carries confirm=true; otherwise
// the deletion counts as declined.
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteId")
	confirmed := r.URL.Query().Get("confirm") == "true"

	deleted, err := h.Service.Delete(noteID, service.ConfirmFunc(func(model.Note) bool { return confirmed }))
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to delete note %s: %v", noteID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.DeleteResponse{ID: noteID, Deleted: deleted})
}

func (h *NoteHandler) BeginCreate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.BeginCreate())
}

func (h *NoteHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteId")

	d, err := h.Service.BeginEdit(noteID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *NoteHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Form()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *NoteHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var req model.Fields
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.Service.Submit(req)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, SubmitResponse{Note: res.Note, Created: res.Created, Applied: res.Applied})
}

func (h *NoteHandler) CancelForm(w http.ResponseWriter, r *http.Request) {
	h.Service.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

// UploadImages reads multipart "images" files and embeds them as data URLs
// in the form identified by the "generation" field. The next submit of that
// form saves them whether or not its body repeats them. Uploads for a form
// that has since closed are accepted and dropped.
func (h *NoteHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}

	generation, err := strconv.ParseUint(r.FormValue("generation"), 10, 64)
	if err != nil {
		http.Error(w, "Missing or invalid generation", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		http.Error(w, "No images provided", http.StatusBadRequest)
		return
	}

	images := make([]session.Image, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			logger.Sugar.Errorf("Handler: Failed to open upload %s: %v", fh.Filename, err)
			http.Error(w, "Failed to read upload", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			logger.Sugar.Errorf("Handler: Failed to read upload %s: %v", fh.Filename, err)
			http.Error(w, "Failed to read upload", http.StatusBadRequest)
			return
		}

		mime := fh.Header.Get("Content-Type")
		if mime == "" || mime == "application/octet-stream" {
			mime = http.DetectContentType(data)
		}
		if !strings.HasPrefix(mime, "image/") {
			http.Error(w, "Only image uploads are allowed", http.StatusUnsupportedMediaType)
			return
		}
		images = append(images, session.Image{MimeType: mime, Data: data})
	}

	d, ok := h.Service.AttachImages(generation, images)
	if !ok {
		writeJSON(w, http.StatusAccepted, UploadResponse{Attached: false})
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Attached: true, Draft: &d})
}

func (h *NoteHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{Status: "ok", Notes: h.Service.Repo.Len()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Handler: Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case model.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNoteNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrNoActiveForm):
		status = http.StatusConflict
	default:
		logger.Sugar.Errorf("Handler: %v", err)
	}
	http.Error(w, err.Error(), status)
}
