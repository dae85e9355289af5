package router

import (
	"net/http"

	noteHandler "ruzznotes/internal/note"
	"ruzznotes/internal/note/service"
	"ruzznotes/middleware"
	"ruzznotes/socket"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func Setup(svc *service.NoteService, hub *socket.Hub, allowedOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORSMiddleware(allowedOrigin))

	h := noteHandler.NewNoteHandler(svc)

	// WebSocket
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, w, r)
	})

	r.Get("/healthz", h.Health)

	// REST API
	r.Route("/api", func(r chi.Router) {
		r.Get("/notes", h.GetNotes)
		r.Get("/notes/all", h.GetAllNotes)
		r.Delete("/notes/{noteId}", h.DeleteNote)
		r.Put("/view", h.UpdateView)

		r.Route("/form", func(r chi.Router) {
			r.Get("/", h.GetForm)
			r.Post("/create", h.BeginCreate)
			r.Post("/edit/{noteId}", h.BeginEdit)
			r.Post("/submit", h.SubmitForm)
			r.Post("/cancel", h.CancelForm)
			r.Post("/images", h.UploadImages)
		})
	})

	return r
}
