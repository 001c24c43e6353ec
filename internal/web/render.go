package web

import (
	"net/http"

	"github.com/ghaggin/coachportal/internal/guard"
	"github.com/ghaggin/coachportal/internal/template"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, view any) {
	ctx := r.Context()

	td := &template.Data{
		PageTitle: title,
		Flashes:   s.sessions.PopFlashes(ctx),
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
		Page:      view,
	}
	if user, ok := guard.UserFrom(ctx); ok {
		td.User = user
	}

	if err := s.renderer.Render(w, status, page, td); err != nil {
		s.log.Error("render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// loading stands in for a guarded page while the session is resolving. It
// reloads itself until the guard lets the page through.
func (s *Server) loading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	s.render(w, r, http.StatusOK, "loading.html", "Loading", nil)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found.html", "Not Found", nil)
}
