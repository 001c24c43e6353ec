package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ghaggin/coachportal/internal/api"
	"github.com/ghaggin/coachportal/internal/guard"
	"github.com/ghaggin/coachportal/internal/model"
	"github.com/ghaggin/coachportal/internal/repository"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
}

// requireAPI admits signed in users to the JSON endpoints. Unlike the page
// guard it answers with a status code instead of a redirect.
func (s *Server) requireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := s.controller.Init(r.Context())

		d := guard.Decide(snap, guard.SignedIn)
		switch d.Action {
		case guard.Wait:
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "session loading"})
		case guard.Redirect:
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "not authenticated"})
		default:
			next.ServeHTTP(w, r.WithContext(guard.WithUser(r.Context(), snap.User)))
		}
	})
}

// proxyError mirrors a backend failure to the browser script.
func (s *Server) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	status := api.Status(err)
	if status == 0 {
		status = http.StatusBadGateway
	}
	if status == http.StatusUnauthorized {
		s.controller.Invalidate(r.Context())
	}
	s.log.Info("proxied call failed", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, status, errorBody{Error: api.Message(err)})
}

func (s *Server) apiBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.api.Bookings(r.Context())
	if err != nil {
		s.proxyError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) apiAvailability(w http.ResponseWriter, r *http.Request) {
	raw, err := s.api.Availability(r.Context())
	if err != nil {
		s.proxyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (s *Server) apiBook(w http.ResponseWriter, r *http.Request) {
	var req api.BookRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid booking request"})
		return
	}

	resp, err := s.api.Book(r.Context(), req)
	if err != nil {
		s.proxyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) apiSurvey(w http.ResponseWriter, r *http.Request) {
	user, _ := guard.UserFrom(r.Context())

	raw, err := s.api.Survey(r.Context(), user.ID)
	if err != nil {
		s.proxyError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, raw)
}

func (s *Server) apiFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.files.ListFiles(r.Context())
	if err != nil {
		s.log.Error("list files failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "could not list files"})
		return
	}
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) apiFile(w http.ResponseWriter, r *http.Request) {
	file, err := s.files.GetFile(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "file not found"})
		return
	}
	if err != nil {
		s.log.Error("get file failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "could not load file"})
		return
	}
	writeJSON(w, http.StatusOK, file)
}
