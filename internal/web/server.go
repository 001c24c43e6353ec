package web

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ghaggin/coachportal/internal/api"
	"github.com/ghaggin/coachportal/internal/booking"
	"github.com/ghaggin/coachportal/internal/config"
	"github.com/ghaggin/coachportal/internal/guard"
	"github.com/ghaggin/coachportal/internal/middleware"
	"github.com/ghaggin/coachportal/internal/repository"
	"github.com/ghaggin/coachportal/internal/session"
	"github.com/ghaggin/coachportal/internal/template"
	assets "github.com/ghaggin/coachportal/web"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	log    *zap.Logger
	config *config.Config
	server *http.Server

	sessions   *middleware.SessionManager
	controller *session.Controller
	api        *api.Client
	files      repository.Repository
	renderer   *template.Renderer
	clock      clockwork.Clock
	hub        *booking.Hub
	limiter    *ipLimiter
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     *config.Config
	Sessions   *middleware.SessionManager
	Controller *session.Controller
	API        *api.Client
	Files      repository.Repository
	Renderer   *template.Renderer
	Clock      clockwork.Clock
	Hub        *booking.Hub
}

func New(p Params) (*Server, error) {
	s := newServer(p)

	key, err := csrfKey(p.Config.Server.CSRFKey)
	if err != nil {
		return nil, err
	}
	if p.Config.Server.CSRFKey == "" {
		p.Log.Warn("no csrf key configured, using a random one")
	}

	protect := csrf.Protect(key,
		csrf.Secure(p.Config.Server.Secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailed)),
	)

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", p.Config.Server.Host, p.Config.Server.Port),
		Handler: s.routes(protect),
	}
	return s, nil
}

func newServer(p Params) *Server {
	return &Server{
		log:        p.Log,
		config:     p.Config,
		sessions:   p.Sessions,
		controller: p.Controller,
		api:        p.API,
		files:      p.Files,
		renderer:   p.Renderer,
		clock:      p.Clock,
		hub:        p.Hub,
		limiter:    newIPLimiter(p.Config.RateLimit, p.Clock),
	}
}

func csrfKey(configured string) ([]byte, error) {
	if configured != "" {
		if len(configured) != 32 {
			return nil, errors.New("csrf key must be 32 bytes")
		}
		return []byte(configured), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Server) Start(_ context.Context) error {
	go func() {
		s.log.Info("listening", zap.String("addr", s.server.Addr))
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error shutting down server", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) routes(protect func(http.Handler) http.Handler) http.Handler {
	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	if s.config.Server.TrustProxy {
		root.Use(chimw.RealIP)
	}
	root.Use(s.logRequests, chimw.Recoverer)

	root.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	root.Handle("/static/*", http.StripPrefix("/static", http.FileServer(http.FS(assets.Static()))))

	root.Group(func(root chi.Router) {
		root.Use(s.sessions.Wrap, protect)
		root.NotFound(s.notFound)

		loading := http.HandlerFunc(s.loading)

		// No Auth
		root.Group(func(r chi.Router) {
			r.Get("/", s.loginPage)
			r.With(s.throttle).Post("/login", s.login)
			r.With(s.throttle).Post("/register", s.register)
			r.Post("/logout", s.logout)

			r.Get("/check-email", s.checkEmail)
			r.With(s.throttle).Post("/check-email/resend", s.resendConfirmation)

			r.Get("/email-confirmation", s.confirmEmail)
			r.Get("/email-confirmation/*", s.confirmEmail)
			r.Post("/email-confirmation", s.confirmFragment)
		})

		// Auth, survey pending
		root.Group(func(r chi.Router) {
			r.Use(guard.Require(s.controller, guard.SurveyPending, loading))
			r.Get("/survey", s.surveyPage)
			r.Post("/survey", s.submitSurvey)
		})

		// Auth, survey done
		root.Group(func(r chi.Router) {
			r.Use(guard.Require(s.controller, guard.SurveyDone, loading))
			r.Get("/dashboard", s.dashboard)
			r.Get("/dashboard/bookings", s.bookingsFragment)
			r.Get("/dashboard/stream", s.bookingStream)
			r.Post("/dashboard/scheduled", s.scheduled)
		})

		root.Route("/api", func(r chi.Router) {
			r.Use(s.requireAPI)
			r.Get("/bookings", s.apiBookings)
			r.Get("/bookings/availability", s.apiAvailability)
			r.Post("/bookings/book", s.apiBook)
			r.Get("/survey", s.apiSurvey)
			r.Get("/files", s.apiFiles)
			r.Get("/files/{id}", s.apiFile)
		})
	})

	return root
}

func (s *Server) csrfFailed(w http.ResponseWriter, r *http.Request) {
	s.log.Warn("csrf check failed",
		zap.String("path", r.URL.Path),
		zap.Error(csrf.FailureReason(r)),
	)
	http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
