package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ghaggin/coachportal/internal/api"
	"github.com/ghaggin/coachportal/internal/booking"
	"github.com/ghaggin/coachportal/internal/config"
	"github.com/ghaggin/coachportal/internal/middleware"
	"github.com/ghaggin/coachportal/internal/model"
	"github.com/ghaggin/coachportal/internal/repository"
	"github.com/ghaggin/coachportal/internal/session"
	"github.com/ghaggin/coachportal/internal/template"
	assets "github.com/ghaggin/coachportal/web"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "hunter22"
	testToken    = "access-1"
	testRefresh  = "refresh-1"
)

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// fakeBackend plays the coaching API for one account.
type fakeBackend struct {
	*httptest.Server

	mu              sync.Mutex
	surveyCompleted bool
	confirmRequired bool
	meStatus        int
	logoutStatus    int
	bookingsStatus  int
	bookings        []map[string]any
	scheduler       map[string]any
	verifyResp      map[string]any

	logins   int
	logouts  int
	surveys  []map[string]string
	verifies []map[string]string
	resends  []string
	booked   []map[string]string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{
		scheduler: map[string]any{"calendly_username": "coach", "calendly_event_type": "intro"},
		bookings:  []map[string]any{},
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.login)
		r.Post("/auth/register", b.register)
		r.Get("/auth/me", b.me)
		r.Post("/auth/logout", b.logout)
		r.Post("/auth/verify-email", b.verify)
		r.Post("/auth/resend-confirmation", b.resend)
		r.Post("/surveys/submit", b.authed(b.submitSurvey))
		r.Get("/surveys/{id}", b.authed(func(w http.ResponseWriter, _ *http.Request) {
			reply(w, http.StatusOK, []map[string]any{{"goals": "career"}})
		}))
		r.Get("/bookings", b.listBookings)
		r.Get("/bookings/config", func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			reply(w, http.StatusOK, b.scheduler)
		})
		r.Get("/bookings/availability", b.authed(func(w http.ResponseWriter, _ *http.Request) {
			reply(w, http.StatusOK, map[string]any{"collection": []any{}})
		}))
		r.Post("/bookings/book", b.authed(b.book))
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			reply(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
			return
		}
		next(w, r)
	}
}

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.logins++

	if body["email"] != testEmail || body["password"] != testPassword {
		reply(w, http.StatusUnauthorized, map[string]string{"error": "Invalid login credentials"})
		return
	}
	reply(w, http.StatusOK, map[string]string{
		"access_token":  testToken,
		"refresh_token": testRefresh,
		"user_id":       "u1",
		"email":         testEmail,
	})
}

func (b *fakeBackend) register(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.confirmRequired {
		reply(w, http.StatusCreated, map[string]any{
			"message":                     "User registered successfully",
			"user_id":                     "u1",
			"requires_email_confirmation": true,
		})
		return
	}
	reply(w, http.StatusCreated, map[string]any{
		"user_id":       "u1",
		"access_token":  testToken,
		"refresh_token": testRefresh,
	})
}

func (b *fakeBackend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.meStatus != 0 {
		reply(w, b.meStatus, map[string]string{"error": "profile unavailable"})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		reply(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		return
	}
	reply(w, http.StatusOK, map[string]any{"user": map[string]any{
		"id":               "u1",
		"email":            testEmail,
		"full_name":        "Jane Doe",
		"survey_completed": b.surveyCompleted,
	}})
}

func (b *fakeBackend) logout(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logouts++

	if b.logoutStatus != 0 {
		reply(w, b.logoutStatus, map[string]string{"error": "boom"})
		return
	}
	reply(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (b *fakeBackend) verify(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.verifies = append(b.verifies, body)

	resp := b.verifyResp
	if resp == nil {
		resp = map[string]any{"success": true, "message": "Email verified successfully"}
	}
	reply(w, http.StatusOK, resp)
}

func (b *fakeBackend) resend(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.resends = append(b.resends, body["email"])
	reply(w, http.StatusOK, map[string]string{"message": "Confirmation email sent"})
}

func (b *fakeBackend) submitSurvey(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.surveys = append(b.surveys, body)
	b.surveyCompleted = true
	reply(w, http.StatusCreated, map[string]string{"message": "Survey submitted successfully"})
}

func (b *fakeBackend) listBookings(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bookingsStatus != 0 {
		reply(w, b.bookingsStatus, map[string]string{"error": "Invalid token"})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		reply(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
		return
	}
	reply(w, http.StatusOK, b.bookings)
}

func (b *fakeBackend) book(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.booked = append(b.booked, body)
	reply(w, http.StatusCreated, map[string]string{"message": "Booking created", "booking_id": "b9"})
}

// with runs f under the backend's lock, for setup and for reading what
// the backend saw.
func (b *fakeBackend) with(f func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f(b)
}

type staticFiles []model.SharedFile

func (f staticFiles) ListFiles(_ context.Context) ([]model.SharedFile, error) {
	return f, nil
}

func (f staticFiles) GetFile(_ context.Context, id string) (*model.SharedFile, error) {
	for i := range f {
		if f[i].ID == id {
			return &f[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

type harness struct {
	t       *testing.T
	backend *fakeBackend
	server  *Server
	clock   clockwork.FakeClock
	ts      *httptest.Server
	client  *http.Client
}

func newHarness(t *testing.T, opts ...func(*config.Config)) *harness {
	t.Helper()
	return buildHarness(t, false, opts...)
}

// newCSRFHarness serves the router through New, so forms need a valid
// csrf token.
func newCSRFHarness(t *testing.T) *harness {
	t.Helper()
	return buildHarness(t, true)
}

func buildHarness(t *testing.T, withCSRF bool, opts ...func(*config.Config)) *harness {
	t.Helper()

	be := newFakeBackend(t)
	log := zaptest.NewLogger(t)

	cfg := &config.Config{
		Backend:   config.Backend{BaseURL: be.URL + "/api", Timeout: 5 * time.Second},
		Dashboard: config.Dashboard{RefreshInterval: 30 * time.Second, SignalDelay: 2 * time.Second},
		RateLimit: config.RateLimit{PerMinute: 1000, Burst: 1000},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	sessions := middleware.NewMemorySessionManager()
	client := api.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout}, sessions, log)
	clock := clockwork.NewFakeClockAt(testNow)

	renderer, err := template.New(assets.FS())
	require.NoError(t, err)

	p := Params{
		Log:      log,
		Config:   cfg,
		Sessions: sessions,
		Controller: session.New(session.Params{
			Config:  cfg,
			Log:     log,
			Clock:   clock,
			Store:   sessions,
			Backend: client,
		}),
		API: client,
		Files: staticFiles{
			{ID: "f1", Name: "Goal_Setting_Worksheet.pdf", Date: "2023-10-15", Size: "2.4 MB", Type: model.FileTypePDF},
		},
		Renderer: renderer,
		Clock:    clock,
		Hub:      booking.NewHub(),
	}

	var s *Server
	var handler http.Handler
	if withCSRF {
		s, err = New(p)
		require.NoError(t, err)
		handler = s.server.Handler
	} else {
		s = newServer(p)
		handler = s.routes(func(next http.Handler) http.Handler { return next })
	}

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{
		t:       t,
		backend: be,
		server:  s,
		clock:   clock,
		ts:      ts,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// get returns status, Location and body.
func (h *harness) get(path string) (int, string, string) {
	h.t.Helper()
	resp, err := h.client.Get(h.ts.URL + path)
	require.NoError(h.t, err)
	return readResponse(h.t, resp)
}

func (h *harness) post(path string, form url.Values) (int, string, string) {
	h.t.Helper()
	resp, err := h.client.PostForm(h.ts.URL+path, form)
	require.NoError(h.t, err)
	return readResponse(h.t, resp)
}

func (h *harness) postJSON(path, body string) (int, string) {
	h.t.Helper()
	resp, err := h.client.Post(h.ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(h.t, err)
	status, _, b := readResponse(h.t, resp)
	return status, b
}

func readResponse(t *testing.T, resp *http.Response) (int, string, string) {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(b)
}

func (h *harness) backendLogins() (n int) {
	h.backend.with(func(b *fakeBackend) { n = b.logins })
	return n
}

func (h *harness) login() string {
	h.t.Helper()
	status, loc, _ := h.post("/login", url.Values{"email": {testEmail}, "password": {testPassword}})
	require.Equal(h.t, http.StatusSeeOther, status)
	return loc
}
