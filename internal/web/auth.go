package web

import (
	"net/http"

	"github.com/ghaggin/coachportal/internal/middleware"
	"github.com/ghaggin/coachportal/internal/session"
	"go.uber.org/zap"
)

const (
	tabLogin    = "login"
	tabRegister = "register"

	msgBadForm         = "Could not read the form. Please try again."
	msgLoginOK         = "Login successful! Redirecting..."
	msgRegisteredCheck = "Registration successful! Please check your email."
	msgRegisteredOK    = "Account created successfully!"
	msgLoggedOut       = "You have been logged out."
)

type loginView struct {
	Tab      string
	Error    string
	Fields   map[string]string
	Login    loginForm
	Register registerForm
	Resend   bool
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	view := loginView{Tab: tabLogin, Resend: q.Get("resend") == "true"}
	if q.Get("tab") == tabRegister {
		view.Tab = tabRegister
	}
	s.render(w, r, http.StatusOK, "login.html", "Sign In", view)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := decodeForm(r, &form); err != nil {
		s.log.Info("bad login form", zap.Error(err))
		s.render(w, r, http.StatusBadRequest, "login.html", "Sign In", loginView{Tab: tabLogin, Error: msgBadForm})
		return
	}

	if fields := check(form); fields != nil {
		view := loginView{Tab: tabLogin, Fields: fields, Login: form}
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", "Sign In", view)
		return
	}

	ctx := r.Context()
	res := s.controller.Login(ctx, form.Email, form.Password)
	if !res.Success() {
		s.sessions.Flash(ctx, middleware.FlashError, res.Error)
		view := loginView{Tab: tabLogin, Error: res.Error, Login: form}
		s.render(w, r, http.StatusUnauthorized, "login.html", "Sign In", view)
		return
	}

	s.sessions.Flash(ctx, middleware.FlashSuccess, msgLoginOK)
	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := decodeForm(r, &form); err != nil {
		s.log.Info("bad register form", zap.Error(err))
		s.render(w, r, http.StatusBadRequest, "login.html", "Register", loginView{Tab: tabRegister, Error: msgBadForm})
		return
	}

	if fields := check(form); fields != nil {
		view := loginView{Tab: tabRegister, Fields: fields, Register: form}
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", "Register", view)
		return
	}

	ctx := r.Context()
	res := s.controller.Register(ctx, form.Email, form.Password, form.Name, form.PromoterCode)
	switch {
	case res.RequiresConfirmation:
		s.sessions.Flash(ctx, middleware.FlashSuccess, msgRegisteredCheck)
	case res.Success():
		s.sessions.Flash(ctx, middleware.FlashSuccess, msgRegisteredOK)
	default:
		s.sessions.Flash(ctx, middleware.FlashError, res.Error)
		view := loginView{Tab: tabRegister, Error: res.Error, Register: form}
		s.render(w, r, http.StatusBadRequest, "login.html", "Register", view)
		return
	}

	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := s.controller.Logout(ctx)
	s.sessions.Flash(ctx, middleware.FlashInfo, msgLoggedOut)
	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

// expired drops a session whose token the backend no longer accepts and
// sends the browser to the login page.
func (s *Server) expired(w http.ResponseWriter, r *http.Request) {
	s.controller.Invalidate(r.Context())
	http.Redirect(w, r, session.PathLogin, http.StatusSeeOther)
}
