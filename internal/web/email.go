package web

import (
	"net/http"

	"github.com/ghaggin/coachportal/internal/api"
	"github.com/ghaggin/coachportal/internal/confirm"
	"github.com/ghaggin/coachportal/internal/middleware"
	"github.com/ghaggin/coachportal/internal/session"
	"go.uber.org/zap"
)

const (
	pathConfirm = "/email-confirmation"

	msgEmailNotFound  = "Email address not found"
	msgResendFailed   = "Failed to resend confirmation email"
	msgEmailConfirmed = "Email confirmed successfully!"
	msgVerifyFailed   = "Failed to verify email"
	msgVerifyError    = "An error occurred while verifying your email"

	statusPending = "pending"
	statusSuccess = "success"
	statusError   = "error"

	// confirmedRedirectAfter is how long the success page stays up before
	// sending the user to log in.
	confirmedRedirectAfter = 2
)

type checkEmailView struct {
	Email string
	Sent  bool
}

type confirmView struct {
	Status        string
	Error         string
	RedirectTo    string
	RedirectAfter int
}

func (s *Server) checkEmail(w http.ResponseWriter, r *http.Request) {
	view := checkEmailView{
		Email: s.sessions.PendingEmail(r.Context()),
		Sent:  r.URL.Query().Get("sent") == "1",
	}
	s.render(w, r, http.StatusOK, "check_email.html", "Check Your Email", view)
}

func (s *Server) resendConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form resendForm
	if err := decodeForm(r, &form); err != nil {
		s.log.Info("bad resend form", zap.Error(err))
	}

	email := form.Email
	if email == "" {
		email = s.sessions.PendingEmail(ctx)
	}
	if email == "" {
		s.sessions.Flash(ctx, middleware.FlashError, msgEmailNotFound)
		http.Redirect(w, r, session.PathCheckEmail, http.StatusSeeOther)
		return
	}

	if _, err := s.api.ResendConfirmation(ctx, email); err != nil {
		msg := api.Message(err)
		if msg == "" {
			msg = msgResendFailed
		}
		s.log.Info("resend confirmation failed", zap.Error(err))
		s.sessions.Flash(ctx, middleware.FlashError, msg)
		http.Redirect(w, r, session.PathCheckEmail, http.StatusSeeOther)
		return
	}

	s.sessions.SetPendingEmail(ctx, email)
	s.sessions.Flash(ctx, middleware.FlashSuccess, "Confirmation email sent!")
	http.Redirect(w, r, session.PathCheckEmail+"?sent=1", http.StatusSeeOther)
}

// confirmEmail handles the link from the confirmation email. A token in the
// query or path is parked in the session and the browser is sent back to
// the bare page, so the token does not stay in the address bar or history.
// The bare page then verifies the parked token, or asks the browser for the
// fragment, which never reaches the server on its own.
func (s *Server) confirmEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if tok, ok := confirm.Extract(r.URL.Path, r.URL.RawQuery, ""); ok {
		s.sessions.PutConfirmation(ctx, middleware.Confirmation{Token: tok.Value, Type: tok.Type})
		http.Redirect(w, r, pathConfirm, http.StatusSeeOther)
		return
	}

	if c, ok := s.sessions.PopConfirmation(ctx); ok {
		s.verify(w, r, confirm.Token{Value: c.Token, Type: c.Type})
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	s.render(w, r, http.StatusOK, "email_confirmation.html", "Verifying Email", confirmView{Status: statusPending})
}

// confirmFragment receives the fragment relayed by the pending page.
func (s *Server) confirmFragment(w http.ResponseWriter, r *http.Request) {
	var form confirmForm
	if err := decodeForm(r, &form); err != nil {
		s.log.Info("bad confirmation form", zap.Error(err))
	}

	tok, ok := confirm.Extract("", "", form.Fragment)
	if !ok {
		s.confirmFailed(w, r, http.StatusBadRequest, confirm.MsgMissingToken)
		return
	}
	s.verify(w, r, tok)
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request, tok confirm.Token) {
	ctx := r.Context()

	resp, err := s.api.VerifyEmail(ctx, tok.Value, tok.Type)
	if err != nil {
		msg := api.Message(err)
		if msg == "" {
			msg = msgVerifyError
		}
		s.log.Info("email verification failed", zap.Error(err))
		s.confirmFailed(w, r, http.StatusBadRequest, msg)
		return
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = msgVerifyFailed
		}
		s.confirmFailed(w, r, http.StatusBadRequest, msg)
		return
	}

	s.sessions.Flash(ctx, middleware.FlashSuccess, msgEmailConfirmed)

	if resp.AccessToken != "" {
		if res := s.controller.AdoptTokens(ctx); res.Outcome != session.OutcomeFailed {
			http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
			return
		}
	}

	view := confirmView{
		Status:        statusSuccess,
		RedirectTo:    session.PathLogin,
		RedirectAfter: confirmedRedirectAfter,
	}
	s.render(w, r, http.StatusOK, "email_confirmation.html", "Email Confirmed", view)
}

func (s *Server) confirmFailed(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.render(w, r, status, "email_confirmation.html", "Verification Failed", confirmView{Status: statusError, Error: msg})
}
