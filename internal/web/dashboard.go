package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/ghaggin/coachportal/internal/api"
	"github.com/ghaggin/coachportal/internal/booking"
	"github.com/ghaggin/coachportal/internal/guard"
	"github.com/ghaggin/coachportal/internal/middleware"
	"github.com/ghaggin/coachportal/internal/model"
	"go.uber.org/zap"
)

const (
	msgBookingsFailed = "Failed to load bookings"

	eventBookings = "bookings"
	eventFailed   = "failed"
	eventExpired  = "expired"

	schedulerBase = "https://calendly.com/"
)

type bookingsView struct {
	View  booking.View
	Error string
}

type dashboardView struct {
	SchedulerURL   string
	SchedulerError string
	Bookings       bookingsView
	Files          []model.SharedFile
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := guard.UserFrom(ctx)

	bookings, err := s.api.Bookings(ctx)
	if api.Status(err) == http.StatusUnauthorized {
		s.expired(w, r)
		return
	}

	view := dashboardView{Bookings: s.bookingsView(bookings, err)}
	if err != nil {
		s.sessions.Flash(ctx, middleware.FlashError, msgBookingsFailed)
	}

	cfg, err := s.api.SchedulerConfig(ctx)
	if err != nil {
		s.log.Warn("scheduler config unavailable", zap.Error(err))
	} else {
		view.SchedulerURL = schedulerURL(cfg, hostname(r.Host), user.Email)
		view.SchedulerError = cfg.Error
	}

	files, err := s.files.ListFiles(ctx)
	if err != nil {
		s.log.Warn("shared files unavailable", zap.Error(err))
	}
	view.Files = files

	s.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", view)
}

func (s *Server) bookingsView(bookings []model.Booking, err error) bookingsView {
	if err != nil {
		s.log.Warn("bookings fetch failed", zap.Error(err))
		return bookingsView{Error: msgBookingsFailed}
	}
	return bookingsView{View: booking.Partition(bookings, s.clock.Now())}
}

// bookingsFragment serves the bookings list alone, for the refresh button.
func (s *Server) bookingsFragment(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.api.Bookings(r.Context())
	if api.Status(err) == http.StatusUnauthorized {
		s.expired(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.renderer.Partial(w, eventBookings, s.bookingsView(bookings, err)); err != nil {
		s.log.Error("render bookings failed", zap.Error(err))
	}
}

// bookingStream pushes a fresh bookings list on every refresh interval and
// shortly after the scheduling widget reports a booking. It ends when the
// page goes away or the backend stops accepting the session's token.
func (s *Server) bookingStream(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sid := s.sessions.ID(ctx)
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.log.Error("stream not flushable", zap.Error(err))
		return
	}

	signals, unsubscribe := s.hub.Subscribe(sid)
	defer unsubscribe()

	feed := booking.NewFeed(s.clock, s.config.Dashboard.RefreshInterval, s.config.Dashboard.SignalDelay, s.api.Bookings)
	_ = feed.Run(ctx, signals, func(u booking.Update) {
		event, data := s.streamEvent(u)

		err := writeEvent(w, event, data)
		if err == nil {
			err = rc.Flush()
		}
		if err != nil || event == eventExpired {
			cancel()
		}
	})
}

func (s *Server) streamEvent(u booking.Update) (string, []byte) {
	if api.Status(u.Err) == http.StatusUnauthorized {
		return eventExpired, nil
	}
	if u.Err != nil {
		s.log.Warn("bookings refresh failed", zap.String("reason", string(u.Reason)), zap.Error(u.Err))
		return eventFailed, []byte(msgBookingsFailed)
	}

	buf := &bytes.Buffer{}
	view := bookingsView{View: booking.Partition(u.Bookings, u.At)}
	if err := s.renderer.Partial(buf, eventBookings, view); err != nil {
		s.log.Error("render bookings failed", zap.Error(err))
		return eventFailed, []byte(msgBookingsFailed)
	}
	return eventBookings, buf.Bytes()
}

func writeEvent(w io.Writer, event string, data []byte) error {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "event: %s\n", event)
	for _, line := range bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

// scheduled relays the widget's booking notice to the streams open for
// this browser session.
func (s *Server) scheduled(w http.ResponseWriter, r *http.Request) {
	sid := s.sessions.ID(r.Context())
	n := s.hub.Notify(sid)
	s.log.Debug("booking scheduled", zap.Int("listeners", n))
	writeJSON(w, http.StatusAccepted, map[string]int{"listeners": n})
}

// schedulerURL builds the inline widget address, or "" when the backend
// has no scheduling account configured.
func schedulerURL(cfg *model.SchedulerConfig, domain, email string) string {
	if cfg.Username == nil || strings.TrimSpace(*cfg.Username) == "" {
		return ""
	}

	path := strings.TrimSpace(*cfg.Username)
	if cfg.EventType != nil && strings.TrimSpace(*cfg.EventType) != "" {
		path += "/" + strings.TrimSpace(*cfg.EventType)
	}

	q := url.Values{}
	q.Set("embed_domain", domain)
	q.Set("embed_type", "Inline")
	q.Set("email", email)
	return schedulerBase + path + "?" + q.Encode()
}

func hostname(host string) string {
	h, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}
	return h
}
