package middleware

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/coachportal/internal/config"
	"github.com/ghaggin/coachportal/internal/model"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	accessTokenKey  = "auth_token"
	refreshTokenKey = "refresh_token"
	userKey         = "user"
	pendingEmailKey = "pending_email"
	flashKey        = "flashes"
	sessionIDKey    = "sid"
	confirmationKey = "confirmation"

	cookieName = "coachportal_session"
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a toast shown on the next rendered page.
type Flash struct {
	Kind    FlashKind
	Message string
}

// Confirmation is an email confirmation token lifted out of the URL.
type Confirmation struct {
	Token string
	Type  string
}

// SessionManager keeps the per-browser token pair, user and transient page
// state in a server-side session addressed by cookie.
type SessionManager struct {
	impl *scs.SessionManager
}

type SessionParams struct {
	fx.In

	LC     fx.Lifecycle
	Config *config.Config
	Log    *zap.Logger
}

func NewSessionManager(p SessionParams) (*SessionManager, error) {
	sm := NewMemorySessionManager()
	sm.impl.Lifetime = p.Config.Session.Lifetime
	sm.impl.Cookie.Secure = p.Config.Server.Secure

	if p.Config.Session.Redis.Addr != "" {
		store, err := NewRedisStore(p.Config.Session.Redis)
		if err != nil {
			return nil, err
		}
		sm.impl.Store = store
		p.LC.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return store.Close()
			},
		})
		p.Log.Info("session store: redis", zap.String("addr", p.Config.Session.Redis.Addr))
	} else {
		p.Log.Info("session store: memory")
	}

	return sm, nil
}

// NewMemorySessionManager returns a manager backed by the in-memory store.
func NewMemorySessionManager() *SessionManager {
	gob.Register(&model.User{})
	gob.Register([]Flash{})
	gob.Register(Confirmation{})

	sm := &SessionManager{}
	sm.impl = scs.New()
	sm.impl.Cookie.Name = cookieName
	sm.impl.Cookie.HttpOnly = true
	sm.impl.Cookie.Persist = true
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode

	return sm
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

// ID is a stable identifier for the browser session, unaffected by token
// renewal.
func (s *SessionManager) ID(ctx context.Context) string {
	id := s.impl.GetString(ctx, sessionIDKey)
	if id == "" {
		id = uuid.NewString()
		s.impl.Put(ctx, sessionIDKey, id)
	}
	return id
}

func (s *SessionManager) AccessToken(ctx context.Context) string {
	return s.impl.GetString(ctx, accessTokenKey)
}

func (s *SessionManager) SetAccessToken(ctx context.Context, token string) {
	s.impl.Put(ctx, accessTokenKey, token)
}

func (s *SessionManager) RefreshToken(ctx context.Context) string {
	return s.impl.GetString(ctx, refreshTokenKey)
}

func (s *SessionManager) SetRefreshToken(ctx context.Context, token string) {
	s.impl.Put(ctx, refreshTokenKey, token)
}

// SetTokens stores both tokens and rotates the session cookie so a session
// id issued before login cannot be reused after it.
func (s *SessionManager) SetTokens(ctx context.Context, pair model.TokenPair) error {
	if err := s.impl.RenewToken(ctx); err != nil {
		return err
	}
	s.SetAccessToken(ctx, pair.AccessToken)
	s.SetRefreshToken(ctx, pair.RefreshToken)
	return nil
}

func (s *SessionManager) ClearTokens(ctx context.Context) {
	s.impl.Remove(ctx, accessTokenKey)
	s.impl.Remove(ctx, refreshTokenKey)
}

func (s *SessionManager) User(ctx context.Context) (*model.User, bool) {
	user, ok := s.impl.Get(ctx, userKey).(*model.User)
	return user, ok
}

func (s *SessionManager) SetUser(ctx context.Context, user *model.User) {
	s.impl.Put(ctx, userKey, user)
}

func (s *SessionManager) ClearUser(ctx context.Context) {
	s.impl.Remove(ctx, userKey)
}

func (s *SessionManager) PendingEmail(ctx context.Context) string {
	return s.impl.GetString(ctx, pendingEmailKey)
}

func (s *SessionManager) SetPendingEmail(ctx context.Context, email string) {
	s.impl.Put(ctx, pendingEmailKey, email)
}

// PutConfirmation parks a confirmation token so the page can be reloaded
// with a clean URL.
func (s *SessionManager) PutConfirmation(ctx context.Context, c Confirmation) {
	s.impl.Put(ctx, confirmationKey, c)
}

func (s *SessionManager) PopConfirmation(ctx context.Context) (Confirmation, bool) {
	c, ok := s.impl.Pop(ctx, confirmationKey).(Confirmation)
	return c, ok && c.Token != ""
}

func (s *SessionManager) Flash(ctx context.Context, kind FlashKind, msg string) {
	flashes, _ := s.impl.Get(ctx, flashKey).([]Flash)
	s.impl.Put(ctx, flashKey, append(flashes, Flash{Kind: kind, Message: msg}))
}

func (s *SessionManager) PopFlashes(ctx context.Context) []Flash {
	flashes, _ := s.impl.Pop(ctx, flashKey).([]Flash)
	return flashes
}
