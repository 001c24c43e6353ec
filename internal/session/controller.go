package session

import (
	"context"
	"strings"
	"time"

	"github.com/ghaggin/coachportal/internal/api"
	"github.com/ghaggin/coachportal/internal/config"
	"github.com/ghaggin/coachportal/internal/model"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	PathLogin         = "/"
	PathSurvey        = "/survey"
	PathDashboard     = "/dashboard"
	PathCheckEmail    = "/check-email"
	MsgConfirmEmail   = "Please check your email to confirm your account before logging in."
	msgLoginFailed    = "Login failed"
	msgRegisterFailed = "Registration failed"

	// loadBudget bounds how long a page waits for the profile before
	// rendering the loading placeholder instead.
	loadBudget = 5 * time.Second
	ledgerTTL  = 10 * time.Minute
)

// Store is the per-browser state the controller reads and writes.
type Store interface {
	ID(ctx context.Context) string
	AccessToken(ctx context.Context) string
	ClearTokens(ctx context.Context)
	User(ctx context.Context) (*model.User, bool)
	SetUser(ctx context.Context, user *model.User)
	ClearUser(ctx context.Context)
	SetPendingEmail(ctx context.Context, email string)
}

// Backend is the subset of the gateway the controller drives.
type Backend interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	CurrentUser(ctx context.Context) (*api.CurrentUserResponse, error)
	Logout(ctx context.Context) error
}

// Controller owns the authentication state of each browser session:
// loading it on a page load and moving it through login, registration,
// logout and survey completion.
type Controller struct {
	store   Store
	backend Backend
	log     *zap.Logger
	clock   clockwork.Clock

	settle time.Duration
	budget time.Duration

	profiles singleflight.Group
	ledger   *ledger
}

type Params struct {
	fx.In

	Config  *config.Config
	Log     *zap.Logger
	Clock   clockwork.Clock
	Store   Store
	Backend Backend
}

func New(p Params) *Controller {
	return &Controller{
		store:   p.Store,
		backend: p.Backend,
		log:     p.Log,
		clock:   p.Clock,
		settle:  p.Config.Session.RegisterSettle,
		budget:  loadBudget,
		ledger:  newLedger(p.Clock, ledgerTTL),
	}
}

// Init settles the session for the current request. A held user is
// authoritative; otherwise a stored token is exchanged for the profile.
// Concurrent loads of the same token share one backend call, and a load
// whose token was replaced meanwhile reports StateLoading and writes
// nothing.
func (c *Controller) Init(ctx context.Context) Snapshot {
	if user, ok := c.store.User(ctx); ok {
		return Snapshot{State: StateAuthenticated, User: user}
	}

	token := c.store.AccessToken(ctx)
	if token == "" {
		return Snapshot{State: StateAnonymous}
	}

	sid := c.store.ID(ctx)
	if c.ledger.superseded(sid, token) {
		return Snapshot{State: StateLoading}
	}

	user, done, err := c.loadProfile(ctx, token)
	if !done {
		return Snapshot{State: StateLoading}
	}
	if c.ledger.superseded(sid, token) {
		return Snapshot{State: StateLoading}
	}

	if err != nil {
		c.log.Info("stored token rejected, clearing", zap.Error(err))
		c.store.ClearTokens(ctx)
		return Snapshot{State: StateAnonymous}
	}

	c.store.SetUser(ctx, user)
	return Snapshot{State: StateAuthenticated, User: user}
}

func (c *Controller) loadProfile(ctx context.Context, token string) (*model.User, bool, error) {
	ch := c.profiles.DoChan(token, func() (any, error) {
		resp, err := c.backend.CurrentUser(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		return resp.User.User(), nil
	})

	timer := c.clock.NewTimer(c.budget)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, true, r.Err
		}
		// copy, the pointer is shared between joined callers
		user := *r.Val.(*model.User)
		return &user, true, nil
	case <-timer.Chan():
		return nil, false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Login exchanges credentials for tokens and loads the profile. When the
// profile cannot be fetched the user is synthesized from the login
// response and the result is degraded rather than failed.
func (c *Controller) Login(ctx context.Context, email, password string) Result {
	resp, err := c.backend.Login(ctx, email, password)
	if err != nil {
		c.log.Info("login failed", zap.String("email", email), zap.Error(err))
		return failed(api.Message(err), msgLoginFailed)
	}
	c.ledger.record(c.store.ID(ctx), resp.AccessToken)

	res := Result{Outcome: OutcomeOK}

	var user *model.User
	me, err := c.backend.CurrentUser(ctx)
	if err != nil {
		c.log.Warn("profile fetch after login failed, using login data", zap.Error(err))
		user = synthesizeUser(resp, email)
		res.Outcome = OutcomeDegraded
		res.Fallback = FallbackSynthesizedProfile
	} else {
		user = me.User.User()
	}

	c.store.SetUser(ctx, user)
	res.Redirect = landing(user)
	return res
}

func synthesizeUser(resp *api.LoginResponse, email string) *model.User {
	addr := resp.Email
	if addr == "" {
		addr = email
	}
	name, _, _ := strings.Cut(email, "@")
	return &model.User{
		ID:    resp.UserID,
		Email: addr,
		Name:  name,
	}
}

// Register creates the account and then follows whichever path the
// backend response allows: confirmation pending, direct session, or a
// login with the same credentials.
func (c *Controller) Register(ctx context.Context, email, password, name, promoterCode string) Result {
	resp, err := c.backend.Register(ctx, api.RegisterRequest{
		Email:        email,
		Password:     password,
		FullName:     name,
		PromoterCode: promoterCode,
	})
	if err != nil {
		c.log.Info("registration failed", zap.String("email", email), zap.Error(err))
		if api.IsEmailUnconfirmed(err) {
			return failed(MsgConfirmEmail, "")
		}
		return failed(api.Message(err), msgRegisterFailed)
	}

	if resp.RequiresEmailConfirmation {
		c.store.SetPendingEmail(ctx, email)
		return Result{
			Outcome:              OutcomeConfirmationRequired,
			Redirect:             PathCheckEmail,
			RequiresConfirmation: true,
		}
	}

	if !resp.Tokens().Complete() {
		return c.loginFallback(ctx, email, password)
	}

	c.ledger.record(c.store.ID(ctx), resp.AccessToken)
	c.wait(ctx, c.settle)

	me, err := c.backend.CurrentUser(ctx)
	if err != nil {
		c.log.Warn("profile fetch after registration failed, trying login", zap.Error(err))
		c.store.ClearTokens(ctx)
		return c.loginFallback(ctx, email, password)
	}

	user := me.User.User()
	c.store.SetUser(ctx, user)
	return Result{Outcome: OutcomeOK, Redirect: landing(user)}
}

func (c *Controller) loginFallback(ctx context.Context, email, password string) Result {
	res := c.Login(ctx, email, password)
	if res.Success() {
		res.Outcome = OutcomeDegraded
		res.Fallback = FallbackLogin
	}
	return res
}

// AdoptTokens finishes a flow that stored tokens outside Login, such as
// email confirmation. Without a profile the user is sent to the dashboard
// and the next page load resolves the session.
func (c *Controller) AdoptTokens(ctx context.Context) Result {
	token := c.store.AccessToken(ctx)
	if token == "" {
		return Result{Outcome: OutcomeFailed, Redirect: PathLogin}
	}
	c.ledger.record(c.store.ID(ctx), token)

	me, err := c.backend.CurrentUser(ctx)
	if err != nil {
		c.log.Warn("profile fetch after confirmation failed", zap.Error(err))
		return Result{
			Outcome:  OutcomeDegraded,
			Fallback: FallbackDeferredProfile,
			Redirect: PathDashboard,
		}
	}

	user := me.User.User()
	c.store.SetUser(ctx, user)
	return Result{Outcome: OutcomeOK, Redirect: landing(user)}
}

// Logout tells the backend but does not depend on it: local state is
// always cleared.
func (c *Controller) Logout(ctx context.Context) Result {
	if err := c.backend.Logout(ctx); err != nil {
		c.log.Warn("backend logout failed", zap.Error(err))
	}
	c.clear(ctx)
	return Result{Outcome: OutcomeOK, Redirect: PathLogin}
}

// Invalidate drops the session after the backend rejected its token.
func (c *Controller) Invalidate(ctx context.Context) {
	c.clear(ctx)
}

func (c *Controller) clear(ctx context.Context) {
	c.ledger.record(c.store.ID(ctx), "")
	c.store.ClearTokens(ctx)
	c.store.ClearUser(ctx)
}

// CompleteSurvey marks the held user as onboarded. It assumes the survey
// submission already succeeded and does not ask the backend.
func (c *Controller) CompleteSurvey(ctx context.Context) Result {
	user, ok := c.store.User(ctx)
	if !ok {
		return Result{Outcome: OutcomeFailed, Error: "not signed in", Redirect: PathLogin}
	}

	updated := *user
	updated.SurveyCompleted = true
	c.store.SetUser(ctx, &updated)
	return Result{Outcome: OutcomeOK, Redirect: PathDashboard}
}

func (c *Controller) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-c.clock.After(d):
	case <-ctx.Done():
	}
}

func landing(user *model.User) string {
	if user.SurveyCompleted {
		return PathDashboard
	}
	return PathSurvey
}
