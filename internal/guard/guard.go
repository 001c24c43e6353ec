package guard

import (
	"context"
	"net/http"

	"github.com/ghaggin/coachportal/internal/model"
	"github.com/ghaggin/coachportal/internal/session"
)

// Requirement is the survey state a protected page demands.
type Requirement int

const (
	SurveyPending Requirement = iota
	SurveyDone
	// SignedIn admits any authenticated user regardless of survey state.
	SignedIn
)

type Action int

const (
	Allow Action = iota
	Wait
	Redirect
)

type Decision struct {
	Action   Action
	Location string
}

// Decide is the one authorization policy for protected pages: the user
// must be signed in and their survey state must match the page.
func Decide(snap session.Snapshot, req Requirement) Decision {
	switch {
	case snap.State == session.StateUninitialized, snap.State == session.StateLoading:
		return Decision{Action: Wait}
	case !snap.Authenticated():
		return Decision{Action: Redirect, Location: session.PathLogin}
	}

	switch {
	case req == SurveyDone && !snap.User.SurveyCompleted:
		return Decision{Action: Redirect, Location: session.PathSurvey}
	case req == SurveyPending && snap.User.SurveyCompleted:
		return Decision{Action: Redirect, Location: session.PathDashboard}
	}
	return Decision{Action: Allow}
}

// Initializer settles the session for a request.
type Initializer interface {
	Init(ctx context.Context) session.Snapshot
}

type userKey struct{}

// UserFrom returns the user a guard admitted.
func UserFrom(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey{}).(*model.User)
	return u, ok
}

func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// Require returns middleware enforcing req. While the session is still
// resolving, waiting is rendered instead of the page.
func Require(init Initializer, req Requirement, waiting http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := init.Init(r.Context())

			d := Decide(snap, req)
			switch d.Action {
			case Wait:
				waiting.ServeHTTP(w, r)
			case Redirect:
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), snap.User)))
			}
		})
	}
}
