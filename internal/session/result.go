package session

import "github.com/ghaggin/coachportal/internal/model"

type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// Snapshot is the settled view of a browser session for one request.
type Snapshot struct {
	State State
	User  *model.User
}

func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeOK
	// OutcomeDegraded is a success reached through a fallback path.
	OutcomeDegraded
	OutcomeConfirmationRequired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeConfirmationRequired:
		return "confirmation_required"
	default:
		return "failed"
	}
}

// Fallback names the relaxed path taken to reach a degraded success.
type Fallback int

const (
	FallbackNone Fallback = iota
	// FallbackSynthesizedProfile: login succeeded but the profile fetch did
	// not, the user was built from the login response.
	FallbackSynthesizedProfile
	// FallbackLogin: registration did not yield a usable session and a
	// login with the same credentials was used instead.
	FallbackLogin
	// FallbackDeferredProfile: tokens were adopted but the profile will be
	// loaded by the next page.
	FallbackDeferredProfile
)

func (f Fallback) String() string {
	switch f {
	case FallbackSynthesizedProfile:
		return "synthesized_profile"
	case FallbackLogin:
		return "login"
	case FallbackDeferredProfile:
		return "deferred_profile"
	default:
		return "none"
	}
}

// Result is what every auth action returns. Actions never return errors,
// a failure is OutcomeFailed with Error set.
type Result struct {
	Outcome              Outcome
	Fallback             Fallback
	Redirect             string
	Error                string
	RequiresConfirmation bool
}

func (r Result) Success() bool {
	return r.Outcome != OutcomeFailed
}

func failed(msg, fallbackMsg string) Result {
	if msg == "" {
		msg = fallbackMsg
	}
	return Result{Outcome: OutcomeFailed, Error: msg}
}
