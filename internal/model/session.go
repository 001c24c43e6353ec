package model

// User is the authenticated account as the dashboard sees it. It lives in
// the server-side session and is rebuilt from the access token on load.
type User struct {
	ID              string
	Email           string
	Name            string
	SurveyCompleted bool
}

// TokenPair holds the credentials issued by the backend identity service.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Complete reports whether both halves of the pair are present.
func (t TokenPair) Complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}
