package api

import (
	"context"
	"net/http"

	"github.com/ghaggin/coachportal/internal/model"
)

type RegisterRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FullName     string `json:"full_name"`
	PromoterCode string `json:"promoter_code,omitempty"`
}

type RegisterResponse struct {
	Message                   string `json:"message"`
	UserID                    string `json:"user_id"`
	RequiresEmailConfirmation bool   `json:"requires_email_confirmation"`
	AccessToken               string `json:"access_token"`
	RefreshToken              string `json:"refresh_token"`
}

func (r *RegisterResponse) Tokens() model.TokenPair {
	return model.TokenPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

type Profile struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	SurveyCompleted bool   `json:"survey_completed"`
}

func (p Profile) User() *model.User {
	return &model.User{
		ID:              p.ID,
		Email:           p.Email,
		Name:            p.FullName,
		SurveyCompleted: p.SurveyCompleted,
	}
}

type CurrentUserResponse struct {
	User Profile `json:"user"`
}

type VerifyEmailResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Error        string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Register creates an account. Tokens are stored only when the backend
// returned both of them and did not ask for email confirmation.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}

	if pair := resp.Tokens(); !resp.RequiresEmailConfirmation && pair.Complete() {
		if err := c.tokens.SetTokens(ctx, pair); err != nil {
			return nil, &Error{Message: err.Error()}
		}
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}

	pair := model.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if err := c.tokens.SetTokens(ctx, pair); err != nil {
		return nil, &Error{Message: err.Error()}
	}
	return &resp, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*CurrentUserResponse, error) {
	var resp CurrentUserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token, typ string) (*VerifyEmailResponse, error) {
	if typ == "" {
		typ = "signup"
	}
	body := map[string]string{"token": token, "type": typ}

	var resp VerifyEmailResponse
	if err := c.do(ctx, http.MethodPost, "/auth/verify-email", body, &resp); err != nil {
		return nil, err
	}

	pair := model.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if resp.Success && pair.Complete() {
		if err := c.tokens.SetTokens(ctx, pair); err != nil {
			return nil, &Error{Message: err.Error()}
		}
	}
	return &resp, nil
}

func (c *Client) ResendConfirmation(ctx context.Context, email string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.do(ctx, http.MethodPost, "/auth/resend-confirmation", map[string]string{"email": email}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}
