package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/ghaggin/coachportal/internal/model"
)

func (c *Client) SubmitSurvey(ctx context.Context, survey model.SurveyResponse) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.do(ctx, http.MethodPost, "/surveys/submit", survey, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Survey returns the stored survey rows for userID as the backend sent them.
func (c *Client) Survey(ctx context.Context, userID string) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/surveys/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
