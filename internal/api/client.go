package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ghaggin/coachportal/internal/config"
	"github.com/ghaggin/coachportal/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TokenStore is where the client reads the bearer token from and where
// login-style calls leave the pair they receive.
type TokenStore interface {
	AccessToken(ctx context.Context) string
	SetTokens(ctx context.Context, pair model.TokenPair) error
}

// Client talks to the coaching backend. Every failure it returns is an
// *Error.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	log     *zap.Logger
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
	Tokens TokenStore
}

func New(p Params) *Client {
	return NewClient(p.Config.Backend.BaseURL, &http.Client{Timeout: p.Config.Backend.Timeout}, p.Tokens, p.Log)
}

func NewClient(baseURL string, hc *http.Client, tokens TokenStore, log *zap.Logger) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		tokens:  tokens,
		log:     log,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: err.Error()}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if token := c.tokens.AccessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.log.Debug("backend request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("decode %s response: %v", endpoint, err),
		}
	}
	return nil
}

// errorFromResponse prefers the body's error, then its message, then the
// status text.
func errorFromResponse(resp *http.Response) *Error {
	e := &Error{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	var eb errorBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
		switch {
		case eb.Error != "":
			e.Message = eb.Error
		case eb.Message != "":
			e.Message = eb.Message
		}
		e.Code = eb.Code
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return e
}
