package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ghaggin/coachportal/internal/model"
)

type BookRequest struct {
	ExternalEventID string `json:"calendly_event_id"`
	ScheduledTime   string `json:"scheduled_time"`
}

type BookResponse struct {
	Message   string `json:"message"`
	BookingID string `json:"booking_id"`
}

// Availability is passed through untouched, its shape belongs to the
// scheduling provider.
func (c *Client) Availability(ctx context.Context) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/bookings/availability", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) SchedulerConfig(ctx context.Context) (*model.SchedulerConfig, error) {
	var resp model.SchedulerConfig
	if err := c.do(ctx, http.MethodGet, "/bookings/config", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Book(ctx context.Context, req BookRequest) (*BookResponse, error) {
	var resp BookResponse
	if err := c.do(ctx, http.MethodPost, "/bookings/book", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Bookings(ctx context.Context) ([]model.Booking, error) {
	var resp []model.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
