package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type Booking struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ExternalEventID string    `json:"calendly_event_id"`
	ScheduledTime   Timestamp `json:"scheduled_time"`
	Status          string    `json:"status"`
	CreatedAt       Timestamp `json:"created_at"`
}

// SchedulerConfig describes the embedded scheduling widget. A nil Username
// means the widget is not configured on the backend.
type SchedulerConfig struct {
	Username  *string `json:"calendly_username"`
	EventType *string `json:"calendly_event_type"`
	Error     string  `json:"error,omitempty"`
}

// Timestamp accepts the ISO-8601 variants the backend emits, with or
// without a zone. Zoneless values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
