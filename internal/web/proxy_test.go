package web

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_RequiresSession(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/bookings", "/api/bookings/availability", "/api/survey", "/api/files"} {
		status, _, body := h.get(path)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.JSONEq(t, `{"error":"not authenticated"}`, body, path)
	}
}

func TestAPI_Proxies(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	h := newHarness(t)
	h.backend.with(seedBookings)
	h.login()

	status, _, body := h.get("/api/bookings")
	require.Equal(http.StatusOK, status)
	assert.Contains(body, `"id":"next-1"`)
	assert.Contains(body, `"scheduled_time":"2025-05-01T10:00:00Z"`)

	status, _, body = h.get("/api/bookings/availability")
	assert.Equal(http.StatusOK, status)
	assert.JSONEq(`{"collection":[]}`, body)

	status, _, body = h.get("/api/survey")
	assert.Equal(http.StatusOK, status)
	assert.JSONEq(`[{"goals":"career"}]`, body)

	status, body = h.postJSON("/api/bookings/book", `{"calendly_event_id":"e9","scheduled_time":"2025-09-01T09:00:00Z"}`)
	assert.Equal(http.StatusCreated, status)
	assert.JSONEq(`{"message":"Booking created","booking_id":"b9"}`, body)
	h.backend.with(func(b *fakeBackend) {
		require.Len(b.booked, 1)
		assert.Equal("e9", b.booked[0]["calendly_event_id"])
	})

	status, body = h.postJSON("/api/bookings/book", `{"unknown":1}`)
	assert.Equal(http.StatusBadRequest, status)
	assert.JSONEq(`{"error":"invalid booking request"}`, body)

	status, _, body = h.get("/api/files/f1")
	assert.Equal(http.StatusOK, status)
	assert.Contains(body, "Goal_Setting_Worksheet.pdf")

	status, _, _ = h.get("/api/files/nope")
	assert.Equal(http.StatusNotFound, status)
}

func TestAPI_TokenRejected(t *testing.T) {
	assert := assert.New(t)

	h := newHarness(t)
	h.backend.with(seedBookings)
	h.login()
	h.backend.with(func(b *fakeBackend) { b.bookingsStatus = http.StatusUnauthorized })

	status, _, body := h.get("/api/bookings")
	assert.Equal(http.StatusUnauthorized, status)
	assert.JSONEq(`{"error":"Invalid token"}`, body)

	status, _, _ = h.get("/api/files")
	assert.Equal(http.StatusUnauthorized, status, "session was dropped")
}
