package booking_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddle/infras/otel/mocks"
	"huddle/internal/handlers/booking"
)

func TestBookingHandler_GetBookings_MalformedWindow(t *testing.T) {
	// the service is never reached; a malformed window must fail fast
	handler := booking.New(nil, nil, mocks.NewOtel())

	tests := []struct {
		name  string
		query string
		param string
	}{
		{
			name:  "malformed from",
			query: "?from=not-a-timestamp",
			param: "from",
		},
		{
			name:  "malformed to",
			query: "?from=2026-09-01T09:00:00Z&to=yesterdayish",
			param: "to",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/v1/bookings"+tt.query, nil)
			recorder := httptest.NewRecorder()

			handler.GetBookings(recorder, request)

			require.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Contains(t, recorder.Body.String(), "invalid "+tt.param+" parameter")
		})
	}
}
