package di

import (
	bookingService "huddle/internal/domains/booking/service"
	"huddle/internal/jobs"
	"huddle/transport/http"
)

// Service bundles everything main needs to boot: the HTTP server, the
// booking service whose index must be hydrated before traffic, and the
// background janitor.
type Service struct {
	HTTP     *http.HTTP
	Bookings bookingService.Booking
	Janitor  *jobs.Janitor
}
