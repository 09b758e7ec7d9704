package model

import (
	"time"

	"huddle/shared/model"
	"huddle/shared/timerange"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID          = "id"
	FieldRoomID      = "room_id"
	FieldOrganizerID = "organizer_id"
	FieldTitle       = "title"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldStatus      = "status"
)

const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Booking is a confirmed reservation of one room for one time range. A
// cancelled booking keeps its row; only booked rows hold an interval in the
// availability index.
type Booking struct {
	ID          string    `db:"id"`
	RoomID      string    `db:"room_id"`
	OrganizerID string    `db:"organizer_id"`
	Title       string    `db:"title"`
	StartTime   time.Time `db:"start_time"`
	EndTime     time.Time `db:"end_time"`
	Status      string    `db:"status"`
	model.Metadata
}

func (b Booking) Range() timerange.TimeRange {
	return timerange.TimeRange{Start: b.StartTime, End: b.EndTime}
}

func (b Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}
