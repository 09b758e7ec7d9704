package dto

import (
	"time"

	"github.com/google/uuid"

	"huddle/internal/domains/booking/model"
	"huddle/shared"
	"huddle/shared/constant"
	gDto "huddle/shared/dto"
	gModel "huddle/shared/model"
	"huddle/shared/timerange"
	"huddle/shared/timezone"
)

type CreateBookingRequest struct {
	RoomID string              `json:"room_id" validate:"required,uuid4"`
	Title  string              `json:"title"   validate:"required,max=200"`
	Range  timerange.TimeRange `json:"range"   validate:"required,selfcheck"`
}

func (c *CreateBookingRequest) ToModel(organizerID string) model.Booking {
	return model.Booking{
		ID:          uuid.NewString(),
		RoomID:      c.RoomID,
		OrganizerID: organizerID,
		Title:       c.Title,
		StartTime:   c.Range.Start,
		EndTime:     c.Range.End,
		Status:      model.StatusBooked,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  organizerID,
			ModifiedBy: organizerID,
		},
	}
}

type AlterBookingRequest struct {
	Title string              `json:"title" validate:"omitempty,max=200"`
	Range timerange.TimeRange `json:"range" validate:"required,selfcheck"`
}

type ListBookingsRequest struct {
	OrganizerID string    `json:"organizer_id" validate:"omitempty,uuid4"`
	RoomID      string    `json:"room_id"      validate:"omitempty,uuid4"`
	Status      string    `json:"status"       validate:"omitempty,oneof=booked cancelled"`
	From        time.Time `json:"from"         validate:"omitempty"`
	To          time.Time `json:"to"           validate:"omitempty"`
}

// ToFilter builds the repository filter for the list request. The window
// matches bookings that intersect [From, To), consistent with the half-open
// overlap rule used everywhere else.
func (l *ListBookingsRequest) ToFilter() gDto.FilterGroup {
	filters := []any{}

	if l.OrganizerID != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldOrganizerID,
			Operator: gDto.FilterOperatorEq,
			Value:    l.OrganizerID,
			Table:    model.TableName,
		})
	}

	if l.RoomID != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldRoomID,
			Operator: gDto.FilterOperatorEq,
			Value:    l.RoomID,
			Table:    model.TableName,
		})
	}

	if l.Status != constant.Empty {
		filters = append(filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    l.Status,
			Table:    model.TableName,
		})
	}

	if !l.From.IsZero() {
		filters = append(filters, gDto.Filter{
			ArgName:  "window_from",
			Field:    model.FieldEndTime,
			Operator: gDto.FilterOperatorGreaterEq,
			Value:    l.From,
			Table:    model.TableName,
		})
	}

	if !l.To.IsZero() {
		filters = append(filters, gDto.Filter{
			ArgName:  "window_to",
			Field:    model.FieldStartTime,
			Operator: gDto.FilterOperatorLessEq,
			Value:    l.To,
			Table:    model.TableName,
		})
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  filters,
	}
}

type BookingResponse struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	OrganizerID string `json:"organizer_id"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Status      string `json:"status"`
	gDto.Metadata
}

func (b *BookingResponse) FromModel(model model.Booking) {
	b.ID = model.ID
	b.RoomID = model.RoomID
	b.OrganizerID = model.OrganizerID
	b.Title = model.Title
	b.Start = timezone.Format(model.StartTime, constant.DateFormat)
	b.End = timezone.Format(model.EndTime, constant.DateFormat)
	b.Status = model.Status
	b.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (g *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	g.TotalData = totalData
	g.TotalPage = shared.CalculateTotalPage(totalData, limit)

	g.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		g.Bookings[i].FromModel(mod)
	}
}

const (
	EventTypeCreated   = "booking.created"
	EventTypeCancelled = "booking.cancelled"
	EventTypeAltered   = "booking.altered"
)

// BookingEvent is the message published to the booking events topic on every
// state change.
type BookingEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	RoomID      string    `json:"room_id"`
	OrganizerID string    `json:"organizer_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, booking model.Booking) BookingEvent {
	return BookingEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		BookingID:   booking.ID,
		RoomID:      booking.RoomID,
		OrganizerID: booking.OrganizerID,
		Start:       booking.StartTime,
		End:         booking.EndTime,
		OccurredAt:  timezone.Now(),
	}
}
