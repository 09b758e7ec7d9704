package dto

import (
	"time"

	"huddle/infras/normalizer"
	roomDto "huddle/internal/domains/room/model/dto"
	"huddle/shared/constant"
	"huddle/shared/failure"
	"huddle/shared/timerange"
)

type MeetingRequest struct {
	Range             timerange.TimeRange `json:"range"              validate:"required,selfcheck"`
	ParticipantCount  int                 `json:"participant_count"  validate:"required,min=1"`
	PreferredLocation string              `json:"preferred_location" validate:"omitempty,max=100"`
	RequiredEquipment []string            `json:"required_equipment" validate:"omitempty,dive,max=50"`
}

// FromIntent converts a normalized free-text intent into a meeting request.
// The collaborator emits RFC3339 instants; anything else is its parse bug and
// surfaces as a bad request.
func (m *MeetingRequest) FromIntent(intent normalizer.MeetingIntent) error {
	start, err := time.Parse(constant.DateFormat, intent.Start)
	if err != nil {
		return failure.BadRequestFromString("could not understand the meeting start time") // nolint:wrapcheck
	}

	end, err := time.Parse(constant.DateFormat, intent.End)
	if err != nil {
		return failure.BadRequestFromString("could not understand the meeting end time") // nolint:wrapcheck
	}

	m.Range = timerange.TimeRange{Start: start, End: end}
	m.ParticipantCount = intent.ParticipantCount
	m.PreferredLocation = intent.PreferredLocation
	m.RequiredEquipment = intent.RequiredEquipment

	return nil
}

type RecommendFromTextRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// Recommendation pairs a bookable room with its fit score and the list of
// ways it falls short of the request. A perfect fit scores 1.0 with no
// deviations.
type Recommendation struct {
	Room       roomDto.RoomResponse `json:"room"`
	Score      float64              `json:"score"`
	Deviations []string             `json:"deviations"`
}

type RecommendationsResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}
