package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"huddle/config"
	"huddle/infras/normalizer"
	normalizerMocks "huddle/infras/normalizer/mocks"
	"huddle/infras/otel/mocks"
	"huddle/internal/availability"
	"huddle/internal/domains/recommendation/model/dto"
	"huddle/internal/domains/recommendation/service"
	roomModel "huddle/internal/domains/room/model"
	roomMocks "huddle/internal/domains/room/service/mocks"
	"huddle/shared/failure"
	"huddle/shared/timerange"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Recommendation.CapacityWeight = 1
	cfg.App.Recommendation.EquipmentWeight = 1
	cfg.App.Recommendation.LocationWeight = 1
	cfg.App.Recommendation.CapacitySlack = 1.5
	cfg.App.Recommendation.MaxResults = 10

	return cfg
}

func meetingRange() timerange.TimeRange {
	return timerange.TimeRange{
		Start: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRecommendationService_Recommend_PerfectFit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRooms := roomMocks.NewMockRoom(ctrl)
	index := availability.NewIndex()

	svc := service.New(mockRooms, index, normalizerMocks.NewMockNormalizer(ctrl), testConfig(), mocks.NewOtel())

	// capacity 6 for 4 people is within the 1.5 slack, equipment and
	// location both match
	mockRooms.EXPECT().ListActive(gomock.Any()).Return([]roomModel.Room{
		{
			ID:        "room-1",
			Name:      "Borneo",
			Building:  "HQ",
			Capacity:  6,
			Equipment: []string{"projector", "whiteboard"},
			Status:    roomModel.StatusActive,
		},
	}, nil)

	res, err := svc.Recommend(context.Background(), dto.MeetingRequest{
		Range:             meetingRange(),
		ParticipantCount:  4,
		PreferredLocation: "HQ",
		RequiredEquipment: []string{"projector"},
	})

	require.NoError(t, err)
	require.Len(t, res.Recommendations, 1)
	assert.InDelta(t, 1.0, res.Recommendations[0].Score, 1e-9)
	assert.Empty(t, res.Recommendations[0].Deviations)
}

func TestRecommendationService_Recommend_HardFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRooms := roomMocks.NewMockRoom(ctrl)
	index := availability.NewIndex()

	svc := service.New(mockRooms, index, normalizerMocks.NewMockNormalizer(ctrl), testConfig(), mocks.NewOtel())

	// room-2 is too small, room-3 is occupied for the requested range
	index.Reserve("room-3", meetingRange(), "existing-booking")

	mockRooms.EXPECT().ListActive(gomock.Any()).Return([]roomModel.Room{
		{ID: "room-1", Capacity: 8, Status: roomModel.StatusActive},
		{ID: "room-2", Capacity: 2, Status: roomModel.StatusActive},
		{ID: "room-3", Capacity: 8, Status: roomModel.StatusActive},
	}, nil)

	res, err := svc.Recommend(context.Background(), dto.MeetingRequest{
		Range:            meetingRange(),
		ParticipantCount: 4,
	})

	require.NoError(t, err)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "room-1", res.Recommendations[0].Room.ID)
}

func TestRecommendationService_Recommend_DeviationsAndOrdering(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRooms := roomMocks.NewMockRoom(ctrl)
	index := availability.NewIndex()

	svc := service.New(mockRooms, index, normalizerMocks.NewMockNormalizer(ctrl), testConfig(), mocks.NewOtel())

	rooms := []roomModel.Room{
		{ID: "room-big", Building: "HQ", Capacity: 40, Equipment: []string{"projector"}, Status: roomModel.StatusActive},
		{ID: "room-fit", Building: "HQ", Capacity: 6, Equipment: []string{"projector"}, Status: roomModel.StatusActive},
		{ID: "room-bare", Building: "Annex", Capacity: 6, Equipment: nil, Status: roomModel.StatusActive},
	}

	mockRooms.EXPECT().ListActive(gomock.Any()).Return(rooms, nil).Times(2)

	req := dto.MeetingRequest{
		Range:             meetingRange(),
		ParticipantCount:  4,
		PreferredLocation: "HQ",
		RequiredEquipment: []string{"projector"},
	}

	res, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Recommendations, 3)

	assert.Equal(t, "room-fit", res.Recommendations[0].Room.ID)
	assert.Empty(t, res.Recommendations[0].Deviations)

	// oversized room scores below the tight fit and says why
	assert.Equal(t, "room-big", res.Recommendations[1].Room.ID)
	assert.Contains(t, res.Recommendations[1].Deviations, "capacity exceeds requirement by 36 seats")

	assert.Equal(t, "room-bare", res.Recommendations[2].Room.ID)
	assert.Contains(t, res.Recommendations[2].Deviations, "missing equipment: projector")
	assert.Contains(t, res.Recommendations[2].Deviations, "located in Annex, not HQ")

	// same input, same ordering
	again, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)

	for i := range res.Recommendations {
		assert.Equal(t, res.Recommendations[i].Room.ID, again.Recommendations[i].Room.ID)
	}
}

func TestRecommendationService_Recommend_StrictLocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRooms := roomMocks.NewMockRoom(ctrl)

	cfg := testConfig()
	cfg.App.Recommendation.StrictLocation = true

	svc := service.New(mockRooms, availability.NewIndex(), normalizerMocks.NewMockNormalizer(ctrl), cfg, mocks.NewOtel())

	mockRooms.EXPECT().ListActive(gomock.Any()).Return([]roomModel.Room{
		{ID: "room-1", Building: "Annex", Capacity: 8, Status: roomModel.StatusActive},
	}, nil)

	res, err := svc.Recommend(context.Background(), dto.MeetingRequest{
		Range:             meetingRange(),
		ParticipantCount:  4,
		PreferredLocation: "HQ",
	})

	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
}

func TestRecommendationService_Recommend_NoCandidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRooms := roomMocks.NewMockRoom(ctrl)

	svc := service.New(mockRooms, availability.NewIndex(), normalizerMocks.NewMockNormalizer(ctrl), testConfig(), mocks.NewOtel())

	mockRooms.EXPECT().ListActive(gomock.Any()).Return([]roomModel.Room{}, nil)

	res, err := svc.Recommend(context.Background(), dto.MeetingRequest{
		Range:            meetingRange(),
		ParticipantCount: 4,
	})

	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
}

func TestRecommendationService_RecommendFromText(t *testing.T) {
	t.Run("normalized intent feeds the engine", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRooms := roomMocks.NewMockRoom(ctrl)
		mockNormalizer := normalizerMocks.NewMockNormalizer(ctrl)

		svc := service.New(mockRooms, availability.NewIndex(), mockNormalizer, testConfig(), mocks.NewOtel())

		mockNormalizer.EXPECT().Normalize(gomock.Any(), "room for four tomorrow morning").Return(normalizer.MeetingIntent{
			Start:            "2026-09-01T09:00:00Z",
			End:              "2026-09-01T10:00:00Z",
			ParticipantCount: 4,
		}, nil)

		mockRooms.EXPECT().ListActive(gomock.Any()).Return([]roomModel.Room{
			{ID: "room-1", Capacity: 6, Status: roomModel.StatusActive},
		}, nil)

		res, err := svc.RecommendFromText(context.Background(), "room for four tomorrow morning")

		require.NoError(t, err)
		require.Len(t, res.Recommendations, 1)
	})

	t.Run("parse failure surfaces as bad request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockNormalizer := normalizerMocks.NewMockNormalizer(ctrl)

		svc := service.New(roomMocks.NewMockRoom(ctrl), availability.NewIndex(), mockNormalizer, testConfig(), mocks.NewOtel())

		mockNormalizer.EXPECT().Normalize(gomock.Any(), gomock.Any()).
			Return(normalizer.MeetingIntent{}, failure.BadRequestFromString("could not extract a meeting request from the text"))

		_, err := svc.RecommendFromText(context.Background(), "gibberish")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("non-positive participant count surfaces as bad request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockNormalizer := normalizerMocks.NewMockNormalizer(ctrl)

		svc := service.New(roomMocks.NewMockRoom(ctrl), availability.NewIndex(), mockNormalizer, testConfig(), mocks.NewOtel())

		// well-formed times but nobody attending; the engine must not rank
		// rooms for it
		mockNormalizer.EXPECT().Normalize(gomock.Any(), gomock.Any()).Return(normalizer.MeetingIntent{
			Start:            "2026-09-01T09:00:00Z",
			End:              "2026-09-01T10:00:00Z",
			ParticipantCount: 0,
		}, nil)

		_, err := svc.RecommendFromText(context.Background(), "an empty meeting")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("malformed intent times surface as bad request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockNormalizer := normalizerMocks.NewMockNormalizer(ctrl)

		svc := service.New(roomMocks.NewMockRoom(ctrl), availability.NewIndex(), mockNormalizer, testConfig(), mocks.NewOtel())

		mockNormalizer.EXPECT().Normalize(gomock.Any(), gomock.Any()).Return(normalizer.MeetingIntent{
			Start:            "next tuesday",
			End:              "later",
			ParticipantCount: 4,
		}, nil)

		_, err := svc.RecommendFromText(context.Background(), "room next tuesday")

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}
