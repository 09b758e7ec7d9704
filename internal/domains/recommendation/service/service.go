package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"huddle/config"
	"huddle/infras/normalizer"
	"huddle/infras/otel"
	"huddle/internal/availability"
	"huddle/internal/domains/recommendation/model/dto"
	roomModel "huddle/internal/domains/room/model"
	roomService "huddle/internal/domains/room/service"
	"huddle/shared/constant"
	"huddle/shared/validator"
)

// Recommendation ranks bookable rooms against a meeting request. Hard
// constraints (active, enough seats, free for the whole range) filter the
// candidate pool; soft preferences (tight capacity, equipment, location)
// only shape the ordering and are reported as deviations when unmet.
type Recommendation interface {
	Recommend(ctx context.Context, req dto.MeetingRequest) (dto.RecommendationsResponse, error)
	RecommendFromText(ctx context.Context, freeText string) (dto.RecommendationsResponse, error)
}

type serviceImpl struct {
	rooms      roomService.Room
	index      *availability.Index
	normalizer normalizer.Normalizer
	cfg        *config.Config
	otel       otel.Otel
}

func New(rooms roomService.Room, index *availability.Index, norm normalizer.Normalizer, cfg *config.Config, otel otel.Otel) Recommendation {
	return &serviceImpl{
		rooms:      rooms,
		index:      index,
		normalizer: norm,
		cfg:        cfg,
		otel:       otel,
	}
}

func (s *serviceImpl) Recommend(ctx context.Context, req dto.MeetingRequest) (res dto.RecommendationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Recommend")
	defer scope.End()
	defer scope.TraceIfError(err)

	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to load candidate rooms: %w", err)
	}

	recommendations := []dto.Recommendation{}

	for _, room := range rooms {
		if room.Capacity < req.ParticipantCount {
			continue
		}

		if !s.index.IsFree(room.ID, req.Range) {
			continue
		}

		rec, ok := s.score(room, req)
		if !ok {
			continue
		}

		recommendations = append(recommendations, rec)
	}

	// highest score first, room id as the deterministic tie-breaker
	sort.Slice(recommendations, func(a, b int) bool {
		if recommendations[a].Score != recommendations[b].Score {
			return recommendations[a].Score > recommendations[b].Score
		}

		return recommendations[a].Room.ID < recommendations[b].Room.ID
	})

	if max := s.cfg.App.Recommendation.MaxResults; max > 0 && len(recommendations) > max {
		recommendations = recommendations[:max]
	}

	res.Recommendations = recommendations

	return res, nil
}

func (s *serviceImpl) RecommendFromText(ctx context.Context, freeText string) (res dto.RecommendationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RecommendFromText")
	defer scope.End()
	defer scope.TraceIfError(err)

	intent, err := s.normalizer.Normalize(ctx, freeText)
	if err != nil {
		return res, err
	}

	var req dto.MeetingRequest
	if err = req.FromIntent(intent); err != nil {
		return res, err
	}

	// the normalizer's output is as untrusted as a caller-supplied body and
	// passes through the same rules
	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	return s.Recommend(ctx, req)
}

// score rates one candidate that already passed the hard filters. The second
// return value is false only when strict location mode rejects the room.
func (s *serviceImpl) score(room roomModel.Room, req dto.MeetingRequest) (dto.Recommendation, bool) {
	cfg := s.cfg.App.Recommendation
	deviations := []string{}

	capacityScore, capacityDeviation := scoreCapacity(room, req.ParticipantCount, cfg.CapacitySlack)
	if capacityDeviation != constant.Empty {
		deviations = append(deviations, capacityDeviation)
	}

	equipmentScore, missing := scoreEquipment(room, req.RequiredEquipment)
	for _, tag := range missing {
		deviations = append(deviations, "missing equipment: "+tag)
	}

	locationScore := 1.0

	if req.PreferredLocation != constant.Empty && !strings.EqualFold(room.Building, req.PreferredLocation) {
		if cfg.StrictLocation {
			return dto.Recommendation{}, false
		}

		locationScore = 0
		deviations = append(deviations, fmt.Sprintf("located in %s, not %s", room.Building, req.PreferredLocation))
	}

	totalWeight := cfg.CapacityWeight + cfg.EquipmentWeight + cfg.LocationWeight
	if totalWeight == 0 {
		totalWeight = 1
	}

	score := (capacityScore*cfg.CapacityWeight + equipmentScore*cfg.EquipmentWeight + locationScore*cfg.LocationWeight) / totalWeight

	rec := dto.Recommendation{
		Score:      score,
		Deviations: deviations,
	}
	rec.Room.FromModel(room)

	return rec, true
}

// scoreCapacity rewards rooms sized close to the party. Within the slack
// factor the fit is perfect; beyond it the score decays with the amount of
// wasted space and the surplus is reported.
func scoreCapacity(room roomModel.Room, participants int, slack float64) (float64, string) {
	ideal := float64(participants) * slack

	if float64(room.Capacity) <= ideal {
		return 1, constant.Empty
	}

	surplus := room.Capacity - participants

	return ideal / float64(room.Capacity), fmt.Sprintf("capacity exceeds requirement by %d seats", surplus)
}

func scoreEquipment(room roomModel.Room, required []string) (float64, []string) {
	if len(required) == 0 {
		return 1, nil
	}

	missing := []string{}

	for _, tag := range required {
		if !room.HasEquipment(tag) {
			missing = append(missing, tag)
		}
	}

	return float64(len(required)-len(missing)) / float64(len(required)), missing
}
