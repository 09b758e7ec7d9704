package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"huddle/config"
	"huddle/infras/kafka"
	"huddle/infras/otel"
	"huddle/internal/availability"
	"huddle/internal/domains/booking/model"
	"huddle/internal/domains/booking/model/dto"
	"huddle/internal/domains/booking/repository"
	roomService "huddle/internal/domains/room/service"
	"huddle/shared"
	"huddle/shared/constant"
	gDto "huddle/shared/dto"
	"huddle/shared/failure"
	"huddle/shared/timerange"
	"huddle/shared/timezone"
)

// Booking confirms, cancels and reshapes reservations. All mutations go
// through the availability index with optimistic validation, so two requests
// for the same room never hold overlapping intervals no matter how they
// interleave. Requests for different rooms do not contend at all.
type Booking interface {
	Book(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) error
	Alter(ctx context.Context, id string, req dto.AlterBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	List(ctx context.Context, params gDto.QueryParams, req dto.ListBookingsRequest) (dto.GetBookingsResponse, error)
	Hydrate(ctx context.Context) (int, error)
}

type serviceImpl struct {
	repo  repository.Booking
	rooms roomService.Room
	index *availability.Index
	cfg   *config.Config
	kafka kafka.Client
	otel  otel.Otel
}

func New(repo repository.Booking, rooms roomService.Room, index *availability.Index, cfg *config.Config, kafkaClient kafka.Client, otel otel.Otel) Booking {
	return &serviceImpl{
		repo:  repo,
		rooms: rooms,
		index: index,
		cfg:   cfg,
		kafka: kafkaClient,
		otel:  otel,
	}
}

// Hydrate loads every booked reservation into the availability index. Run it
// once at startup before the server accepts traffic; the index is the only
// overlap authority and must reflect the persisted state.
func (s *serviceImpl) Hydrate(ctx context.Context) (count int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Hydrate")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldStatus,
				Operator: gDto.FilterOperatorEq,
				Value:    model.StatusBooked,
				Table:    model.TableName,
			},
		},
	}

	params := gDto.QueryParams{SortBy: model.TableName + "." + model.FieldStartTime, SortDir: gDto.SortDirAsc}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to load bookings for index hydration")

		return 0, fmt.Errorf("failed to load bookings for index hydration: %w", err)
	}

	for _, booking := range bookings {
		s.index.Reserve(booking.RoomID, booking.Range(), booking.ID)
	}

	log.Info().Int("bookings", len(bookings)).Msg("availability index hydrated")

	return len(bookings), nil
}

func (s *serviceImpl) Book(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Book")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = req.Range.Validate(); err != nil {
		return res, failure.BadRequestWithDetails(err.Error(), map[string]any{
			"field": "range",
		}) // nolint:wrapcheck
	}

	if _, err = s.rooms.GetActive(ctx, req.RoomID); err != nil {
		return res, err
	}

	organizer, _ := ctx.Value(constant.ContextKeyUserID).(string)
	booking := req.ToModel(organizer)

	if err = s.reserve(ctx, booking); err != nil {
		return res, err
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		// the slot must not stay blocked by a booking that never existed
		s.index.Release(booking.RoomID, booking.Range(), booking.ID)

		log.Error().Err(err).Str("bookingID", booking.ID).Msg("failed to persist booking")

		return res, fmt.Errorf("failed to persist booking: %w", err)
	}

	s.publishEvent(ctx, dto.EventTypeCreated, booking)

	res.FromModel(booking)

	return res, nil
}

// reserve runs the optimistic check-then-commit loop against the room's
// schedule. A genuine overlap fails immediately with the blocking booking;
// pure interference (version moved between check and commit) is retried a
// bounded number of times.
func (s *serviceImpl) reserve(ctx context.Context, booking model.Booking) error {
	_, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reserve")
	defer scope.End()

	rng := booking.Range()
	attempts := s.cfg.App.Booking.MaxConflictRetries

	for attempt := 0; attempt <= attempts; attempt++ {
		version := s.index.Version(booking.RoomID)

		if blocking, overlap := s.index.FindOverlap(booking.RoomID, rng); overlap {
			return failure.ConflictWithDetails("room is already booked for an overlapping time range", map[string]any{
				"room_id":                booking.RoomID,
				"conflicting_booking_id": blocking.BookingID,
				"conflicting_start":      blocking.Range.Start,
				"conflicting_end":        blocking.Range.End,
			}) // nolint:wrapcheck
		}

		if s.index.ReserveIfVersion(booking.RoomID, version, rng, booking.ID) {
			return nil
		}

		log.Warn().Str("roomID", booking.RoomID).Int("attempt", attempt+1).Msg("booking commit interfered, re-validating")
	}

	return failure.Conflict("room schedule is changing too quickly, please retry") // nolint:wrapcheck
}

func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	booking, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if err = s.authorizeOrganizer(ctx, booking); err != nil {
		return err
	}

	if booking.IsCancelled() {
		// cancelling twice is a no-op
		return nil
	}

	organizer, _ := ctx.Value(constant.ContextKeyUserID).(string)
	updatedFields := map[string]any{
		model.FieldStatus:        model.StatusCancelled,
		constant.FieldModifiedBy: organizer,
		constant.FieldModifiedAt: timezone.Now(),
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Str("bookingID", id).Msg("failed to cancel booking")

		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	// every interval, not just the one read above: an in-flight alter may
	// have staged a second interval for this booking in the meantime
	s.index.ReleaseAll(booking.RoomID, booking.ID)

	booking.Status = model.StatusCancelled
	s.publishEvent(ctx, dto.EventTypeCancelled, booking)

	return nil
}

func (s *serviceImpl) Alter(ctx context.Context, id string, req dto.AlterBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Alter")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = req.Range.Validate(); err != nil {
		return res, failure.BadRequestWithDetails(err.Error(), map[string]any{
			"field": "range",
		}) // nolint:wrapcheck
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	booking, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if err = s.authorizeOrganizer(ctx, booking); err != nil {
		return res, err
	}

	if booking.IsCancelled() {
		return res, failure.Conflict("cannot alter a cancelled booking") // nolint:wrapcheck
	}

	booking, staged, err := s.stage(ctx, filter, booking, req.Range)
	if err != nil {
		return res, err
	}

	oldRange := booking.Range()

	organizer, _ := ctx.Value(constant.ContextKeyUserID).(string)
	updatedFields := map[string]any{
		model.FieldStartTime:     req.Range.Start,
		model.FieldEndTime:       req.Range.End,
		constant.FieldModifiedBy: organizer,
		constant.FieldModifiedAt: timezone.Now(),
	}

	if req.Title != constant.Empty {
		updatedFields[model.FieldTitle] = req.Title
	}

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		if staged {
			// the original interval was never given up, only the staged
			// one has to go
			s.index.Release(booking.RoomID, req.Range, booking.ID)
		}

		log.Error().Err(err).Str("bookingID", id).Msg("failed to persist altered booking")

		return res, fmt.Errorf("failed to persist altered booking: %w", err)
	}

	if staged {
		// the move is durable, the original slot opens up
		s.index.Release(booking.RoomID, oldRange, booking.ID)
	}

	booking.StartTime = req.Range.Start
	booking.EndTime = req.Range.End

	if req.Title != constant.Empty {
		booking.Title = req.Title
	}

	s.publishEvent(ctx, dto.EventTypeAltered, booking)

	res.FromModel(booking)

	return res, nil
}

// stage reserves the requested range alongside the booking's current interval
// and reports whether it did. Both intervals stay held until Alter releases
// one of them after the persist settles, so no competing writer can claim
// either slot in the meantime. The room version is snapshotted before the
// booking is re-read on every attempt: a cancel or competing alter that
// commits after the re-read moves the version, the commit below fails and the
// loop re-validates against the fresh state. A genuine overlap with another
// booking fails immediately with the blocker.
func (s *serviceImpl) stage(ctx context.Context, filter gDto.FilterGroup, booking model.Booking, newRange timerange.TimeRange) (model.Booking, bool, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".stage")
	defer scope.End()

	attempts := s.cfg.App.Booking.MaxConflictRetries

	for attempt := 0; attempt <= attempts; attempt++ {
		version := s.index.Version(booking.RoomID)

		fresh, err := s.repo.Get(ctx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to get booking")

			return booking, false, fmt.Errorf("failed to get booking: %w", err)
		}

		if fresh.ID == constant.Empty {
			return booking, false, failure.NotFound("booking not found") // nolint:wrapcheck
		}

		if fresh.IsCancelled() {
			return booking, false, failure.Conflict("cannot alter a cancelled booking") // nolint:wrapcheck
		}

		if fresh.Range().Equal(newRange) {
			// the time does not change, there is nothing to reserve
			return fresh, false, nil
		}

		if blocking, overlap := s.index.FindOverlapExcept(booking.RoomID, newRange, fresh.ID); overlap {
			return fresh, false, failure.ConflictWithDetails("requested time range is already booked", map[string]any{
				"room_id":                booking.RoomID,
				"conflicting_booking_id": blocking.BookingID,
				"conflicting_start":      blocking.Range.Start,
				"conflicting_end":        blocking.Range.End,
			}) // nolint:wrapcheck
		}

		if s.index.StageIfVersion(booking.RoomID, version, fresh.ID, fresh.Range(), newRange) {
			return fresh, true, nil
		}

		log.Warn().Str("roomID", booking.RoomID).Int("attempt", attempt+1).Msg("alter commit interfered, re-validating")
	}

	return booking, false, failure.Conflict("room schedule is changing too quickly, please retry") // nolint:wrapcheck
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) List(ctx context.Context, params gDto.QueryParams, req dto.ListBookingsRequest) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := req.ToFilter()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	if params.SortBy == constant.Empty {
		params.SortBy = model.TableName + "." + model.FieldStartTime
		params.SortDir = gDto.SortDirAsc
	}

	bookings, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings")

		return res, fmt.Errorf("failed to list bookings: %w", err)
	}

	res.FromModels(bookings, total, params.Limit)

	return res, nil
}

func (s *serviceImpl) authorizeOrganizer(ctx context.Context, booking model.Booking) error {
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if user != constant.Empty && user != booking.OrganizerID {
		return failure.Forbidden("only the organizer may change this booking") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) publishEvent(ctx context.Context, eventType string, booking model.Booking) {
	event := dto.NewBookingEvent(eventType, booking)

	go func() {
		c := context.WithoutCancel(ctx)

		message := kafka.Message{Key: booking.RoomID, Value: event}
		if err := s.kafka.SendMessages(c, s.cfg.Kafka.Topics.BookingEvents, message); err != nil {
			log.Error().Err(err).Str("bookingID", booking.ID).Str("type", eventType).Msg("failed to publish booking event")
		}
	}()
}
