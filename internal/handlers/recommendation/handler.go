package recommendation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"huddle/infras/otel"
	"huddle/internal/domains/recommendation/model/dto"
	"huddle/internal/domains/recommendation/service"
	"huddle/shared/constant"
	"huddle/shared/validator"
	"huddle/transport/http/response"
)

type Handler struct {
	service service.Recommendation
	otel    otel.Otel
}

func New(service service.Recommendation, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/recommendations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.Recommend)
		routerGroup.Post("/from-text", handler.RecommendFromText)
	})
}

// Recommend ranks rooms for a structured meeting request.
// @Summary Recommend rooms for a meeting
// @Description Rank available rooms by fit against the requested time range, party size, location and equipment.
// @Tags Recommendation
// @Accept json
// @Produce json
// @Param request body dto.MeetingRequest true "Meeting Request"
// @Success 200 {object} dto.RecommendationsResponse "Ranked recommendations"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/recommendations [post]
func (handler *Handler) Recommend(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Recommend")
	defer scope.End()

	req := dto.MeetingRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	recommendations, err := handler.service.Recommend(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to recommend rooms")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Recommendations computed successfully")

	response.WithJSON(writer, http.StatusOK, recommendations)
}

// RecommendFromText ranks rooms for a free-text meeting request.
// @Summary Recommend rooms from free text
// @Description Extract a structured meeting request from free text via the intent normalizer, then rank available rooms.
// @Tags Recommendation
// @Accept json
// @Produce json
// @Param request body dto.RecommendFromTextRequest true "Free-text Request"
// @Success 200 {object} dto.RecommendationsResponse "Ranked recommendations"
// @Failure 400 {object} response.Error
// @Failure 502 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/recommendations/from-text [post]
func (handler *Handler) RecommendFromText(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RecommendFromText")
	defer scope.End()

	req := dto.RecommendFromTextRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	recommendations, err := handler.service.RecommendFromText(ctx, req.Text)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to recommend rooms from text")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Recommendations computed successfully")

	response.WithJSON(writer, http.StatusOK, recommendations)
}
