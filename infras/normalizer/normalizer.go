package normalizer

//go:generate go run go.uber.org/mock/mockgen -source=./normalizer.go -destination=./mocks/normalizer_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"huddle/config"
	"huddle/infras/otel"
	"huddle/shared/constant"
	"huddle/shared/failure"
)

// MeetingIntent is the structured request the intent-extraction collaborator
// derives from free text. It mirrors the recommendation request shape.
type MeetingIntent struct {
	Start             string   `json:"start"`
	End               string   `json:"end"`
	ParticipantCount  int      `json:"participant_count"`
	PreferredLocation string   `json:"preferred_location"`
	RequiredEquipment []string `json:"required_equipment"`
}

// Normalizer turns free text into a structured meeting intent. A ParseError
// from the collaborator is surfaced unchanged as a bad request; timeouts and
// transport failures become ExternalService failures and never leave partial
// booking state behind.
type Normalizer interface {
	Normalize(ctx context.Context, freeText string) (MeetingIntent, error)
}

type normalizerImpl struct {
	config *config.Config
	client *http.Client
	otel   otel.Otel
}

func New(cfg *config.Config, otl otel.Otel) Normalizer {
	return &normalizerImpl{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.External.Normalizer.TimeoutSeconds) * time.Second,
		},
		otel: otl,
	}
}

type normalizeRequest struct {
	Text string `json:"text"`
}

type normalizeError struct {
	Error string `json:"error"`
}

func (n *normalizerImpl) Normalize(ctx context.Context, freeText string) (intent MeetingIntent, err error) {
	ctx, scope := n.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".Normalize")
	defer scope.End()
	defer scope.TraceIfError(err)

	payload, err := json.Marshal(normalizeRequest{Text: freeText})
	if err != nil {
		return intent, fmt.Errorf("failed to marshal normalize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.External.Normalizer.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return intent, fmt.Errorf("failed to build normalize request: %w", err)
	}

	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	resp, err := n.client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("intent normalizer unreachable")

		if errors.Is(err, context.DeadlineExceeded) {
			return intent, failure.ExternalService("intent normalizer timed out") //nolint:wrapcheck
		}

		return intent, failure.ExternalService("intent normalizer unavailable") //nolint:wrapcheck
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err = json.NewDecoder(resp.Body).Decode(&intent); err != nil {
			log.Error().Err(err).Msg("failed to decode normalizer response")

			return intent, failure.ExternalService("intent normalizer returned a malformed response") //nolint:wrapcheck
		}

		return intent, nil
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		// ParseError from the collaborator, surfaced unchanged
		var parseErr normalizeError
		if err = json.NewDecoder(resp.Body).Decode(&parseErr); err != nil || parseErr.Error == constant.Empty {
			return intent, failure.BadRequestFromString("could not extract a meeting request from the text") //nolint:wrapcheck
		}

		return intent, failure.BadRequestFromString(parseErr.Error) //nolint:wrapcheck
	default:
		log.Error().Int("status", resp.StatusCode).Msg("intent normalizer failed")

		return intent, failure.ExternalService(fmt.Sprintf("intent normalizer failed with status %d", resp.StatusCode)) //nolint:wrapcheck
	}
}
