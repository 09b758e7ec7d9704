package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"huddle/config"
	"huddle/infras/otel"
	"huddle/internal/availability"
	"huddle/shared/constant"
	"huddle/shared/timezone"
)

// Janitor periodically compacts long-finished intervals out of the
// availability index. Without it the index grows without bound; with it,
// intervals survive a retention window past their end so late cancels and
// alters still find them.
type Janitor struct {
	cron  *cron.Cron
	index *availability.Index
	cfg   *config.Config
	otel  otel.Otel
}

func NewJanitor(index *availability.Index, cfg *config.Config, otel otel.Otel) *Janitor {
	return &Janitor{
		cron:  cron.New(),
		index: index,
		cfg:   cfg,
		otel:  otel,
	}
}

func (j *Janitor) Start() error {
	schedule := j.cfg.App.Booking.JanitorSchedule

	if _, err := j.cron.AddFunc(schedule, j.run); err != nil {
		return fmt.Errorf("failed to schedule availability janitor: %w", err)
	}

	j.cron.Start()

	log.Info().Str("schedule", schedule).Msg("availability janitor started")

	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) run() {
	_, scope := j.otel.NewScope(context.Background(), constant.OtelJobScopeName, constant.OtelJobScopeName+".CompactAvailability")
	defer scope.End()

	retention := time.Duration(j.cfg.App.Booking.JanitorRetentionHours) * time.Hour
	cutoff := timezone.Now().Add(-retention)

	removed := j.index.Compact(cutoff)

	scope.SetAttribute("intervals_removed", removed)
	log.Info().Int("removed", removed).Time("cutoff", cutoff).Msg("availability index compacted")
}
