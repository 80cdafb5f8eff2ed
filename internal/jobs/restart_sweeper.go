package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/internal/config"
)

type SweepService interface {
	FailStaleDistributions(ctx context.Context, limit int64) (int64, error)
	RestartCandidates(ctx context.Context, limit int64) ([]string, error)
}

type RestartPublisher interface {
	PublishRestartEvent(ctx context.Context, transactionID string) error
}

// RestartSweeper periodically fails distributions stuck in executing and queues
// a restart for every transaction that still has restart budget.
type RestartSweeper struct {
	service   SweepService
	publisher RestartPublisher
	batchSize int64
	interval  time.Duration
}

func NewRestartSweeper(cfg *config.AutoRestartConfig, service SweepService, publisher RestartPublisher) *RestartSweeper {
	return &RestartSweeper{
		service:   service,
		publisher: publisher,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
	}
}

// Start schedules the sweep until ctx is done.
func (r *RestartSweeper) Start(ctx context.Context) error {
	c := cron.New()
	cronSpec := fmt.Sprintf("@every %s", r.interval)

	_, err := c.AddFunc(cronSpec, func() {
		if _, err := r.Sweep(ctx); err != nil {
			log.Error().Err(err).Msg("restart sweep failed")
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Info().Dur("interval", r.interval).Msg("Initiated restart sweeper")

	go func() {
		<-ctx.Done()
		log.Info().Msg("Stopping restart sweeper")
		<-c.Stop().Done()
	}()
	return nil
}

// Sweep runs one pass and returns the number of restart events published.
func (r *RestartSweeper) Sweep(ctx context.Context) (int, error) {
	logger := log.With().Str("job", "restart-sweeper").Logger()
	ctx = logger.WithContext(ctx)

	if _, err := r.service.FailStaleDistributions(ctx, r.batchSize); err != nil {
		return 0, err
	}

	ids, err := r.service.RestartCandidates(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, id := range ids {
		if err := r.publisher.PublishRestartEvent(ctx, id); err != nil {
			logger.Error().Err(err).Str("transactionId", id).Msg("failed to publish restart event")
			continue
		}
		published++
	}
	if published > 0 {
		logger.Info().Int("published", published).Msg("queued distribution restarts")
	}
	return published, nil
}
