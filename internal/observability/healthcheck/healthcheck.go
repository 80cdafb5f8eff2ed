package healthcheck

import (
	"context"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultIntervalSeconds = 60

var logger zerolog.Logger = log.Logger

// exit is swapped in tests
var exit = os.Exit

func SetLogger(customLogger zerolog.Logger) {
	logger = customLogger
}

// ConnectionChecker reports whether a long lived connection, such as the
// restart queue consumer, is still usable.
type ConnectionChecker interface {
	IsConnectionHealthy() error
}

// StartHealthCheckCron terminates the service once the queue connection is
// lost so the orchestrator can restart it with a fresh consumer.
func StartHealthCheckCron(ctx context.Context, checker ConnectionChecker, intervalSeconds int) error {
	c := cron.New()
	logger.Info().Msg("Initiated Health Check Cron")

	if intervalSeconds <= 0 {
		intervalSeconds = defaultIntervalSeconds
	}

	cronSpec := fmt.Sprintf("@every %ds", intervalSeconds)

	_, err := c.AddFunc(cronSpec, func() {
		queueHealthCheck(checker)
	})
	if err != nil {
		return err
	}

	c.Start()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Stopping Health Check Cron")
		c.Stop()
	}()

	return nil
}

func queueHealthCheck(checker ConnectionChecker) {
	if err := checker.IsConnectionHealthy(); err != nil {
		logger.Error().Err(err).Msg("Queue connection is not healthy.")
		terminateService()
	}
}

func terminateService() {
	logger.Error().Msg("Terminating service due to health check failure.")
	exit(1)
}
