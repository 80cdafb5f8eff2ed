package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/internal/db/model"
	"github.com/xrpbridge/bridge-api-service/internal/types"
)

// RestartDistribution re-drives the payout of a transaction that failed during
// distribution. Each restart consumes one unit of the restart budget.
func (s *Services) RestartDistribution(ctx context.Context, id string) (*DistributionPublic, *types.Error) {
	doc, err := s.findTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	maxRestarts := s.cfg.Bridge.MaxRestartAttempts
	switch {
	case doc.OutboundTxHash != "":
		return nil, invalidStateFor(doc, actionRestart)
	case doc.Status != types.Failed || doc.FailureStage != types.DistributionStage:
		return nil, types.NewBridgeError(types.InvalidState,
			"only transactions that failed during distribution can be restarted, status is "+doc.Status.ToString())
	case doc.RetryCount >= maxRestarts:
		return nil, invalidStateFor(doc, actionRestart)
	}

	doc, err = s.casTransition(ctx, id, actionRestart,
		func(ctx context.Context, id string) (*model.BridgeTransactionDocument, error) {
			return s.DbClient.TransitionFailedToExecuting(ctx, id, maxRestarts)
		},
	)
	if err != nil {
		return nil, err
	}
	recordTransition(doc)
	log.Ctx(ctx).Info().Str("transactionId", id).Int("retryCount", doc.RetryCount).Msg("restarting distribution")
	return s.distribute(ctx, doc)
}

// ProcessRestartEvent handles a restart request from the queue. Outcomes that a
// redelivery cannot change are acknowledged, only unexpected errors are returned.
func (s *Services) ProcessRestartEvent(ctx context.Context, id string) error {
	_, err := s.RestartDistribution(ctx, id)
	if err == nil {
		return nil
	}
	switch err.ErrorCode {
	case types.AlreadyDistributed, types.InvalidState, types.RestartLimitExceeded,
		types.DistributionError, types.NotFound:
		log.Ctx(ctx).Warn().Err(err).Str("transactionId", id).Msg("restart event settled without a payout")
		return nil
	default:
		return err
	}
}

// FailStaleDistributions fails transactions stuck in executing for longer than the
// configured cutoff, e.g. after a crash mid-send.
func (s *Services) FailStaleDistributions(ctx context.Context, limit int64) (int64, error) {
	cutoff := time.Now().Add(-s.cfg.Bridge.StaleExecutingAfter).UnixMilli()
	moved, err := s.DbClient.FailStaleExecutingTransactions(ctx, cutoff, limit)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to sweep stale distributions")
		return moved, err
	}
	if moved > 0 {
		log.Ctx(ctx).Warn().Int64("count", moved).Msg("stale distributions moved to failed")
	}
	return moved, nil
}

// RestartCandidates lists transactions the automatic restart may pick up.
func (s *Services) RestartCandidates(ctx context.Context, limit int64) ([]string, error) {
	docs, err := s.DbClient.FindRestartableTransactions(ctx, s.cfg.Bridge.MaxRestartAttempts, limit)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to find restartable transactions")
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
