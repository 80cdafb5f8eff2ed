package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	queueClient "github.com/xrpbridge/bridge-api-service/internal/queue/client"
)

// RestartHandler handles the restart event. Replays are harmless, a transaction
// that has already been paid or restarted no longer matches the restart update.
func (h *QueueHandler) RestartHandler(ctx context.Context, messageBody string) error {
	var restartEvent queueClient.RestartEvent
	err := json.Unmarshal([]byte(messageBody), &restartEvent)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal the message body into RestartEvent")
		return err
	}
	if restartEvent.EventType != queueClient.RestartEventType || restartEvent.TransactionID == "" {
		return errors.New("message is not a restart event")
	}

	err = h.Services.ProcessRestartEvent(ctx, restartEvent.TransactionID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("transactionId", restartEvent.TransactionID).
			Msg("Failed to process restart event")
		return err
	}
	return nil
}
