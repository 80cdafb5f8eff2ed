package scripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/internal/db"
	"github.com/xrpbridge/bridge-api-service/internal/queue"
	queueClient "github.com/xrpbridge/bridge-api-service/internal/queue/client"
)

type GenericEvent struct {
	EventType queueClient.EventType `json:"event_type"`
}

// ReplayUnprocessableMessages sends every stored unprocessable message back to
// its queue and removes it from the store once published.
func ReplayUnprocessableMessages(ctx context.Context, queues *queue.Queues, db db.DBClient) error {
	unprocessableMessages, err := db.FindUnprocessableMessages(ctx)
	if err != nil {
		return errors.New("failed to retrieve unprocessable messages")
	}

	messageCount := len(unprocessableMessages)
	fmt.Printf("There are %d unprocessable messages.\n", messageCount)
	if messageCount == 0 {
		return errors.New("no unprocessable messages to replay")
	}

	for _, msg := range unprocessableMessages {
		var genericEvent GenericEvent
		if err := json.Unmarshal([]byte(msg.MessageBody), &genericEvent); err != nil {
			return fmt.Errorf("failed to unmarshal event message: %w", err)
		}

		if err := processEventMessage(ctx, queues, genericEvent, msg.MessageBody); err != nil {
			return fmt.Errorf("failed to process message: %w", err)
		}

		if err := db.DeleteUnprocessableMessage(ctx, msg.ID); err != nil {
			return fmt.Errorf("failed to delete unprocessable message: %w", err)
		}
	}

	log.Info().Int("count", messageCount).Msg("Reprocessing of unprocessable messages completed.")
	return nil
}

func processEventMessage(ctx context.Context, queues *queue.Queues, event GenericEvent, messageBody string) error {
	switch event.EventType {
	case queueClient.RestartEventType:
		return queues.RestartQueueClient.SendMessage(ctx, messageBody)
	default:
		return fmt.Errorf("unknown event type: %v", event.EventType)
	}
}
