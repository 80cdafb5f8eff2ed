package client

const (
	RestartEventType EventType = 1
)

type EventType int

// RestartEvent asks the consumer to re-drive the payout of a transaction that
// failed during distribution.
type RestartEvent struct {
	EventType     EventType `json:"event_type"` // always 1
	TransactionID string    `json:"transaction_id"`
	RequestedAt   int64     `json:"requested_at"`
}

func NewRestartEvent(transactionID string, requestedAt int64) RestartEvent {
	return RestartEvent{
		EventType:     RestartEventType,
		TransactionID: transactionID,
		RequestedAt:   requestedAt,
	}
}
