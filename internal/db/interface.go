package db

import (
	"context"

	"github.com/xrpbridge/bridge-api-service/internal/db/model"
)

// DBClient is the bridge transaction store. Every state-changing method is a single
// conditional update: it only matches a record in an eligible state, and returns a
// NotFoundError when no record matched.
type DBClient interface {
	Ping(ctx context.Context) error

	SaveBridgeTransaction(ctx context.Context, doc *model.BridgeTransactionDocument) error
	FindBridgeTransactionByID(ctx context.Context, id string) (*model.BridgeTransactionDocument, error)
	FindBridgeTransactions(
		ctx context.Context, filter model.BridgeTransactionFilter, paginationToken string,
	) (*DbResultMap[model.BridgeTransactionDocument], error)

	TransitionToVerifying(ctx context.Context, id string) (*model.BridgeTransactionDocument, error)
	MarkVerified(ctx context.Context, id, inboundTxHash string) (*model.BridgeTransactionDocument, error)
	MarkVerificationFailed(ctx context.Context, id, errorCode, errorMessage string) (*model.BridgeTransactionDocument, error)

	TransitionToExecuting(ctx context.Context, id string) (*model.BridgeTransactionDocument, error)
	TransitionFailedToExecuting(ctx context.Context, id string, maxRestarts int) (*model.BridgeTransactionDocument, error)
	MarkCompleted(
		ctx context.Context, id, outboundTxHash string, attempt model.DistributionAttempt,
	) (*model.BridgeTransactionDocument, error)
	MarkDistributionFailed(
		ctx context.Context, id, errorCode, errorMessage string, attempt model.DistributionAttempt,
	) (*model.BridgeTransactionDocument, error)

	FindRestartableTransactions(ctx context.Context, maxRestarts int, limit int64) ([]model.BridgeTransactionDocument, error)
	FailStaleExecutingTransactions(ctx context.Context, updatedBefore int64, limit int64) (int64, error)

	SaveUnprocessableMessage(ctx context.Context, messageBody, receipt, queueName, reason string) error
	FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error)
	DeleteUnprocessableMessage(ctx context.Context, id interface{}) error
}
