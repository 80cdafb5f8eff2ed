package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xrpbridge/bridge-api-service/internal/db/model"
	"github.com/xrpbridge/bridge-api-service/internal/types"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

var errorFields = bson.M{"failure_stage": "", "error_code": "", "error_message": ""}

func (db *Database) SaveBridgeTransaction(ctx context.Context, doc *model.BridgeTransactionDocument) error {
	client := db.collection(model.BridgeTransactionCollection)
	_, err := client.InsertOne(ctx, doc)
	return asDuplicateKeyError(err, doc.ID, "bridge transaction id or deposit memo already exists")
}

func (db *Database) FindBridgeTransactionByID(ctx context.Context, id string) (*model.BridgeTransactionDocument, error) {
	client := db.collection(model.BridgeTransactionCollection)
	filter := bson.M{"_id": id}
	var doc model.BridgeTransactionDocument
	err := client.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: "Bridge transaction not found",
			}
		}
		return nil, err
	}
	return &doc, nil
}

// FindBridgeTransactions lists transactions touching an address, newest first.
func (db *Database) FindBridgeTransactions(
	ctx context.Context, filter model.BridgeTransactionFilter, paginationToken string,
) (*DbResultMap[model.BridgeTransactionDocument], error) {
	client := db.collection(model.BridgeTransactionCollection)

	conditions := bson.A{
		bson.M{"$or": bson.A{
			bson.M{"source_address": filter.Address},
			bson.M{"destination_address": filter.Address},
		}},
	}
	if filter.Status != "" {
		conditions = append(conditions, bson.M{"status": filter.Status})
	}
	if filter.Chain != "" {
		conditions = append(conditions, bson.M{"$or": bson.A{
			bson.M{"source_chain": filter.Chain},
			bson.M{"destination_chain": filter.Chain},
		}})
	}
	if paginationToken != "" {
		decodedToken, err := model.DecodePaginationToken[model.BridgeTransactionPagination](paginationToken)
		if err != nil {
			return nil, &InvalidPaginationTokenError{
				Message: "Invalid pagination token",
			}
		}
		conditions = append(conditions, bson.M{"$or": bson.A{
			bson.M{"created_at": bson.M{"$lt": decodedToken.CreatedAt}},
			bson.M{"created_at": decodedToken.CreatedAt, "_id": bson.M{"$lt": decodedToken.ID}},
		}})
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(db.cfg.MaxPaginationLimit)

	cursor, err := client.Find(ctx, bson.M{"$and": conditions}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []model.BridgeTransactionDocument
	if err = cursor.All(ctx, &txs); err != nil {
		return nil, err
	}

	return toResultMapWithPaginationToken(db.cfg, txs, model.BuildBridgeTransactionPaginationToken)
}

// TransitionToVerifying moves a record into "verifying". A failed record is only
// eligible when it failed during verification, a new proof may then be submitted.
func (db *Database) TransitionToVerifying(ctx context.Context, id string) (*model.BridgeTransactionDocument, error) {
	filter := bson.M{
		"_id":             id,
		"inbound_tx_hash": bson.M{"$exists": false},
		"$or": bson.A{
			bson.M{"status": bson.M{"$in": []types.BridgeStatus{types.Pending, types.Verifying}}},
			bson.M{"status": types.Failed, "failure_stage": types.VerificationStage},
		},
	}
	now := utils.NowMilli()
	update := bson.M{
		"$set":   bson.M{"status": types.Verifying, "updated_at": now},
		"$unset": errorFields,
		"$push":  bson.M{"status_history": model.StatusChange{Status: types.Verifying, At: now}},
	}
	return db.transition(ctx, id, filter, update)
}

// MarkVerified records the inbound proof. The hash is set exactly once, a hash
// already proving another transaction is rejected with a DuplicateKeyError.
func (db *Database) MarkVerified(ctx context.Context, id, inboundTxHash string) (*model.BridgeTransactionDocument, error) {
	filter := bson.M{
		"_id":             id,
		"status":          types.Verifying,
		"inbound_tx_hash": bson.M{"$exists": false},
	}
	now := utils.NowMilli()
	update := bson.M{
		"$set": bson.M{
			"status":          types.Verified,
			"inbound_tx_hash": inboundTxHash,
			"updated_at":      now,
		},
		"$push": bson.M{"status_history": model.StatusChange{Status: types.Verified, At: now}},
	}
	doc, err := db.transition(ctx, id, filter, update)
	return doc, asDuplicateKeyError(err, inboundTxHash, "inbound transaction already proves another bridge transaction")
}

func (db *Database) MarkVerificationFailed(
	ctx context.Context, id, errorCode, errorMessage string,
) (*model.BridgeTransactionDocument, error) {
	filter := bson.M{"_id": id, "status": types.Verifying}
	now := utils.NowMilli()
	update := bson.M{
		"$set": bson.M{
			"status":        types.Failed,
			"failure_stage": types.VerificationStage,
			"error_code":    errorCode,
			"error_message": errorMessage,
			"updated_at":    now,
		},
		"$push": bson.M{"status_history": model.StatusChange{Status: types.Failed, At: now, Note: errorMessage}},
	}
	return db.transition(ctx, id, filter, update)
}

// TransitionToExecuting claims a verified record for distribution. Only one caller
// can win, the filter no longer matches once the status has moved on.
func (db *Database) TransitionToExecuting(ctx context.Context, id string) (*model.BridgeTransactionDocument, error) {
	filter := bson.M{
		"_id":              id,
		"status":           bson.M{"$in": utils.QualifiedStatesToExecuting()},
		"outbound_tx_hash": bson.M{"$exists": false},
	}
	now := utils.NowMilli()
	update := bson.M{
		"$set": bson.M{
			"status":                  types.Executing,
			"distribution_started_at": now,
			"updated_at":              now,
		},
		"$push": bson.M{"status_history": model.StatusChange{Status: types.Executing, At: now}},
	}
	return db.transition(ctx, id, filter, update)
}

// TransitionFailedToExecuting claims a distribution failure for a restart and
// consumes one unit of the restart budget in the same update.
func (db *Database) TransitionFailedToExecuting(
	ctx context.Context, id string, maxRestarts int,
) (*model.BridgeTransactionDocument, error) {
	filter := bson.M{
		"_id":              id,
		"status":           bson.M{"$in": utils.QualifiedStatesToRestart()},
		"failure_stage":    types.DistributionStage,
		"outbound_tx_hash": bson.M{"$exists": false},
		"retry_count":      bson.M{"$lt": maxRestarts},
	}
	now := utils.NowMilli()
	update := bson.M{
		"$set": bson.M{
			"status":                  types.Executing,
			"distribution_started_at": now,
			"updated_at":              now,
		},
		"$unset": errorFields,
		"$inc":   bson.M{"retry_count": 1},
		"$push":  bson.M{"status_history": model.StatusChange{Status: types.Executing, At: now, Note: "restart"}},
	}
	return db.transition(ctx, id, filter, update)
}

func (db *Database) MarkCompleted(
	ctx context.Context, id, outboundTxHash string, attempt model.DistributionAttempt,
) (*model.BridgeTransactionDocument, error) {
	filter := bson.M{
		"_id":              id,
		"status":           bson.M{"$in": utils.QualifiedStatesToCompleted()},
		"outbound_tx_hash": bson.M{"$exists": false},
	}
	now := utils.NowMilli()
	update := bson.M{
		"$set": bson.M{
			"status":           types.Completed,
			"outbound_tx_hash": outboundTxHash,
			"updated_at":       now,
		},
		"$push": bson.M{
			"status_history":        model.StatusChange{Status: types.Completed, At: now},
			"distribution_attempts": attempt,
		},
	}
	return db.transition(ctx, id, filter, update)
}

func (db *Database) MarkDistributionFailed(
	ctx context.Context, id, errorCode, errorMessage string, attempt model.DistributionAttempt,
) (*model.BridgeTransactionDocument, error) {
	filter := bson.M{
		"_id":              id,
		"status":           types.Executing,
		"outbound_tx_hash": bson.M{"$exists": false},
	}
	now := utils.NowMilli()
	update := bson.M{
		"$set": bson.M{
			"status":        types.Failed,
			"failure_stage": types.DistributionStage,
			"error_code":    errorCode,
			"error_message": errorMessage,
			"updated_at":    now,
		},
		"$push": bson.M{
			"status_history":        model.StatusChange{Status: types.Failed, At: now, Note: errorMessage},
			"distribution_attempts": attempt,
		},
	}
	return db.transition(ctx, id, filter, update)
}

// FindRestartableTransactions returns distribution failures that still have restart
// budget, oldest first. Records with an ambiguous attempt are left for an operator,
// the earlier send may have landed on-chain.
func (db *Database) FindRestartableTransactions(
	ctx context.Context, maxRestarts int, limit int64,
) ([]model.BridgeTransactionDocument, error) {
	client := db.collection(model.BridgeTransactionCollection)
	filter := bson.M{
		"status":                types.Failed,
		"failure_stage":         types.DistributionStage,
		"outbound_tx_hash":      bson.M{"$exists": false},
		"retry_count":           bson.M{"$lt": maxRestarts},
		"distribution_attempts": bson.M{"$not": bson.M{"$elemMatch": bson.M{"ambiguous": true}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}}).SetLimit(limit)

	cursor, err := client.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []model.BridgeTransactionDocument
	if err = cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// FailStaleExecutingTransactions fails records stuck in "executing" since before the
// cutoff, e.g. after a crash mid-send. Each gets an ambiguous attempt recorded.
// It returns the number of records moved.
func (db *Database) FailStaleExecutingTransactions(ctx context.Context, updatedBefore int64, limit int64) (int64, error) {
	client := db.collection(model.BridgeTransactionCollection)
	staleFilter := bson.M{
		"status":           types.Executing,
		"outbound_tx_hash": bson.M{"$exists": false},
		"updated_at":       bson.M{"$lt": updatedBefore},
	}
	opts := options.Find().SetLimit(limit).SetProjection(bson.M{"_id": 1, "distribution_started_at": 1})
	cursor, err := client.Find(ctx, staleFilter, opts)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var stale []model.BridgeTransactionDocument
	if err = cursor.All(ctx, &stale); err != nil {
		return 0, err
	}

	var moved int64
	for _, s := range stale {
		now := utils.NowMilli()
		msg := "distribution did not finish before the stale cutoff"
		attempt := model.DistributionAttempt{
			StartedAt:  s.DistributionStartedAt,
			FinishedAt: now,
			Outcome:    model.AttemptAmbiguous,
			Error:      msg,
			Ambiguous:  true,
		}
		// Re-check the stale condition per record, it may have completed meanwhile
		filter := bson.M{
			"_id":              s.ID,
			"status":           types.Executing,
			"outbound_tx_hash": bson.M{"$exists": false},
			"updated_at":       bson.M{"$lt": updatedBefore},
		}
		update := bson.M{
			"$set": bson.M{
				"status":        types.Failed,
				"failure_stage": types.DistributionStage,
				"error_code":    types.DistributionError.String(),
				"error_message": msg,
				"updated_at":    now,
			},
			"$push": bson.M{
				"status_history":        model.StatusChange{Status: types.Failed, At: now, Note: msg},
				"distribution_attempts": attempt,
			},
		}
		res, err := client.UpdateOne(ctx, filter, update)
		if err != nil {
			return moved, err
		}
		moved += res.ModifiedCount
	}
	return moved, nil
}

// transition applies a conditional update and returns the record after it.
// A filter that matches nothing yields a NotFoundError.
func (db *Database) transition(
	ctx context.Context, id string, filter bson.M, update bson.M,
) (*model.BridgeTransactionDocument, error) {
	client := db.collection(model.BridgeTransactionCollection)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc model.BridgeTransactionDocument
	err := client.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: "Bridge transaction not found or not in eligible state to transition",
			}
		}
		return nil, err
	}
	return &doc, nil
}
