package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xrpbridge/bridge-api-service/internal/db/model"
	"github.com/xrpbridge/bridge-api-service/internal/utils"
)

func (db *Database) SaveUnprocessableMessage(ctx context.Context, messageBody, receipt, queueName, reason string) error {
	client := db.collection(model.UnprocessableMsgCollection)

	_, err := client.InsertOne(ctx, model.NewUnprocessableMessageDocument(
		messageBody, receipt, queueName, reason, utils.NowMilli(),
	))
	return err
}

func (db *Database) FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error) {
	client := db.collection(model.UnprocessableMsgCollection)
	opts := options.Find().SetSort(bson.M{"created_at": 1})

	cursor, err := client.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var unprocessableMessages []model.UnprocessableMessageDocument
	if err = cursor.All(ctx, &unprocessableMessages); err != nil {
		return nil, err
	}

	return unprocessableMessages, nil
}

func (db *Database) DeleteUnprocessableMessage(ctx context.Context, id interface{}) error {
	client := db.collection(model.UnprocessableMsgCollection)
	_, err := client.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
