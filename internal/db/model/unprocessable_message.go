package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const UnprocessableMsgCollection = "unprocessable_messages"

type UnprocessableMessageDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	MessageBody string             `bson:"message_body"`
	Receipt     string             `bson:"receipt"`
	QueueName   string             `bson:"queue_name"`
	Reason      string             `bson:"reason"`
	CreatedAt   int64              `bson:"created_at"`
}

func NewUnprocessableMessageDocument(messageBody, receipt, queueName, reason string, createdAt int64) *UnprocessableMessageDocument {
	return &UnprocessableMessageDocument{
		MessageBody: messageBody,
		Receipt:     receipt,
		QueueName:   queueName,
		Reason:      reason,
		CreatedAt:   createdAt,
	}
}
