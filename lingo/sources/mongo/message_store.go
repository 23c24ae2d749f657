package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCollection = "messages"

// Message is a single chat message. Messages are insert-only.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ConversationID string             `bson:"conversationId" json:"conversationId"`
	SenderID       int                `bson:"senderId" json:"senderId"`
	ReceiverID     int                `bson:"receiverId" json:"receiverId"`
	Text           string             `bson:"text" json:"text"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MessageStore handles database operations for chat messages.
type MessageStore struct {
	DB *mongo.Database
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{DB: db}
}

// SaveMessage inserts msg, assigning its id and timestamps.
func (s *MessageStore) SaveMessage(ctx context.Context, msg *Message) error {
	now := time.Now().UTC()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	msg.CreatedAt = now
	msg.UpdatedAt = now
	_, err := s.DB.Collection(messageCollection).InsertOne(ctx, msg)
	return err
}

// ListMessages returns every message of a conversation, oldest first.
func (s *MessageStore) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.DB.Collection(messageCollection).Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []Message{}
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageStore) Ping(ctx context.Context) error {
	return s.DB.Client().Ping(ctx, nil)
}

func (s *MessageStore) Close(ctx context.Context) error {
	return s.DB.Client().Disconnect(ctx)
}
