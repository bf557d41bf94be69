package inquiries

import (
	"context"
	"fmt"

	"logitrack-api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoArchive connects and pings before returning
func NewMongoArchive(ctx context.Context, uri, dbName string) (*MongoArchive, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoArchive{
		client:     client,
		collection: client.Database(dbName).Collection("inquiries"),
	}, nil
}

func (m *MongoArchive) ArchiveInquiry(ctx context.Context, in models.Inquiry) error {
	doc := bson.M{
		"inquiryId": in.ID,
		"name":      in.Name,
		"email":     in.Email,
		"phone":     in.Phone,
		"subject":   in.Subject,
		"message":   in.Message,
		"createdAt": in.CreatedAt,
	}
	_, err := m.collection.InsertOne(ctx, doc)
	return err
}

func (m *MongoArchive) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
