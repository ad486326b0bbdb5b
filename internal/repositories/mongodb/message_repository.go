package mongodb

import (
	"context"
	"fmt"
	"time"

	"copool/internal/models"
	"copool/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageRepository struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) interfaces.MessageRepository {
	return &messageRepository{
		collection: db.Collection("messages"),
		counters:   db.Collection("counters"),
	}
}

// Append allocates the next seq and inserts the message. The two writes are
// not atomic, so callers serialize appends per ride to keep inserts visible
// in seq order for the polling cursor.
func (r *messageRepository) Append(ctx context.Context, msg *models.Message) error {
	seq, err := r.nextSeq(ctx, msg.RideID)
	if err != nil {
		return err
	}

	msg.ID = primitive.NewObjectID()
	msg.Seq = seq
	msg.CreatedAt = time.Now()

	_, err = r.collection.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}

// nextSeq hands out the ride's next sequence number from a per-ride counter
// document. The upserted $inc is atomic, so concurrent appends each get a
// distinct, strictly increasing value.
func (r *messageRepository) nextSeq(ctx context.Context, rideID primitive.ObjectID) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": fmt.Sprintf("messages:%s", rideID.Hex())},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate message seq: %w", err)
	}

	return counter.Seq, nil
}

func (r *messageRepository) Since(ctx context.Context, rideID primitive.ObjectID, lastSeq int64, limit int) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"ride_id": rideID,
		"seq":     bson.M{"$gt": lastSeq},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}

func (r *messageRepository) CountByRide(ctx context.Context, rideID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"ride_id": rideID})
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
