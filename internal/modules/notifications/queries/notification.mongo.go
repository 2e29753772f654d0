package queries

import (
	"context"
	"fmt"
	"time"

	"gestion-hospitaliere/internal/infrastructure/database/mongodb"
	"gestion-hospitaliere/internal/modules/notifications/dto"
	"gestion-hospitaliere/internal/shared/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationMongoRepository toutes les opérations sont restreintes au destinataire
type NotificationMongoRepository struct {
	collection *mongo.Collection
}

func NewNotificationMongoRepository(client *mongodb.Client, collection string) *NotificationMongoRepository {
	return &NotificationMongoRepository{collection: client.Collection(collection)}
}

func (r *NotificationMongoRepository) Insert(ctx context.Context, n *dto.Notification) error {
	res, err := r.collection.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insertion notification: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = id
	}
	return nil
}

func (r *NotificationMongoRepository) List(ctx context.Context, userID string, page utils.Pagination) ([]dto.Notification, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.PerPage))

	items, err := r.find(ctx, filter, opts)
	return items, total, err
}

func (r *NotificationMongoRepository) Unread(ctx context.Context, userID string, limit int) ([]dto.Notification, int64, error) {
	filter := bson.M{"user_id": userID, "read_at": nil}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	items, err := r.find(ctx, filter, opts)
	return items, count, err
}

// MarkRead false si l'identifiant est invalide ou n'appartient pas à l'utilisateur
func (r *NotificationMongoRepository) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": bson.M{"read_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *NotificationMongoRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "read_at": nil},
		bson.M{"$set": bson.M{"read_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *NotificationMongoRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *NotificationMongoRepository) DeleteRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID, "read_at": bson.M{"$ne": nil}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *NotificationMongoRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]dto.Notification, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]dto.Notification, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
