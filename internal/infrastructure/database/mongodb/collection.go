package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CollectionManager struct {
	client *Client
}

func NewCollectionManager(client *Client) *CollectionManager {
	return &CollectionManager{client: client}
}

// EnsureNotificationsCollection crée la collection des notifications in-app
// avec son validateur et ses index si elle n'existe pas encore
func (cm *CollectionManager) EnsureNotificationsCollection(ctx context.Context, name string) error {
	exists, err := cm.CollectionExists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		validator := bson.M{
			"$jsonSchema": bson.M{
				"bsonType": "object",
				"required": []string{"user_id", "type", "message", "created_at"},
				"properties": bson.M{
					"user_id": bson.M{
						"bsonType":    "string",
						"description": "Destinataire (identifiant utilisateur)",
					},
					"type": bson.M{
						"bsonType":    "string",
						"description": "Type de notification (ex: rendezvous_cree)",
					},
					"message": bson.M{
						"bsonType":    "string",
						"description": "Texte affiché à l'utilisateur",
					},
					"data": bson.M{
						"bsonType":    "object",
						"description": "Données complémentaires",
					},
					"read_at": bson.M{
						"bsonType":    []string{"date", "null"},
						"description": "Date de lecture",
					},
					"created_at": bson.M{
						"bsonType":    "date",
						"description": "Date de création",
					},
				},
			},
		}

		opts := options.CreateCollection().SetValidator(validator)
		if err := cm.client.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read_at", Value: 1}}},
	}
	return cm.client.CreateIndexes(ctx, name, indexes)
}

func (cm *CollectionManager) CollectionExists(ctx context.Context, name string) (bool, error) {
	collections, err := cm.client.ListCollectionNames(ctx)
	if err != nil {
		return false, err
	}

	for _, coll := range collections {
		if coll == name {
			return true, nil
		}
	}
	return false, nil
}
