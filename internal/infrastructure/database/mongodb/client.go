package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

func NewClient(config *MongoConfig) (*Client, error) {
	connectTimeout := 10 * time.Second
	if config.ConnectTimeout > 0 {
		connectTimeout = config.ConnectTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.URI)

	maxPoolSize := uint64(100)
	if config.MaxPoolSize > 0 {
		maxPoolSize = config.MaxPoolSize
	}
	clientOptions.SetMaxPoolSize(maxPoolSize)
	clientOptions.SetMinPoolSize(2)
	clientOptions.SetMaxConnIdleTime(30 * time.Minute)
	clientOptions.SetConnectTimeout(connectTimeout)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)

	// Lecture de ses propres écritures (compteur de non lues)
	clientOptions.SetReadPreference(readpref.Primary())
	clientOptions.SetRetryWrites(true)
	clientOptions.SetRetryReads(true)

	// Connect est paresseux : la disponibilité est vérifiée par le lifecycle
	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return &Client{
		client:   mongoClient,
		database: mongoClient.Database(config.Database),
	}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("MongoDB client is nil")
	}

	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

func (c *Client) Close(ctx context.Context) error {
	if c.client != nil {
		return c.client.Disconnect(ctx)
	}
	return nil
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

func (c *Client) CreateCollection(ctx context.Context, name string, opts ...*options.CreateCollectionOptions) error {
	return c.database.CreateCollection(ctx, name, opts...)
}

func (c *Client) ListCollectionNames(ctx context.Context) ([]string, error) {
	return c.database.ListCollectionNames(ctx, bson.D{})
}

func (c *Client) CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error {
	_, err := c.Collection(collection).Indexes().CreateMany(ctx, models)
	return err
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx)
}
