package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RandySimanca/avicola/internal/repository"
)

// Store implements repository.Store on top of a MongoDB replica set, using
// multi-document transactions for the consistency operations.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// RunTransaction executes fn inside a MongoDB session transaction. The driver
// already retries transient errors internally; whatever still surfaces is
// classified into the repository error taxonomy.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return classify(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoTx{db: s.db})
	})
	return classify(err)
}

// Get reads a single document by id.
func (s *Store) Get(ctx context.Context, collection, id string, out any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s/%s: %w", collection, id, repository.ErrNotFound)
	}
	return classify(err)
}

// Put inserts or replaces the document at id.
func (s *Store) Put(ctx context.Context, collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts)
	return classify(err)
}

// Delete removes the document at id, tolerating its absence.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return classify(err)
}

// List loads all documents matching filter into out.
func (s *Store) List(ctx context.Context, collection string, filter repository.Filter, orderBy string, out any) error {
	query := bson.M{}
	for field, value := range filter {
		query[field] = value
	}

	opts := options.Find()
	if orderBy != "" {
		field, direction := orderBy, 1
		if strings.HasPrefix(orderBy, "-") {
			field, direction = orderBy[1:], -1
		}
		opts.SetSort(bson.D{{Key: field, Value: direction}})
	}

	cursor, err := s.db.Collection(collection).Find(ctx, query, opts)
	if err != nil {
		return classify(err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return classify(err)
	}
	return nil
}

// mongoTx routes reads and writes through the session carried in ctx.
type mongoTx struct {
	db *mongo.Database
}

func (t *mongoTx) Get(ctx context.Context, collection, id string, out any) error {
	err := t.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s/%s: %w", collection, id, repository.ErrNotFound)
	}
	return err
}

func (t *mongoTx) Put(ctx context.Context, collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	_, err := t.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts)
	return err
}

func (t *mongoTx) Delete(ctx context.Context, collection, id string) error {
	_, err := t.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// classify translates driver errors into the repository taxonomy so the
// service layer can decide between retrying and queueing offline. Domain
// errors returned by transaction bodies pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		if serverErr.HasErrorLabel("TransientTransactionError") || serverErr.HasErrorLabel("UnknownTransactionCommitResult") {
			return fmt.Errorf("%w: %v", repository.ErrConflict, err)
		}
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", repository.ErrConflict, err)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", repository.ErrNetworkUnavailable, err)
	}
	return err
}
