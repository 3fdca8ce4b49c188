package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"portfoliosync/apperrors"
	"portfoliosync/logger"
)

// DefaultMongoDatabase is used when the URI has no database path.
const DefaultMongoDatabase = "portfolio"

// MongoStore implements Store on MongoDB. The client is created on first use
// and reused until Close.
type MongoStore struct {
	uri    string
	dbName string
	now    func() time.Time

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore creates a store for uri without connecting.
func NewMongoStore(uri string) (*MongoStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, apperrors.Configf("MONGODB_URI", "invalid mongodb uri: %v", err)
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		name = DefaultMongoDatabase
	}
	return &MongoStore{
		uri:    uri,
		dbName: name,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// DatabaseName returns the database documents are stored in.
func (s *MongoStore) DatabaseName() string {
	return s.dbName
}

func (s *MongoStore) Connect(ctx context.Context) error {
	_, err := s.database(ctx)
	return err
}

func (s *MongoStore) database(ctx context.Context) (*mongo.Database, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	logger.Info("Connecting to MongoDB", zap.String("uri", redact(s.uri)), zap.String("database", s.dbName))
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.uri))
	if err != nil {
		return nil, apperrors.Persistence("connect", fmt.Errorf("%w: %v", ErrDatabaseConnection, err))
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.Persistence("connect", fmt.Errorf("%w: %v", ErrDatabaseConnection, err))
	}

	s.client = client
	s.db = client.Database(s.dbName)
	logger.Info("Connected to MongoDB", zap.String("database", s.dbName))
	return s.db, nil
}

func (s *MongoStore) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	if err := validateCollection(name); err != nil {
		return nil, err
	}
	database, err := s.database(ctx)
	if err != nil {
		return nil, err
	}
	return database.Collection(name), nil
}

func (s *MongoStore) Upsert(ctx context.Context, collection string, filter Filter, doc any) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	set, err := toBSONMap(doc)
	if err != nil {
		return apperrors.Persistence("upsert", err)
	}
	set["updatedAt"] = s.now()

	_, err = coll.UpdateOne(ctx, bson.M(filter), bson.M{"$set": set}, options.Update().SetUpsert(true))
	if err != nil {
		return apperrors.Persistence("upsert", fmt.Errorf("failed to upsert into %s: %w", collection, err))
	}

	logger.Debug("Upserted document", zap.String("collection", collection))
	return nil
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter Filter, opts *FindOptions, out any) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	findOpts := options.FindOne()
	if sort, err := sortDoc(opts); err != nil {
		return err
	} else if sort != nil {
		findOpts.SetSort(sort)
	}

	err = coll.FindOne(ctx, bson.M(filter), findOpts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", ErrNotFound, collection)
	}
	if err != nil {
		return apperrors.Persistence("find", fmt.Errorf("failed to find in %s: %w", collection, err))
	}
	return nil
}

func (s *MongoStore) FindMany(ctx context.Context, collection string, filter Filter, opts *FindOptions, out any) error {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return err
	}

	findOpts := options.Find()
	sort, err := sortDoc(opts)
	if err != nil {
		return err
	}
	if sort != nil {
		findOpts.SetSort(sort)
	}
	if opts != nil && opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := coll.Find(ctx, bson.M(filter), findOpts)
	if err != nil {
		return apperrors.Persistence("find", fmt.Errorf("failed to query %s: %w", collection, err))
	}
	if err := cursor.All(ctx, out); err != nil {
		return apperrors.Persistence("find", fmt.Errorf("failed to decode %s: %w", collection, err))
	}
	return nil
}

func (s *MongoStore) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	res, err := coll.DeleteMany(ctx, bson.M(filter))
	if err != nil {
		return 0, apperrors.Persistence("delete", fmt.Errorf("failed to delete from %s: %w", collection, err))
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) InsertMany(ctx context.Context, collection string, docs []any) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	coll, err := s.collection(ctx, collection)
	if err != nil {
		return 0, err
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, apperrors.Persistence("insert", fmt.Errorf("failed to insert into %s: %w", collection, err))
	}
	return len(res.InsertedIDs), nil
}

// Close disconnects the client. A later call reconnects.
func (s *MongoStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.client.Disconnect(ctx)
	s.client = nil
	s.db = nil
	if err != nil {
		return fmt.Errorf("failed to close mongodb connection: %w", err)
	}
	logger.Info("Closed MongoDB connection")
	return nil
}

func sortDoc(opts *FindOptions) (bson.D, error) {
	if opts == nil || opts.SortField == "" {
		return nil, nil
	}
	if err := validateFieldName(opts.SortField); err != nil {
		return nil, err
	}
	dir := 1
	if opts.SortDesc {
		dir = -1
	}
	return bson.D{{Key: opts.SortField, Value: dir}}, nil
}

func toBSONMap(doc any) (bson.M, error) {
	if m, ok := doc.(bson.M); ok {
		return m, nil
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return m, nil
}
