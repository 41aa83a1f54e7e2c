package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blobbench/config"
)

const (
	mongoCollection   = "blobs"
	mongoGridFSBucket = "blobfs"
)

// Mongo benchmarks MongoDB using GridFS for blob payloads and a
// time-series collection as the timestamp index. Each write uploads the
// blob to GridFS and inserts a {time, blob_id} document; reads resolve the
// document first and then fetch the GridFS file.
//
// ReadLast on an empty store returns empty bytes and no error, matching
// the convention of this backend family; the other adapters fail instead.
type Mongo struct {
	cfg    config.MongoConfig
	client *mongo.Client
	db     *mongo.Database
	coll   *mongo.Collection
	fs     *gridfs.Bucket
}

// NewMongo returns an adapter for the configured MongoDB deployment. The
// driver dials lazily; Setup performs the first round trips.
func NewMongo(cfg config.MongoConfig) (*Mongo, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.URI()))
	if err != nil {
		return nil, fmt.Errorf("mongo client: %w", err)
	}
	db := client.Database(cfg.Database)
	fs, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(mongoGridFSBucket))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &Mongo{
		cfg:    cfg,
		client: client,
		db:     db,
		coll:   db.Collection(mongoCollection),
		fs:     fs,
	}, nil
}

func (m *Mongo) Name() string { return "mongo" }

// Setup creates the time-series index collection when missing. GridFS
// creates its own collections and indexes on first upload.
func (m *Mongo) Setup(ctx context.Context) error {
	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return opErr(m.Name(), "list collections", err)
	}
	for _, name := range names {
		if name == mongoCollection {
			return nil
		}
	}
	tsOpts := options.TimeSeries().SetTimeField("time").SetGranularity("seconds")
	if err := m.db.CreateCollection(ctx, mongoCollection,
		options.CreateCollection().SetTimeSeriesOptions(tsOpts)); err != nil {
		return opErr(m.Name(), "create collection", err)
	}
	return nil
}

type mongoRecord struct {
	Time   time.Time          `bson:"time"`
	BlobID primitive.ObjectID `bson:"blob_id"`
}

func (m *Mongo) Write(ctx context.Context, blob []byte, ts int64) error {
	t := time.Unix(0, ts)
	id, err := m.fs.UploadFromStream(fmt.Sprintf("blob_%d", ts), bytes.NewReader(blob))
	if err != nil {
		return opErr(m.Name(), "gridfs upload", err)
	}
	if _, err := m.coll.InsertOne(ctx, bson.M{"time": t, "blob_id": id}); err != nil {
		return opErr(m.Name(), "insert record", err)
	}
	return nil
}

func (m *Mongo) ReadLast(ctx context.Context) ([]byte, error) {
	var rec mongoRecord
	err := m.coll.FindOne(ctx, bson.D{},
		options.FindOne().SetSort(bson.D{{Key: "time", Value: -1}})).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, opErr(m.Name(), "find last", err)
	}
	return m.download(rec.BlobID)
}

func (m *Mongo) ReadBatch(ctx context.Context, start int64) ([][]byte, error) {
	cursor, err := m.coll.Find(ctx, bson.M{"time": bson.M{"$gte": time.Unix(0, start)}})
	if err != nil {
		return nil, opErr(m.Name(), "find batch", err)
	}
	defer cursor.Close(ctx)

	var blobs [][]byte
	for cursor.Next(ctx) {
		var rec mongoRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, opErr(m.Name(), "decode record", err)
		}
		blob, err := m.download(rec.BlobID)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob)
	}
	if err := cursor.Err(); err != nil {
		return nil, opErr(m.Name(), "find batch", err)
	}
	return blobs, nil
}

func (m *Mongo) download(id primitive.ObjectID) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.fs.DownloadToStream(id, &buf); err != nil {
		return nil, opErr(m.Name(), "gridfs download", err)
	}
	return buf.Bytes(), nil
}

// Cleanup drops the index collection and the GridFS bucket, then closes
// the client.
func (m *Mongo) Cleanup(ctx context.Context) error {
	if err := m.coll.Drop(ctx); err != nil {
		slog.Error("failed to drop collection", "backend", m.Name(), "collection", mongoCollection, "error", err)
	}
	if err := m.fs.Drop(); err != nil {
		slog.Error("failed to drop gridfs bucket", "backend", m.Name(), "bucket", mongoGridFSBucket, "error", err)
	}
	if err := m.client.Disconnect(ctx); err != nil {
		return opErr(m.Name(), "disconnect", err)
	}
	return nil
}
