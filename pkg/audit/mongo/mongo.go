// Package mongo stores Fae render audit records in MongoDB.
//
// Grounded on the teacher's pkg/mongodb/handler.go: a Handler wrapping
// a *mongo.Client and database, constructed via NewHandlerFromURI with
// a bounded Connect/Ping.
package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fae-lang/fae/pkg/audit"
)

// doc mirrors audit.Record for BSON storage.
type doc struct {
	ID         string    `bson:"_id"`
	Template   string    `bson:"template"`
	DurationNs int64     `bson:"duration_ns"`
	Error      string    `bson:"error,omitempty"`
	At         time.Time `bson:"at"`
}

// Store implements audit.Store against a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to uri and returns a Store backed by the render_audit
// collection in dbName.
func Open(uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		coll:   client.Database(dbName).Collection("render_audit"),
	}, nil
}

// RecordRender implements audit.Store.
func (s *Store) RecordRender(ctx context.Context, template string, duration time.Duration, renderErr error) {
	errText := ""
	if renderErr != nil {
		errText = renderErr.Error()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, _ = s.coll.InsertOne(ctx, doc{
		ID: uuid.NewString(), Template: template, DurationNs: duration.Nanoseconds(), Error: errText, At: time.Now(),
	})
}

// Recent implements audit.Recent.
func (s *Store) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []audit.Record
	for cur.Next(ctx) {
		var d doc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, audit.Record{
			ID: d.ID, Template: d.Template, Duration: time.Duration(d.DurationNs), Err: d.Error, At: d.At,
		})
	}
	return out, cur.Err()
}

// Close disconnects the MongoDB client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}
