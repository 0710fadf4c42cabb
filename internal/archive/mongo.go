package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

// ErrNoSnapshot is returned when no ranking snapshot is stored.
var ErrNoSnapshot = errors.New("no ranking snapshot")

// Snapshot is the ranking report of one day as stored in Mongo.
type Snapshot struct {
	Day       string               `bson:"day"`
	UpdatedAt time.Time            `bson:"updated_at"`
	Report    models.RankingReport `bson:"report"`
}

// MongoArchive keeps one ranking snapshot per day so past leaderboards
// stay available after the roster moves on.
type MongoArchive struct {
	Client     *mongo.Client
	Collection *mongo.Collection
	now        func() time.Time
}

func NewMongoArchive(ctx context.Context, uri, database, collection string) (*MongoArchive, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoArchive{
		Client:     client,
		Collection: client.Database(database).Collection(collection),
		now:        time.Now,
	}, nil
}

// Save replaces the snapshot for report.Day, inserting it if missing.
func (a *MongoArchive) Save(ctx context.Context, report models.RankingReport) error {
	if report.Day == "" {
		return fmt.Errorf("report has no day")
	}

	now := time.Now
	if a.now != nil {
		now = a.now
	}
	snapshot := Snapshot{Day: report.Day, UpdatedAt: now().UTC(), Report: report}

	_, err := a.Collection.ReplaceOne(ctx,
		bson.M{"day": report.Day},
		snapshot,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", report.Day, err)
	}
	return nil
}

func (a *MongoArchive) Get(ctx context.Context, day string) (*Snapshot, error) {
	return a.findOne(ctx, bson.D{{Key: "day", Value: day}}, options.FindOne())
}

func (a *MongoArchive) Latest(ctx context.Context) (*Snapshot, error) {
	return a.findOne(ctx, bson.D{}, options.FindOne().SetSort(bson.D{{Key: "day", Value: -1}}))
}

func (a *MongoArchive) findOne(ctx context.Context, filter bson.D, opts *options.FindOneOptions) (*Snapshot, error) {
	var s Snapshot
	err := a.Collection.FindOne(ctx, filter, opts).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	return &s, nil
}

func (a *MongoArchive) Close(ctx context.Context) error {
	return a.Client.Disconnect(ctx)
}
