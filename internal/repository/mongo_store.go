package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"textorigin/internal/models"
)

const countersCollection = "counters"

type mongoSample struct {
	ID        int64     `bson:"_id"`
	Text      string    `bson:"text"`
	Label     string    `bson:"label"`
	Trained   bool      `bson:"trained"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d mongoSample) toModel() models.Sample {
	return models.Sample{
		ID:        d.ID,
		Text:      d.Text,
		Label:     models.Label(d.Label),
		Trained:   d.Trained,
		CreatedAt: d.CreatedAt,
	}
}

// mongoCorpus stores samples as documents keyed by a sequential int64 taken from a
// counters collection, so IDs are ordered like the SQL stores.
type mongoCorpus struct {
	client   *mongo.Client
	samples  *mongo.Collection
	counters *mongo.Collection
	seqName  string
}

// NewMongoCorpus connects to MongoDB and ensures the text index.
func NewMongoCorpus(ctx context.Context, uri, database, collection string, logger *zap.Logger) (CorpusRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	r := &mongoCorpus{
		client:   client,
		samples:  db.Collection(collection),
		counters: db.Collection(countersCollection),
		seqName:  collection,
	}
	_, err = r.samples.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "text", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create text index: %w", err)
	}
	logger.Info("Successfully connected to the database",
		zap.String("driver", "mongo"), zap.String("database", database), zap.String("collection", collection))
	return r, nil
}

func (r *mongoCorpus) List(ctx context.Context) ([]models.Sample, error) {
	return r.ListTrainable(ctx, false)
}

func (r *mongoCorpus) ListTrainable(ctx context.Context, onlyUntrained bool) ([]models.Sample, error) {
	filter := bson.M{}
	if onlyUntrained {
		filter = bson.M{"trained": false}
	}
	cur, err := r.samples.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []mongoSample
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Sample, len(docs))
	for i, d := range docs {
		out[i] = d.toModel()
	}
	return out, nil
}

func (r *mongoCorpus) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": r.seqName},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next sample id: %w", err)
	}
	return counter.Seq, nil
}

func (r *mongoCorpus) Add(ctx context.Context, s *models.Sample) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	s.ID = id
	s.Trained = false
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err = r.samples.InsertOne(ctx, mongoSample{
		ID:        s.ID,
		Text:      s.Text,
		Label:     string(s.Label),
		Trained:   false,
		CreatedAt: s.CreatedAt,
	})
	return err
}

func (r *mongoCorpus) DeleteByText(ctx context.Context, text string) (int64, error) {
	var doc mongoSample
	opts := options.FindOneAndDelete().SetSort(bson.D{{Key: "_id", Value: 1}})
	err := r.samples.FindOneAndDelete(ctx, bson.M{"text": text}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return doc.ID, nil
}

func (r *mongoCorpus) MarkTrained(ctx context.Context, maxID int64) (int64, error) {
	res, err := r.samples.UpdateMany(ctx,
		bson.M{"trained": false, "_id": bson.M{"$lte": maxID}},
		bson.M{"$set": bson.M{"trained": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *mongoCorpus) Count(ctx context.Context) (int, error) {
	n, err := r.samples.CountDocuments(ctx, bson.M{})
	return int(n), err
}

func (r *mongoCorpus) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
