// Package mongostore accumulates global counts in MongoDB across runs.
package mongostore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrDoghead/COMP90024-project1/models"
)

const (
	DefaultDatabase       = "tweetrank"
	HashtagsCollection    = "hashtags"
	LanguagesCollection   = "languages"
	connectTimeout        = 10 * time.Second
	maxWriteModelsPerCall = 10000
)

// Count is the document shape of both collections.
type Count struct {
	Dataset string    `bson:"dataset"`
	Token   string    `bson:"token"`
	Count   int       `bson:"count"`
	RunID   string    `bson:"last_run_id"`
	Updated time.Time `bson:"updated_at"`
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri and pings the server before returning.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// Save adds the global tally of one dataset to the stored counts.
// Both collections are upserted with $inc keyed by (dataset, token).
func (s *Store) Save(ctx context.Context, runID, dataset string, global *models.Tally) error {
	now := time.Now().UTC()
	if err := s.save(ctx, HashtagsCollection, buildModels(runID, dataset, global.Hashtags, now)); err != nil {
		return err
	}
	return s.save(ctx, LanguagesCollection, buildModels(runID, dataset, global.Languages, now))
}

// Top reads the highest stored counts for a dataset, count descending then token ascending.
func (s *Store) Top(ctx context.Context, collection, dataset string, n int64) ([]Count, error) {
	if n <= 0 {
		// A zero limit means "no limit" to the server.
		return []Count{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "count", Value: -1}, {Key: "token", Value: 1}}).SetLimit(n)
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{"dataset": dataset}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	var counts []Count
	if err := cur.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return counts, nil
}

// Ranking converts stored counts, already ordered by Top, into ranked entries.
func Ranking(counts []Count) []models.RankedEntry {
	entries := make([]models.RankedEntry, len(counts))
	for i, c := range counts {
		entries[i] = models.RankedEntry{Token: c.Token, Count: c.Count}
	}
	return entries
}

func (s *Store) save(ctx context.Context, collection string, writes []mongo.WriteModel) error {
	coll := s.db.Collection(collection)
	for start := 0; start < len(writes); start += maxWriteModelsPerCall {
		end := min(start+maxWriteModelsPerCall, len(writes))
		if _, err := coll.BulkWrite(ctx, writes[start:end], options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("failed to update %s counts: %w", collection, err)
		}
	}
	return nil
}

// buildModels returns one upsert per token, sorted by token.
func buildModels(runID, dataset string, counts models.FrequencyMap, now time.Time) []mongo.WriteModel {
	tokens := make([]string, 0, len(counts))
	for token := range counts {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	writes := make([]mongo.WriteModel, 0, len(tokens))
	for _, token := range tokens {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"dataset": dataset, "token": token}).
			SetUpdate(bson.M{
				"$inc": bson.M{"count": counts[token]},
				"$set": bson.M{"last_run_id": runID, "updated_at": now},
			}).
			SetUpsert(true))
	}
	return writes
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
