package mongo

import (
	"context"
	"time"

	"github.com/linkatalog/linkatalog/internal/catalog"
	"github.com/linkatalog/linkatalog/internal/infrastructure/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClickStatsRepository aggregates click events into per-day counts, keyed by
// (linkId, date). Written by the click consumer, read by the admin stats API.
type ClickStatsRepository struct {
	coll *mongo.Collection
}

type clickDailyDoc struct {
	LinkID string `bson:"linkId"`
	Date   string `bson:"date"` // YYYY-MM-DD (UTC)
	Count  int64  `bson:"count"`
}

func NewClickStatsRepository(m *db.Mongo) (*ClickStatsRepository, error) {
	repo := &ClickStatsRepository{coll: m.Collection("clicks_daily")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "linkId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_link_date"),
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *ClickStatsRepository) IncDaily(ctx context.Context, linkID string, at time.Time) error {
	date := at.UTC().Format(time.DateOnly)

	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"linkId": linkID, "date": date},
		bson.M{
			"$inc": bson.M{"count": 1},
			"$setOnInsert": bson.M{
				"linkId": linkID,
				"date":   date,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *ClickStatsRepository) GetDaily(ctx context.Context, linkID string, from, to time.Time) ([]catalog.DailyCount, error) {
	filter := bson.M{
		"linkId": linkID,
		"date": bson.M{
			"$gte": from.UTC().Format(time.DateOnly),
			"$lte": to.UTC().Format(time.DateOnly),
		},
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []clickDailyDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	counts := make([]catalog.DailyCount, 0, len(docs))
	for _, doc := range docs {
		counts = append(counts, catalog.DailyCount{Date: doc.Date, Count: doc.Count})
	}
	return counts, nil
}
