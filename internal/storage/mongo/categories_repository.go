package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/linkatalog/linkatalog/internal/catalog"
	"github.com/linkatalog/linkatalog/internal/infrastructure/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoriesRepository struct {
	coll *mongo.Collection
}

type categoryDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func NewCategoriesRepository(m *db.Mongo) (*CategoriesRepository, error) {
	repo := &CategoriesRepository{coll: m.Collection("categories")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_name"),
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *CategoriesRepository) Insert(ctx context.Context, category *catalog.Category) error {
	doc := categoryDoc{
		Name:      category.Name,
		CreatedAt: category.CreatedAt.UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return catalog.ErrCategoryNameTaken
		}
		return err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		category.ID = oid.Hex()
	}
	return nil
}

func (r *CategoriesRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	categories := make([]catalog.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, *mapCategoryDoc(doc))
	}
	return categories, nil
}

func (r *CategoriesRepository) FindByID(ctx context.Context, id string) (*catalog.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, catalog.ErrNotFound
	}

	var doc categoryDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}

	return mapCategoryDoc(doc), nil
}

func (r *CategoriesRepository) Update(ctx context.Context, category *catalog.Category) error {
	oid, err := primitive.ObjectIDFromHex(category.ID)
	if err != nil {
		return catalog.ErrNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"name": category.Name},
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return catalog.ErrCategoryNameTaken
		}
		return err
	}
	if res.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// DeleteByID removes the category only; links referencing it keep their
// dangling reference.
func (r *CategoriesRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalog.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func mapCategoryDoc(doc categoryDoc) *catalog.Category {
	return &catalog.Category{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
	}
}
