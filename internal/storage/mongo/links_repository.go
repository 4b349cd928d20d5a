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

type LinksRepository struct {
	links      *mongo.Collection
	categories *mongo.Collection
}

type linkDoc struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title"`
	Description string              `bson:"description,omitempty"`
	URL         string              `bson:"url"`
	Image       string              `bson:"image,omitempty"`
	Category    *primitive.ObjectID `bson:"category,omitempty"`
	Tags        []string            `bson:"tags"`
	Clicks      int64               `bson:"clicks"`
	IsFeatured  bool                `bson:"isFeatured"`
	Order       int                 `bson:"order"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

func NewLinksRepository(m *db.Mongo) (*LinksRepository, error) {
	repo := &LinksRepository{
		links:      m.Collection("links"),
		categories: m.Collection("categories"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.links.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("order_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "isFeatured", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index().SetName("featured_order"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category"),
		},
	})
	if err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *LinksRepository) Insert(ctx context.Context, link *catalog.Link) error {
	doc, err := toLinkDoc(link)
	if err != nil {
		return err
	}

	res, err := r.links.InsertOne(ctx, doc)
	if err != nil {
		return err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		link.ID = oid.Hex()
	}
	return nil
}

func (r *LinksRepository) FindAll(ctx context.Context) ([]catalog.Link, error) {
	return r.findMany(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}}))
}

func (r *LinksRepository) FindFeatured(ctx context.Context, limit int) ([]catalog.Link, error) {
	return r.findMany(ctx, bson.M{"isFeatured": true}, options.Find().
		SetSort(bson.D{{Key: "order", Value: 1}}).
		SetLimit(int64(limit)))
}

func (r *LinksRepository) FindByCategory(ctx context.Context, categoryID string) ([]catalog.Link, error) {
	oid, err := primitive.ObjectIDFromHex(categoryID)
	if err != nil {
		// Malformed ids behave like unknown categories: empty result.
		return []catalog.Link{}, nil
	}

	return r.findMany(ctx, bson.M{"category": oid}, options.Find().
		SetSort(bson.D{{Key: "order", Value: 1}}))
}

func (r *LinksRepository) FindByID(ctx context.Context, id string) (*catalog.Link, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, catalog.ErrNotFound
	}

	var doc linkDoc
	if err := r.links.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}

	return r.withResolvedCategory(ctx, mapLinkDoc(doc))
}

func (r *LinksRepository) Update(ctx context.Context, link *catalog.Link) error {
	oid, err := primitive.ObjectIDFromHex(link.ID)
	if err != nil {
		return catalog.ErrNotFound
	}

	set := bson.M{
		"title":       link.Title,
		"description": link.Description,
		"url":         link.URL,
		"image":       link.ImageRef,
		"tags":        link.Tags,
		"clicks":      link.Clicks,
		"isFeatured":  link.IsFeatured,
		"order":       link.Order,
		"updatedAt":   link.UpdatedAt.UTC(),
	}

	update := bson.M{"$set": set}
	catOID, catErr := primitive.ObjectIDFromHex(link.CategoryID)
	if link.CategoryID == "" || catErr != nil {
		update["$unset"] = bson.M{"category": ""}
	} else {
		set["category"] = catOID
	}

	res, err := r.links.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *LinksRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return catalog.ErrNotFound
	}

	res, err := r.links.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// IncrementClicks moves the counter with a single FindOneAndUpdate so that
// concurrent clicks against the same link never lose updates.
func (r *LinksRepository) IncrementClicks(ctx context.Context, id string, at time.Time) (*catalog.Link, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, catalog.ErrNotFound
	}

	update := bson.M{
		"$inc": bson.M{"clicks": 1},
		"$set": bson.M{"updatedAt": at.UTC()},
	}

	var doc linkDoc
	err = r.links.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}

	return r.withResolvedCategory(ctx, mapLinkDoc(doc))
}

func (r *LinksRepository) Summary(ctx context.Context, topN int) (*catalog.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"totalLinks":  bson.M{"$sum": 1},
			"totalClicks": bson.M{"$sum": "$clicks"},
			"featuredLinks": bson.M{"$sum": bson.M{
				"$cond": bson.A{"$isFeatured", 1, 0},
			}},
		}}},
	}

	cursor, err := r.links.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summary := &catalog.Summary{TopLinks: []catalog.Link{}}
	if cursor.Next(ctx) {
		var agg struct {
			TotalLinks    int64 `bson:"totalLinks"`
			TotalClicks   int64 `bson:"totalClicks"`
			FeaturedLinks int64 `bson:"featuredLinks"`
		}
		if err := cursor.Decode(&agg); err != nil {
			return nil, err
		}
		summary.TotalLinks = agg.TotalLinks
		summary.TotalClicks = agg.TotalClicks
		summary.FeaturedLinks = agg.FeaturedLinks
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	top, err := r.findMany(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "clicks", Value: -1}}).
		SetLimit(int64(topN)))
	if err != nil {
		return nil, err
	}
	summary.TopLinks = top

	return summary, nil
}

func (r *LinksRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]catalog.Link, error) {
	cursor, err := r.links.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []linkDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	links := make([]catalog.Link, 0, len(docs))
	for _, doc := range docs {
		links = append(links, *mapLinkDoc(doc))
	}

	if err := r.resolveCategories(ctx, links); err != nil {
		return nil, err
	}
	return links, nil
}

// resolveCategories joins the referenced categories in a single $in query.
// Dangling references resolve to a nil category.
func (r *LinksRepository) resolveCategories(ctx context.Context, links []catalog.Link) error {
	ids := make([]primitive.ObjectID, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, link := range links {
		if link.CategoryID == "" {
			continue
		}
		if _, ok := seen[link.CategoryID]; ok {
			continue
		}
		seen[link.CategoryID] = struct{}{}
		oid, err := primitive.ObjectIDFromHex(link.CategoryID)
		if err != nil {
			continue
		}
		ids = append(ids, oid)
	}
	if len(ids) == 0 {
		return nil
	}

	cursor, err := r.categories.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return err
	}

	byID := make(map[string]*catalog.Category, len(docs))
	for _, doc := range docs {
		byID[doc.ID.Hex()] = mapCategoryDoc(doc)
	}

	for i := range links {
		if cat, ok := byID[links[i].CategoryID]; ok {
			links[i].Category = cat
		}
	}
	return nil
}

func (r *LinksRepository) withResolvedCategory(ctx context.Context, link *catalog.Link) (*catalog.Link, error) {
	if link.CategoryID == "" {
		return link, nil
	}

	oid, err := primitive.ObjectIDFromHex(link.CategoryID)
	if err != nil {
		return link, nil
	}

	var doc categoryDoc
	err = r.categories.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return link, nil
		}
		return nil, err
	}

	link.Category = mapCategoryDoc(doc)
	return link, nil
}

func toLinkDoc(link *catalog.Link) (linkDoc, error) {
	doc := linkDoc{
		Title:       link.Title,
		Description: link.Description,
		URL:         link.URL,
		Image:       link.ImageRef,
		Tags:        link.Tags,
		Clicks:      link.Clicks,
		IsFeatured:  link.IsFeatured,
		Order:       link.Order,
		CreatedAt:   link.CreatedAt.UTC(),
		UpdatedAt:   link.UpdatedAt.UTC(),
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if link.CategoryID != "" {
		oid, err := primitive.ObjectIDFromHex(link.CategoryID)
		if err != nil {
			return linkDoc{}, catalog.ErrNotFound
		}
		doc.Category = &oid
	}
	return doc, nil
}

func mapLinkDoc(doc linkDoc) *catalog.Link {
	link := &catalog.Link{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		URL:         doc.URL,
		ImageRef:    doc.Image,
		Tags:        doc.Tags,
		Clicks:      doc.Clicks,
		IsFeatured:  doc.IsFeatured,
		Order:       doc.Order,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if link.Tags == nil {
		link.Tags = []string{}
	}
	if doc.Category != nil {
		link.CategoryID = doc.Category.Hex()
	}
	return link
}
