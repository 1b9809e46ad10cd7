package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"travel-blog-server/models"
)

type MongoPostRepository struct {
	collection *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the indexes backing listing filters and sort order.
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "location.region", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "location.country", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "categories", Value: 1}}},
	})
	return err
}

func (r *MongoPostRepository) Create(ctx context.Context, p *models.Post) error {
	now := timestamp()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	_, err := r.collection.InsertOne(ctx, p)
	return err
}

func (r *MongoPostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// listQuery turns a filter into a Mongo query document.
func listQuery(filter models.PostFilter) bson.M {
	query := bson.M{}
	if filter.Region != "" {
		query["location.region"] = string(filter.Region)
	}
	if filter.Country != "" {
		query["location.country"] = filter.Country
	}
	if filter.Category != "" {
		query["categories"] = filter.Category
	}
	if !filter.Author.IsZero() {
		query["author"] = filter.Author
	}
	return query
}

func (r *MongoPostRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MongoPostRepository) Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate) (*models.Post, error) {
	set := bson.M{"updated_at": timestamp()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Summary != nil {
		set["summary"] = *update.Summary
	}
	if update.ImageURL != nil {
		set["image_url"] = *update.ImageURL
	}
	if update.Categories != nil {
		set["categories"] = *update.Categories
	}
	if update.Country != nil {
		set["location.country"] = *update.Country
	}
	if update.City != nil {
		set["location.city"] = *update.City
	}
	if update.Region != nil {
		set["location.region"] = string(*update.Region)
	}

	var post models.Post
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// countPipeline groups posts by field, skipping missing and empty values.
func countPipeline(field string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: bson.M{"$exists": true, "$nin": bson.A{nil, ""}}}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}

func (r *MongoPostRepository) CountByCountry(ctx context.Context) ([]models.CountryCount, error) {
	cursor, err := r.collection.Aggregate(ctx, countPipeline("location.country"))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := []models.CountryCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *MongoPostRepository) CountByRegion(ctx context.Context) ([]models.RegionCount, error) {
	cursor, err := r.collection.Aggregate(ctx, countPipeline("location.region"))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := []models.RegionCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
