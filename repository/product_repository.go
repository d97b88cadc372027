package repository

import (
	"context"
	"errors"
	"time"

	"cmticaret/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductFilter holds the supported catalog listing filters.
type ProductFilter struct {
	CategoryID string
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
	Sort       string // price_asc, price_desc, name_asc, name_desc, created_at_asc, created_at_desc
	Page       int
	Limit      int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Find(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id string, updates bson.M) error
	Delete(ctx context.Context, id string) error
	// DecrementStock atomically decrements stock by qty only when at
	// least qty units remain; returns ErrInsufficientStock otherwise.
	DecrementStock(ctx context.Context, id string, qty int) error
	// IncrementStock restores stock, used to compensate a rejected checkout.
	IncrementStock(ctx context.Context, id string, qty int) error
	FindLowStock(ctx context.Context) ([]models.Product, error)
	FindOutOfStock(ctx context.Context) ([]models.Product, error)
}

// MongoProductRepository implements ProductRepository on a Mongo collection.
type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection("products")}
}

func notDeleted() bson.M {
	return bson.M{"$exists": false}
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	filter := bson.M{"_id": id, "deleted_at": notDeleted()}
	var product models.Product
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *MongoProductRepository) Find(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	filter := bson.M{"deleted_at": notDeleted()}

	if f.CategoryID != "" {
		filter["category_id"] = f.CategoryID
	}
	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	if f.InStock != nil && *f.InStock {
		filter["stock"] = bson.M{"$gt": 0}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	findOptions := options.Find().
		SetSort(sortSpec(f.Sort)).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func sortSpec(sort string) bson.D {
	switch sort {
	case "price_asc":
		return bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		return bson.D{{Key: "price", Value: -1}}
	case "name_asc":
		return bson.D{{Key: "name", Value: 1}}
	case "name_desc":
		return bson.D{{Key: "name", Value: -1}}
	case "created_at_asc":
		return bson.D{{Key: "created_at", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	_, err := r.collection.InsertOne(ctx, product)
	return err
}

func (r *MongoProductRepository) Update(ctx context.Context, id string, updates bson.M) error {
	filter := bson.M{"_id": id, "deleted_at": notDeleted()}
	updates["updated_at"] = time.Now().UTC()
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": updates})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete performs a soft delete.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	filter := bson.M{"_id": id, "deleted_at": notDeleted()}
	update := bson.M{"$set": bson.M{"deleted_at": time.Now().UTC()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProductRepository) DecrementStock(ctx context.Context, id string, qty int) error {
	filter := bson.M{
		"_id":        id,
		"deleted_at": notDeleted(),
		"stock":      bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the product is gone or the remaining stock is short;
		// distinguish so checkout can surface the right message.
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *MongoProductRepository) IncrementStock(ctx context.Context, id string, qty int) error {
	update := bson.M{
		"$inc": bson.M{"stock": qty},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *MongoProductRepository) FindLowStock(ctx context.Context) ([]models.Product, error) {
	filter := bson.M{
		"deleted_at": notDeleted(),
		"stock":      bson.M{"$gt": 0},
		"$expr":      bson.M{"$lte": bson.A{"$stock", "$min_stock"}},
	}
	return r.findAll(ctx, filter)
}

func (r *MongoProductRepository) FindOutOfStock(ctx context.Context) ([]models.Product, error) {
	filter := bson.M{
		"deleted_at": notDeleted(),
		"stock":      bson.M{"$lte": 0},
	}
	return r.findAll(ctx, filter)
}

func (r *MongoProductRepository) findAll(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
