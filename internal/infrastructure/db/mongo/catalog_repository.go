package mongo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

const (
	collectionProducts   = "products"
	collectionCategories = "categories"
	collectionStock      = "stock"
)

// CatalogRepository implements ports.CatalogBackend using MongoDB.
type CatalogRepository struct {
	db *mongo.Database
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type mongoCategory struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description,omitempty"`
}

func (c mongoCategory) toDomain() domain.Category {
	return domain.Category{ID: c.ID.Hex(), Name: c.Name, Slug: c.Slug, Description: c.Description}
}

type mongoProduct struct {
	ID               primitive.ObjectID   `bson:"_id"`
	Name             string               `bson:"name"`
	Description      string               `bson:"description,omitempty"`
	CategoryID       primitive.ObjectID   `bson:"category_id"`
	DistributorPrice primitive.Decimal128 `bson:"distributor_price"`
	ClientPrice      primitive.Decimal128 `bson:"client_price"`
	Featured         bool                 `bson:"featured"`
	Image            string               `bson:"image,omitempty"`
}

func (p mongoProduct) toDomain() domain.Product {
	return domain.Product{
		ID:               p.ID.Hex(),
		Name:             p.Name,
		Description:      p.Description,
		Category:         domain.CategoryRef{ID: p.CategoryID.Hex()},
		DistributorPrice: fromDecimal128(p.DistributorPrice),
		ClientPrice:      fromDecimal128(p.ClientPrice),
		Featured:         p.Featured,
		Image:            p.Image,
	}
}

type mongoStock struct {
	ID            primitive.ObjectID `bson:"_id"`
	DistributorID string             `bson:"distributor_id"`
	ProductID     primitive.ObjectID `bson:"product_id"`
	Quantity      int                `bson:"quantity"`
	LowStockAlert int                `bson:"low_stock_alert"`
	Product       []mongoProduct     `bson:"product,omitempty"`
}

func (s mongoStock) toDomain() domain.StockAssignment {
	item := domain.StockAssignment{
		ID:            s.ID.Hex(),
		Product:       domain.Product{ID: s.ProductID.Hex()},
		Quantity:      nonNegative(s.Quantity),
		LowStockAlert: nonNegative(s.LowStockAlert),
	}
	if len(s.Product) > 0 {
		item.Product = s.Product[0].toDomain()
	}
	return item
}

// ListProducts returns every product in insertion order.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var docs []mongoProduct
	if err := r.findAll(ctx, collectionProducts, bson.M{}, &docs); err != nil {
		return nil, fmt.Errorf("list products: %w: %v", domain.ErrNetwork, err)
	}
	out := make([]domain.Product, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// ListCategories returns every category sorted by name.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var docs []mongoCategory
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if err := r.findAll(ctx, collectionCategories, bson.M{}, &docs, opts); err != nil {
		return nil, fmt.Errorf("list categories: %w: %v", domain.ErrNetwork, err)
	}
	out := make([]domain.Category, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// ListDistributorStock returns the distributor's assignments with their
// products embedded. Assignments whose product is gone keep a bare reference.
func (r *CatalogRepository) ListDistributorStock(ctx context.Context, distributorID string) ([]domain.StockAssignment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"distributor_id": distributorID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionProducts,
			"localField":   "product_id",
			"foreignField": "_id",
			"as":           "product",
		}}},
	}

	cur, err := r.db.Collection(collectionStock).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w: %v", domain.ErrNetwork, err)
	}
	var docs []mongoStock
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list stock: %w: %v", domain.ErrNetwork, err)
	}

	out := make([]domain.StockAssignment, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// EnsureIndexes creates the catalog indexes.
func (r *CatalogRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.db.Collection(collectionCategories).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	if _, err := r.db.Collection(collectionProducts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category_id", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := r.db.Collection(collectionStock).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "distributor_id", Value: 1}},
	})
	return err
}

func (r *CatalogRepository) findAll(ctx context.Context, coll string, filter bson.M, out interface{}, opts ...*options.FindOptions) error {
	cur, err := r.db.Collection(coll).Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func fromDecimal128(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
