package mongodb

import (
	"context"
	"time"

	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DrawRepository implements repositories.DrawRepository
type DrawRepository struct {
	collection *mongo.Collection
}

// NewDrawRepository creates a new DrawRepository
func NewDrawRepository(db *mongo.Database) repositories.DrawRepository {
	return &DrawRepository{
		collection: db.Collection("draws"),
	}
}

// Create appends a draw record. Draw records are never updated or deleted.
func (r *DrawRepository) Create(ctx context.Context, draw *models.PrizeDraw) error {
	draw.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, draw)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		draw.ID = id
	}
	return nil
}

// FindByID finds a draw by ID
func (r *DrawRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeDraw, error) {
	var draw models.PrizeDraw
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&draw)
	if err != nil {
		return nil, translate(err)
	}
	return &draw, nil
}

// FindByTier finds all draws run against a tier, newest first
func (r *DrawRepository) FindByTier(ctx context.Context, tierID primitive.ObjectID) ([]*models.PrizeDraw, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	return r.findAll(ctx, bson.M{"tierId": tierID}, opts)
}

// FindAll returns draws with pagination, newest first
func (r *DrawRepository) FindAll(ctx context.Context, page, limit int) ([]*models.PrizeDraw, error) {
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})
	return r.findAll(ctx, bson.M{}, opts)
}

func (r *DrawRepository) findAll(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*models.PrizeDraw, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var draws []*models.PrizeDraw
	if err := cursor.All(ctx, &draws); err != nil {
		return nil, err
	}
	return draws, nil
}
