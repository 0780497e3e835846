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

// TierRepository implements repositories.TierRepository
type TierRepository struct {
	collection *mongo.Collection
	meta       *mongo.Collection
}

// NewTierRepository creates a new TierRepository
func NewTierRepository(db *mongo.Database) repositories.TierRepository {
	return &TierRepository{
		collection: db.Collection("tiers"),
		meta:       db.Collection("tiers_meta"),
	}
}

// LockRanges bumps the revision on the single range-lock document. Two
// transactions doing this concurrently write-conflict; the driver aborts
// one as transient and session.WithTransaction re-runs it against the
// winner's committed state, so overlap checks never race each other.
func (r *TierRepository) LockRanges(ctx context.Context) error {
	_, err := r.meta.UpdateOne(ctx,
		bson.M{"_id": "range_lock"},
		bson.M{"$inc": bson.M{"revision": 1}},
		options.Update().SetUpsert(true),
	)
	return translate(err)
}

// Create creates a new tier
func (r *TierRepository) Create(ctx context.Context, tier *models.PrizeTier) error {
	tier.CreatedAt = time.Now()
	tier.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, tier)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		tier.ID = id
	}
	return nil
}

// FindByID finds a tier by ID
func (r *TierRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeTier, error) {
	var tier models.PrizeTier
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tier)
	if err != nil {
		return nil, translate(err)
	}
	return &tier, nil
}

func (r *TierRepository) find(ctx context.Context, filter bson.M) ([]*models.PrizeTier, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "displayOrder", Value: 1}, {Key: "minScore", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var tiers []*models.PrizeTier
	if err := cursor.All(ctx, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// FindActive returns active tiers ordered by display order then min score
func (r *TierRepository) FindActive(ctx context.Context) ([]*models.PrizeTier, error) {
	return r.find(ctx, bson.M{"active": true})
}

// FindAll returns all tiers ordered by display order then min score
func (r *TierRepository) FindAll(ctx context.Context) ([]*models.PrizeTier, error) {
	return r.find(ctx, bson.M{})
}

// Update replaces a tier document
func (r *TierRepository) Update(ctx context.Context, tier *models.PrizeTier) error {
	tier.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tier.ID}, tier)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete deletes a tier
func (r *TierRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
