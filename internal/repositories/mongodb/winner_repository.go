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

// WinnerRepository implements repositories.WinnerRepository
type WinnerRepository struct {
	collection *mongo.Collection
}

// NewWinnerRepository creates a new WinnerRepository
func NewWinnerRepository(db *mongo.Database) repositories.WinnerRepository {
	return &WinnerRepository{
		collection: db.Collection("winners"),
	}
}

// Create creates a new winner. The uniq_claim_code index rejects a
// colliding claim code with repositories.ErrDuplicate; the draw engine
// regenerates and retries on that specific error.
func (r *WinnerRepository) Create(ctx context.Context, winner *models.PrizeWinner) error {
	winner.CreatedAt = time.Now()
	winner.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, winner)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		winner.ID = id
	}
	return nil
}

// FindByID finds a winner by ID
func (r *WinnerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeWinner, error) {
	var winner models.PrizeWinner
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&winner)
	if err != nil {
		return nil, translate(err)
	}
	return &winner, nil
}

// FindByDrawID finds all winners produced by one draw
func (r *WinnerRepository) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.PrizeWinner, error) {
	return r.findAll(ctx, bson.M{"drawId": drawID}, options.Find().SetSort(bson.M{"drawSequence": 1}))
}

// FindByClaimCode looks a winner up by claim code without settling it
func (r *WinnerRepository) FindByClaimCode(ctx context.Context, code string) (*models.PrizeWinner, error) {
	var winner models.PrizeWinner
	err := r.collection.FindOne(ctx, bson.M{"claimCode": code}).Decode(&winner)
	if err != nil {
		return nil, translate(err)
	}
	return &winner, nil
}

// Find returns winners matching the filter with pagination, newest first
func (r *WinnerRepository) Find(ctx context.Context, filter repositories.WinnerFilter, page, limit int) ([]*models.PrizeWinner, error) {
	query := bson.M{}
	if filter.TierID != nil {
		query["tierId"] = *filter.TierID
	}
	if filter.DrawID != nil {
		query["drawId"] = *filter.DrawID
	}
	if filter.MSISDN != "" {
		query["msisdn"] = filter.MSISDN
	}
	if filter.Claimed != nil {
		query["claimed"] = *filter.Claimed
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})
	return r.findAll(ctx, query, opts)
}

// CountByTier counts winners for a tier
func (r *WinnerRepository) CountByTier(ctx context.Context, tierID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"tierId": tierID})
}

// ClaimCodeExists reports whether a claim code is already in use
func (r *WinnerRepository) ClaimCodeExists(ctx context.Context, code string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"claimCode": code})
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// ClaimByCode settles a winner with a single conditional update: only a
// document whose claimed flag is still false can match, so of two
// concurrent claims with the same code exactly one succeeds. A zero match
// surfaces as repositories.ErrNotFound.
func (r *WinnerRepository) ClaimByCode(ctx context.Context, code string, update repositories.ClaimUpdate) (*models.PrizeWinner, error) {
	filter := bson.M{"claimCode": code, "claimed": false}
	set := bson.M{"$set": bson.M{
		"claimed":     true,
		"claimedAt":   update.ClaimedAt,
		"claimBranch": update.Branch,
		"claimedBy":   update.Operator,
		"claimNotes":  update.Notes,
		"updatedAt":   update.ClaimedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var winner models.PrizeWinner
	err := r.collection.FindOneAndUpdate(ctx, filter, set, opts).Decode(&winner)
	if err != nil {
		return nil, translate(err)
	}
	return &winner, nil
}

func (r *WinnerRepository) findAll(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*models.PrizeWinner, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var winners []*models.PrizeWinner
	if err := cursor.All(ctx, &winners); err != nil {
		return nil, err
	}
	return winners, nil
}
