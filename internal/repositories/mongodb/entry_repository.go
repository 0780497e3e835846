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

// EntryRepository implements repositories.EntryRepository
type EntryRepository struct {
	collection *mongo.Collection
}

// NewEntryRepository creates a new EntryRepository
func NewEntryRepository(db *mongo.Database) repositories.EntryRepository {
	return &EntryRepository{
		collection: db.Collection("entries"),
	}
}

// Create inserts an entry. The uniq_msisdn_tier index rejects a second
// entry for the same (participant, tier) pair; that surfaces as
// repositories.ErrDuplicate even when two requests race past the
// application pre-check.
func (r *EntryRepository) Create(ctx context.Context, entry *models.PrizeEntry) error {
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

// FindByID finds an entry by ID
func (r *EntryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeEntry, error) {
	var entry models.PrizeEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

// FindUnwonByTier returns the tier's current drawing pool
func (r *EntryRepository) FindUnwonByTier(ctx context.Context, tierID primitive.ObjectID) ([]*models.PrizeEntry, error) {
	return r.findAll(ctx, bson.M{"tierId": tierID, "won": false}, nil)
}

// FindByMSISDN returns a participant's entries, newest first
func (r *EntryRepository) FindByMSISDN(ctx context.Context, msisdn string) ([]*models.PrizeEntry, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	return r.findAll(ctx, bson.M{"msisdn": msisdn}, opts)
}

// ExistsForParticipant reports whether the participant already entered the tier
func (r *EntryRepository) ExistsForParticipant(ctx context.Context, msisdn string, tierID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"msisdn": msisdn, "tierId": tierID})
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// Find returns entries matching the filter with pagination, newest first
func (r *EntryRepository) Find(ctx context.Context, filter repositories.EntryFilter, page, limit int) ([]*models.PrizeEntry, error) {
	query := bson.M{}
	if filter.TierID != nil {
		query["tierId"] = *filter.TierID
	}
	if filter.MSISDN != "" {
		query["msisdn"] = filter.MSISDN
	}
	if filter.Won != nil {
		query["won"] = *filter.Won
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})
	return r.findAll(ctx, query, opts)
}

// CountByTier counts all entries owned by a tier
func (r *EntryRepository) CountByTier(ctx context.Context, tierID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"tierId": tierID})
}

// MarkWon conditionally flips won from false to true. A zero match means
// the entry was already won (or deleted) and the surrounding draw
// transaction must abort.
func (r *EntryRepository) MarkWon(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "won": false},
		bson.M{"$set": bson.M{"won": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return translate(err)
	}
	if res.ModifiedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *EntryRepository) findAll(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*models.PrizeEntry, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, query, opts)
	} else {
		cursor, err = r.collection.Find(ctx, query)
	}
	if err != nil {
		return nil, translate(err)
	}
	defer cursor.Close(ctx)

	var entries []*models.PrizeEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
