// Package mongodb implements the repository interfaces on top of the
// MongoDB driver. Uniqueness guarantees (one entry per participant and
// tier, one winner per claim code) live in the indexes declared by
// EnsureIndexes, not in application pre-checks.
package mongodb

import (
	"context"
	"errors"

	"github.com/scoreplay/promo-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repositories.ErrDuplicate
	default:
		return err
	}
}

// EnsureIndexes creates the indexes the engine's invariants depend on.
// Called once at startup; index creation is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("entries").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "msisdn", Value: 1}, {Key: "tierId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_msisdn_tier"),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("winners").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "claimCode", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_claim_code"),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("admin_users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_admin_email"),
	})
	if err != nil {
		return err
	}
	_, err = db.Collection("audit_logs").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("audit_created_desc"),
	})
	if err != nil {
		return err
	}

	// Seed the tier range-lock document outside any transaction, so the
	// in-transaction upserts against it never have to create the
	// collection.
	_, err = db.Collection("tiers_meta").UpdateOne(ctx,
		bson.M{"_id": "range_lock"},
		bson.M{"$setOnInsert": bson.M{"revision": int64(0)}},
		options.Update().SetUpsert(true),
	)
	return err
}
