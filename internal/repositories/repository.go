package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/scoreplay/promo-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors every implementation must translate its storage errors
// into, so services can classify failures without knowing the driver.
var (
	// ErrNotFound: the referenced document does not exist, or a conditional
	// update matched zero documents.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate: a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate key")
)

// TxnRunner executes fn inside one storage transaction. Every repository
// call made with the context fn receives participates in that transaction;
// if fn returns an error the transaction is rolled back in full.
type TxnRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TierRepository persists prize tiers.
type TierRepository interface {
	// LockRanges writes a designated lock document so that concurrent
	// transactions mutating overlap-sensitive tier state conflict on it
	// and serialize. Snapshot reads alone cannot stop two transactions
	// from both passing an overlap check and committing disjoint inserts;
	// callers must acquire this lock before checking.
	LockRanges(ctx context.Context) error
	Create(ctx context.Context, tier *models.PrizeTier) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeTier, error)
	// FindActive returns active tiers ordered by display order then min score.
	FindActive(ctx context.Context) ([]*models.PrizeTier, error)
	// FindAll returns every tier in the same order as FindActive.
	FindAll(ctx context.Context) ([]*models.PrizeTier, error)
	Update(ctx context.Context, tier *models.PrizeTier) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// EntryFilter narrows entry listings.
type EntryFilter struct {
	TierID *primitive.ObjectID
	MSISDN string
	Won    *bool
}

// EntryRepository persists drawing-pool entries. Create must surface
// ErrDuplicate when the (msisdn, tier) unique constraint rejects the
// insert; this is the race-proof defense behind exactly-once admission.
type EntryRepository interface {
	Create(ctx context.Context, entry *models.PrizeEntry) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeEntry, error)
	// FindUnwonByTier returns the tier's current drawing pool.
	FindUnwonByTier(ctx context.Context, tierID primitive.ObjectID) ([]*models.PrizeEntry, error)
	FindByMSISDN(ctx context.Context, msisdn string) ([]*models.PrizeEntry, error)
	ExistsForParticipant(ctx context.Context, msisdn string, tierID primitive.ObjectID) (bool, error)
	Find(ctx context.Context, filter EntryFilter, page, limit int) ([]*models.PrizeEntry, error)
	CountByTier(ctx context.Context, tierID primitive.ObjectID) (int64, error)
	// MarkWon conditionally flips won from false to true. ErrNotFound means
	// the entry is gone or was already won, and the caller must abort.
	MarkWon(ctx context.Context, id primitive.ObjectID) error
}

// WinnerFilter narrows winner listings.
type WinnerFilter struct {
	TierID  *primitive.ObjectID
	DrawID  *primitive.ObjectID
	MSISDN  string
	Claimed *bool
}

// ClaimUpdate carries the settlement fields written by a successful claim.
type ClaimUpdate struct {
	Branch    string
	Operator  string
	Notes     string
	ClaimedAt time.Time
}

// WinnerRepository persists winner records.
type WinnerRepository interface {
	Create(ctx context.Context, winner *models.PrizeWinner) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeWinner, error)
	FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.PrizeWinner, error)
	FindByClaimCode(ctx context.Context, code string) (*models.PrizeWinner, error)
	Find(ctx context.Context, filter WinnerFilter, page, limit int) ([]*models.PrizeWinner, error)
	CountByTier(ctx context.Context, tierID primitive.ObjectID) (int64, error)
	ClaimCodeExists(ctx context.Context, code string) (bool, error)
	// ClaimByCode atomically settles the winner whose claim code matches and
	// whose claimed flag is still false, returning the updated record.
	// ErrNotFound means the code is unknown or already claimed; exactly one
	// of two concurrent calls with the same code can succeed.
	ClaimByCode(ctx context.Context, code string, update ClaimUpdate) (*models.PrizeWinner, error)
}

// DrawRepository persists immutable draw records.
type DrawRepository interface {
	Create(ctx context.Context, draw *models.PrizeDraw) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeDraw, error)
	FindByTier(ctx context.Context, tierID primitive.ObjectID) ([]*models.PrizeDraw, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.PrizeDraw, error)
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	Action     models.AuditAction
	EntityType string
	EntityID   string
	Since      time.Time
}

// AuditRepository appends and reads the forensic trail.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	// Find returns entries newest first.
	Find(ctx context.Context, filter AuditFilter, limit int) ([]*models.AuditLog, error)
}

// AdminUserRepository persists operator accounts.
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Count(ctx context.Context) (int64, error)
}
