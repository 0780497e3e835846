package services

import (
	"context"

	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TierService owns prize tier definitions and the non-overlap invariant.
type TierService interface {
	Create(ctx context.Context, tier *models.PrizeTier, actor, origin string) (*models.PrizeTier, error)
	Update(ctx context.Context, id primitive.ObjectID, update *models.PrizeTierUpdate, actor, origin string) (*models.PrizeTier, error)
	Delete(ctx context.Context, id primitive.ObjectID, actor, origin string) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.PrizeTier, error)
	ListActive(ctx context.Context) ([]*models.PrizeTier, error)
	ListWithStats(ctx context.Context) ([]*models.TierSummary, error)
}

// EnterInput is a participant's admission request.
type EnterInput struct {
	MSISDN      string
	DisplayName string
	TierID      primitive.ObjectID
	Score       int
	Origin      string
}

// EntryService admits participants into drawing pools, at most once per
// (participant, tier).
type EntryService interface {
	Enter(ctx context.Context, input EnterInput) (*models.EntryReceipt, error)
	CheckEligibility(ctx context.Context, msisdn string, score int) ([]*models.TierEligibility, error)
	List(ctx context.Context, filter repositories.EntryFilter, page, limit int) ([]*models.PrizeEntry, error)
	MyEntries(ctx context.Context, msisdn string) ([]*models.PrizeEntry, error)
}

// DrawService executes atomic drawings over a tier's un-won pool.
type DrawService interface {
	ConductDraw(ctx context.Context, tierID primitive.ObjectID, operator, origin string) (*models.DrawResult, error)
	GetDraw(ctx context.Context, id primitive.ObjectID) (*models.PrizeDraw, error)
	ListDraws(ctx context.Context, page, limit int) ([]*models.PrizeDraw, error)
	DrawsByTier(ctx context.Context, tierID primitive.ObjectID) ([]*models.PrizeDraw, error)
	WinnersByDraw(ctx context.Context, drawID primitive.ObjectID) ([]*models.PrizeWinner, error)
}

// ClaimInput is a branch operator's settlement request.
type ClaimInput struct {
	Code     string
	Branch   string
	Operator string
	Notes    string
	Origin   string
}

// ClaimService settles winners through single-use claim codes.
type ClaimService interface {
	Claim(ctx context.Context, input ClaimInput) (*models.PrizeWinner, error)
	FindByCode(ctx context.Context, code string) (*models.PrizeWinner, error)
	ListWinners(ctx context.Context, filter repositories.WinnerFilter, page, limit int) ([]*models.PrizeWinner, error)
}

// AuditService appends and reads the forensic trail. Record is isolated
// from the caller's operation; RecordTx participates in an open
// transaction and may abort it.
type AuditService interface {
	Record(ctx context.Context, entry *models.AuditLog)
	RecordTx(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter repositories.AuditFilter, limit int) ([]*models.AuditLog, error)
}

// AuthService authenticates operators.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Bootstrap(ctx context.Context, email, password string) error
}
