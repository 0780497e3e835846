package services

import (
	"context"
	"errors"
	"math/rand"

	"github.com/scoreplay/promo-backend/internal/apperrors"
	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"github.com/scoreplay/promo-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure DrawServiceImpl implements DrawService
var _ DrawService = (*DrawServiceImpl)(nil)

// claimCodeAttempts bounds the generate-check-retry loop for claim codes.
const claimCodeAttempts = 5

// DrawServiceImpl executes drawings. Everything a draw writes (winner
// records, won flags, the draw record and its audit entry) happens inside
// one storage transaction; any failure rolls all of it back.
type DrawServiceImpl struct {
	tierRepo   repositories.TierRepository
	entryRepo  repositories.EntryRepository
	winnerRepo repositories.WinnerRepository
	drawRepo   repositories.DrawRepository
	audit      AuditService
	txn        repositories.TxnRunner
}

// NewDrawService creates a new DrawServiceImpl
func NewDrawService(
	tierRepo repositories.TierRepository,
	entryRepo repositories.EntryRepository,
	winnerRepo repositories.WinnerRepository,
	drawRepo repositories.DrawRepository,
	audit AuditService,
	txn repositories.TxnRunner,
) *DrawServiceImpl {
	return &DrawServiceImpl{
		tierRepo:   tierRepo,
		entryRepo:  entryRepo,
		winnerRepo: winnerRepo,
		drawRepo:   drawRepo,
		audit:      audit,
		txn:        txn,
	}
}

// ConductDraw selects min(tier.WinnersCount, pool size) distinct winners
// from the tier's un-won entries. Selection is ticket-weighted without
// replacement: an entry's odds are proportional to its ticket count, and
// once selected all of its tickets leave the pool, so no entry wins twice
// in one draw. The recorded seed feeds the selection RNG and is forensic
// metadata, not a replay guarantee.
//
// A tier may be drawn repeatedly over its lifetime; each draw operates on
// whatever is un-won at that moment.
func (s *DrawServiceImpl) ConductDraw(ctx context.Context, tierID primitive.ObjectID, operator, origin string) (*models.DrawResult, error) {
	seed, err := utils.RandomSeed()
	if err != nil {
		return nil, apperrors.Internal("failed to seed draw", err)
	}

	var result *models.DrawResult
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		tier, err := s.tierRepo.FindByID(ctx, tierID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.NotFoundf("tier %s not found", tierID.Hex())
			}
			return err
		}

		entries, err := s.entryRepo.FindUnwonByTier(ctx, tierID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return apperrors.Validationf("tier %q has no eligible entries to draw from", tier.Name)
		}

		k := tier.WinnersCount
		if k > len(entries) {
			k = len(entries)
		}

		rng := rand.New(rand.NewSource(seed))
		pool := buildWeightedPool(entries)

		draw := &models.PrizeDraw{
			ID:           primitive.NewObjectID(),
			TierID:       tierID,
			TotalEntries: len(entries),
			Algorithm:    models.AlgorithmWeightedTicket,
			Seed:         seed,
			Operator:     operator,
		}

		winners := make([]*models.PrizeWinner, 0, k)
		for seq := 1; seq <= k; seq++ {
			entry, remaining := drawWeighted(rng, pool)
			pool = remaining

			code, err := s.allocateClaimCode(ctx)
			if err != nil {
				return err
			}

			winner := &models.PrizeWinner{
				EntryID:          entry.ID,
				TierID:           tierID,
				DrawID:           draw.ID,
				MSISDN:           entry.MSISDN,
				DisplayName:      entry.DisplayName,
				PrizeName:        tier.PrizeName,
				PrizeDescription: tier.PrizeDescription,
				DrawSequence:     seq,
				ClaimCode:        code,
				Claimed:          false,
			}
			if err := s.winnerRepo.Create(ctx, winner); err != nil {
				return err
			}
			if err := s.entryRepo.MarkWon(ctx, entry.ID); err != nil {
				// Entry vanished or was won by a concurrent draw; the whole
				// transaction aborts rather than commit a partial winner set.
				return err
			}

			winners = append(winners, winner)
			draw.WinnerIDs = append(draw.WinnerIDs, winner.ID)
		}

		draw.WinnersSelected = len(winners)
		if err := s.drawRepo.Create(ctx, draw); err != nil {
			return err
		}

		if err := s.audit.RecordTx(ctx, &models.AuditLog{
			Action:     models.AuditDrawRun,
			EntityType: "draw",
			EntityID:   draw.ID.Hex(),
			Actor:      operator,
			After: map[string]interface{}{
				"tierId":          tierID.Hex(),
				"totalEntries":    draw.TotalEntries,
				"winnersSelected": draw.WinnersSelected,
				"winnerIds":       hexIDs(draw.WinnerIDs),
			},
			Origin: origin,
		}); err != nil {
			return err
		}

		result = &models.DrawResult{Draw: draw, Winners: winners}
		return nil
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindInternal {
			return nil, err
		}
		slog.Error("draw failed, transaction rolled back", "error", err, "tierId", tierID.Hex(), "operator", operator)
		return nil, apperrors.Internal("draw failed", err)
	}

	slog.Info("draw completed", "drawId", result.Draw.ID.Hex(), "tierId", tierID.Hex(),
		"totalEntries", result.Draw.TotalEntries, "winners", result.Draw.WinnersSelected, "operator", operator)
	return result, nil
}

// GetDraw retrieves a draw record.
func (s *DrawServiceImpl) GetDraw(ctx context.Context, id primitive.ObjectID) (*models.PrizeDraw, error) {
	draw, err := s.drawRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundf("draw %s not found", id.Hex())
		}
		return nil, apperrors.Internal("failed to load draw", err)
	}
	return draw, nil
}

// ListDraws returns draw records, newest first.
func (s *DrawServiceImpl) ListDraws(ctx context.Context, page, limit int) ([]*models.PrizeDraw, error) {
	page, limit = normalizePage(page, limit)
	draws, err := s.drawRepo.FindAll(ctx, page, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list draws", err)
	}
	return draws, nil
}

// DrawsByTier returns a tier's draw history, newest first.
func (s *DrawServiceImpl) DrawsByTier(ctx context.Context, tierID primitive.ObjectID) ([]*models.PrizeDraw, error) {
	draws, err := s.drawRepo.FindByTier(ctx, tierID)
	if err != nil {
		return nil, apperrors.Internal("failed to list draws", err)
	}
	return draws, nil
}

// WinnersByDraw returns the winners one draw produced, in draw order.
func (s *DrawServiceImpl) WinnersByDraw(ctx context.Context, drawID primitive.ObjectID) ([]*models.PrizeWinner, error) {
	winners, err := s.winnerRepo.FindByDrawID(ctx, drawID)
	if err != nil {
		return nil, apperrors.Internal("failed to list winners", err)
	}
	return winners, nil
}

// allocateClaimCode generates a claim code and retries on collision with
// any existing code. The winners collection's unique index remains the
// final authority should two concurrent draws allocate the same code.
func (s *DrawServiceImpl) allocateClaimCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < claimCodeAttempts; attempt++ {
		code, err := utils.GenerateClaimCode()
		if err != nil {
			return "", err
		}
		exists, err := s.winnerRepo.ClaimCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
		slog.Warn("claim code collision, regenerating", "attempt", attempt+1)
	}
	return "", errors.New("failed to allocate a unique claim code")
}

// buildWeightedPool expands entries so each appears once per ticket.
// Entries with a non-positive ticket count still get one slot.
func buildWeightedPool(entries []*models.PrizeEntry) []*models.PrizeEntry {
	var pool []*models.PrizeEntry
	for _, entry := range entries {
		weight := entry.Tickets
		if weight <= 0 {
			weight = 1
		}
		for i := 0; i < weight; i++ {
			pool = append(pool, entry)
		}
	}
	return pool
}

// drawWeighted picks one entry from the weighted pool and returns the pool
// with every slot of that entry removed, so an entry can be selected at
// most once per draw.
func drawWeighted(rng *rand.Rand, pool []*models.PrizeEntry) (*models.PrizeEntry, []*models.PrizeEntry) {
	chosen := pool[rng.Intn(len(pool))]

	remaining := make([]*models.PrizeEntry, 0, len(pool))
	for _, entry := range pool {
		if entry.ID != chosen.ID {
			remaining = append(remaining, entry)
		}
	}
	return chosen, remaining
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
