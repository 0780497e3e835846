package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/scoreplay/promo-backend/internal/apperrors"
	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure TierServiceImpl implements TierService
var _ TierService = (*TierServiceImpl)(nil)

// TierServiceImpl handles prize tier management. The invariant it guards:
// active tiers' inclusive score ranges are pairwise disjoint.
type TierServiceImpl struct {
	tierRepo   repositories.TierRepository
	entryRepo  repositories.EntryRepository
	winnerRepo repositories.WinnerRepository
	audit      AuditService
	txn        repositories.TxnRunner
}

// NewTierService creates a new TierServiceImpl
func NewTierService(
	tierRepo repositories.TierRepository,
	entryRepo repositories.EntryRepository,
	winnerRepo repositories.WinnerRepository,
	audit AuditService,
	txn repositories.TxnRunner,
) *TierServiceImpl {
	return &TierServiceImpl{
		tierRepo:   tierRepo,
		entryRepo:  entryRepo,
		winnerRepo: winnerRepo,
		audit:      audit,
		txn:        txn,
	}
}

// Create validates and persists a new tier. A snapshot-isolated
// transaction alone does not stop two concurrent creations from both
// passing the overlap check and inserting distinct documents, so active
// creations first write the range-lock document; concurrent transactions
// conflict on it and serialize.
func (s *TierServiceImpl) Create(ctx context.Context, tier *models.PrizeTier, actor, origin string) (*models.PrizeTier, error) {
	if err := validateTier(tier); err != nil {
		return nil, err
	}
	if tier.ScheduleType == "" {
		tier.ScheduleType = models.ScheduleManual
	}

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if tier.Active {
			if err := s.tierRepo.LockRanges(ctx); err != nil {
				return err
			}
			if err := s.checkOverlap(ctx, tier, primitive.NilObjectID); err != nil {
				return err
			}
		}
		return s.tierRepo.Create(ctx, tier)
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindInternal {
			return nil, err
		}
		slog.Error("failed to create tier", "error", err, "name", tier.Name)
		return nil, apperrors.Internal("failed to create tier", err)
	}

	s.audit.Record(ctx, &models.AuditLog{
		Action:     models.AuditTierCreated,
		EntityType: "tier",
		EntityID:   tier.ID.Hex(),
		Actor:      actor,
		After:      tier,
		Origin:     origin,
	})
	slog.Info("tier created", "tierId", tier.ID.Hex(), "name", tier.Name, "range", fmt.Sprintf("[%d,%d]", tier.MinScore, tier.MaxScore))
	return tier, nil
}

// Update applies the allow-listed fields of update to the tier. The
// overlap invariant is re-checked whenever the score range or the active
// flag changes; an update may not smuggle in a collision the create path
// would have rejected.
func (s *TierServiceImpl) Update(ctx context.Context, id primitive.ObjectID, update *models.PrizeTierUpdate, actor, origin string) (*models.PrizeTier, error) {
	var updated *models.PrizeTier
	var before models.PrizeTier

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		tier, err := s.tierRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.NotFoundf("tier %s not found", id.Hex())
			}
			return err
		}
		before = *tier

		applyTierUpdate(tier, update)
		if err := validateTier(tier); err != nil {
			return err
		}
		if update.TouchesRange() && tier.Active {
			if err := s.tierRepo.LockRanges(ctx); err != nil {
				return err
			}
			if err := s.checkOverlap(ctx, tier, tier.ID); err != nil {
				return err
			}
		}
		if err := s.tierRepo.Update(ctx, tier); err != nil {
			return err
		}
		updated = tier
		return nil
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindInternal {
			return nil, err
		}
		slog.Error("failed to update tier", "error", err, "tierId", id.Hex())
		return nil, apperrors.Internal("failed to update tier", err)
	}

	s.audit.Record(ctx, &models.AuditLog{
		Action:     models.AuditTierUpdated,
		EntityType: "tier",
		EntityID:   id.Hex(),
		Actor:      actor,
		Before:     before,
		After:      updated,
		Origin:     origin,
	})
	return updated, nil
}

// Delete removes a tier that owns no entries. A tier with history must be
// deactivated instead; the conflict message reports the blocking count.
func (s *TierServiceImpl) Delete(ctx context.Context, id primitive.ObjectID, actor, origin string) error {
	var before *models.PrizeTier

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		tier, err := s.tierRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.NotFoundf("tier %s not found", id.Hex())
			}
			return err
		}
		before = tier

		count, err := s.entryRepo.CountByTier(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflictf("tier %q owns %d entries and cannot be deleted; deactivate it instead", tier.Name, count)
		}
		return s.tierRepo.Delete(ctx, id)
	})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindInternal {
			return err
		}
		slog.Error("failed to delete tier", "error", err, "tierId", id.Hex())
		return apperrors.Internal("failed to delete tier", err)
	}

	s.audit.Record(ctx, &models.AuditLog{
		Action:     models.AuditTierDeleted,
		EntityType: "tier",
		EntityID:   id.Hex(),
		Actor:      actor,
		Before:     before,
		Origin:     origin,
	})
	slog.Info("tier deleted", "tierId", id.Hex(), "name", before.Name)
	return nil
}

// Get retrieves a tier by ID.
func (s *TierServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*models.PrizeTier, error) {
	tier, err := s.tierRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundf("tier %s not found", id.Hex())
		}
		return nil, apperrors.Internal("failed to load tier", err)
	}
	return tier, nil
}

// ListActive returns active tiers ordered by display order then min score.
func (s *TierServiceImpl) ListActive(ctx context.Context) ([]*models.PrizeTier, error) {
	tiers, err := s.tierRepo.FindActive(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list tiers", err)
	}
	return tiers, nil
}

// ListWithStats returns every tier with its aggregate entry and winner
// counts for operator views.
func (s *TierServiceImpl) ListWithStats(ctx context.Context) ([]*models.TierSummary, error) {
	tiers, err := s.tierRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list tiers", err)
	}

	summaries := make([]*models.TierSummary, 0, len(tiers))
	for _, tier := range tiers {
		entryCount, err := s.entryRepo.CountByTier(ctx, tier.ID)
		if err != nil {
			return nil, apperrors.Internal("failed to count entries", err)
		}
		winnerCount, err := s.winnerRepo.CountByTier(ctx, tier.ID)
		if err != nil {
			return nil, apperrors.Internal("failed to count winners", err)
		}
		summaries = append(summaries, &models.TierSummary{
			PrizeTier:   *tier,
			EntryCount:  entryCount,
			WinnerCount: winnerCount,
		})
	}
	return summaries, nil
}

// checkOverlap rejects the candidate if its inclusive range intersects any
// other active tier's range. Two ranges overlap when
// a.min <= b.max && b.min <= a.max.
func (s *TierServiceImpl) checkOverlap(ctx context.Context, candidate *models.PrizeTier, exclude primitive.ObjectID) error {
	active, err := s.tierRepo.FindActive(ctx)
	if err != nil {
		return err
	}
	for _, other := range active {
		if other.ID == exclude {
			continue
		}
		if candidate.Overlaps(other) {
			return apperrors.Conflictf("score range [%d,%d] overlaps active tier %q [%d,%d]",
				candidate.MinScore, candidate.MaxScore, other.Name, other.MinScore, other.MaxScore)
		}
	}
	return nil
}

func validateTier(tier *models.PrizeTier) error {
	if tier.Name == "" {
		return apperrors.Validationf("tier name is required")
	}
	if tier.PrizeName == "" {
		return apperrors.Validationf("prize name is required")
	}
	if tier.MinScore >= tier.MaxScore {
		return apperrors.Validationf("min score (%d) must be less than max score (%d)", tier.MinScore, tier.MaxScore)
	}
	if tier.WinnersCount <= 0 {
		return apperrors.Validationf("winners count must be positive")
	}
	return nil
}

func applyTierUpdate(tier *models.PrizeTier, update *models.PrizeTierUpdate) {
	if update.Name != nil {
		tier.Name = *update.Name
	}
	if update.NameLocalized != nil {
		tier.NameLocalized = *update.NameLocalized
	}
	if update.MinScore != nil {
		tier.MinScore = *update.MinScore
	}
	if update.MaxScore != nil {
		tier.MaxScore = *update.MaxScore
	}
	if update.PrizeName != nil {
		tier.PrizeName = *update.PrizeName
	}
	if update.PrizeDescription != nil {
		tier.PrizeDescription = *update.PrizeDescription
	}
	if update.PrizeImageURL != nil {
		tier.PrizeImageURL = *update.PrizeImageURL
	}
	if update.WinnersCount != nil {
		tier.WinnersCount = *update.WinnersCount
	}
	if update.ScheduleType != nil {
		tier.ScheduleType = *update.ScheduleType
	}
	if update.DrawAt != nil {
		tier.DrawAt = *update.DrawAt
	}
	if update.DisplayOrder != nil {
		tier.DisplayOrder = *update.DisplayOrder
	}
	if update.Active != nil {
		tier.Active = *update.Active
	}
}
