package services

import (
	"context"
	"errors"
	"math/rand"

	"github.com/scoreplay/promo-backend/internal/apperrors"
	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure EntryServiceImpl implements EntryService
var _ EntryService = (*EntryServiceImpl)(nil)

// Ticket numbers are uniform draws from this range. Duplicates across
// tickets are tolerated; they only affect relative weight, not
// correctness.
const (
	ticketNumberMin = 100000
	ticketNumberMax = 999999
)

// ComputeTickets maps a score to a ticket count. The mapping is the
// engine's documented weighting contract: monotonically non-decreasing,
// deterministic, and stable across releases.
//
//	score        tickets
//	[0, 99]      1
//	[100, 249]   2
//	[250, 499]   3
//	[500, 999]   5
//	[1000, 2499] 8
//	[2500, ∞)    10
func ComputeTickets(score int) int {
	switch {
	case score >= 2500:
		return 10
	case score >= 1000:
		return 8
	case score >= 500:
		return 5
	case score >= 250:
		return 3
	case score >= 100:
		return 2
	default:
		return 1
	}
}

// EntryServiceImpl admits score-qualified participants into tier drawing
// pools.
type EntryServiceImpl struct {
	entryRepo repositories.EntryRepository
	tierRepo  repositories.TierRepository
	audit     AuditService
}

// NewEntryService creates a new EntryServiceImpl
func NewEntryService(
	entryRepo repositories.EntryRepository,
	tierRepo repositories.TierRepository,
	audit AuditService,
) *EntryServiceImpl {
	return &EntryServiceImpl{
		entryRepo: entryRepo,
		tierRepo:  tierRepo,
		audit:     audit,
	}
}

// Enter admits a participant into a tier's drawing pool. The (msisdn,
// tier) pre-check is a courtesy for a friendly message; the storage-level
// unique constraint is what actually closes the race between two
// concurrent admissions, so an ErrDuplicate from Create is mapped to the
// same conflict.
func (s *EntryServiceImpl) Enter(ctx context.Context, input EnterInput) (*models.EntryReceipt, error) {
	if input.MSISDN == "" {
		return nil, apperrors.Validationf("msisdn is required")
	}
	if input.TierID.IsZero() {
		return nil, apperrors.Validationf("tier id is required")
	}

	tier, err := s.tierRepo.FindByID(ctx, input.TierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundf("tier %s not found", input.TierID.Hex())
		}
		return nil, apperrors.Internal("failed to load tier", err)
	}
	if !tier.Active {
		return nil, apperrors.Conflictf("tier %q is not accepting entries", tier.Name)
	}
	if !tier.ContainsScore(input.Score) {
		return nil, apperrors.Validationf("score %d is outside the valid range [%d, %d] for tier %q",
			input.Score, tier.MinScore, tier.MaxScore, tier.Name)
	}

	exists, err := s.entryRepo.ExistsForParticipant(ctx, input.MSISDN, input.TierID)
	if err != nil {
		return nil, apperrors.Internal("failed to check existing entry", err)
	}
	if exists {
		return nil, apperrors.Conflictf("participant already entered tier %q", tier.Name)
	}

	tickets := ComputeTickets(input.Score)
	entry := &models.PrizeEntry{
		MSISDN:        input.MSISDN,
		DisplayName:   input.DisplayName,
		TierID:        input.TierID,
		Score:         input.Score,
		Tickets:       tickets,
		TicketNumbers: generateTicketNumbers(tickets),
		Won:           false,
		Origin:        input.Origin,
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflictf("participant already entered tier %q", tier.Name)
		}
		slog.Error("failed to create entry", "error", err, "msisdn", maskMSISDN(input.MSISDN), "tierId", input.TierID.Hex())
		return nil, apperrors.Internal("failed to create entry", err)
	}

	s.audit.Record(ctx, &models.AuditLog{
		Action:     models.AuditEntryAdded,
		EntityType: "entry",
		EntityID:   entry.ID.Hex(),
		Actor:      input.MSISDN,
		After:      entry,
		Origin:     input.Origin,
	})
	slog.Info("entry admitted", "entryId", entry.ID.Hex(), "msisdn", maskMSISDN(input.MSISDN),
		"tier", tier.Name, "score", input.Score, "tickets", tickets)

	return &models.EntryReceipt{Entry: entry, TierName: tier.Name}, nil
}

// CheckEligibility returns every active tier whose range contains score,
// annotated with whether the participant already entered it. Read-only.
func (s *EntryServiceImpl) CheckEligibility(ctx context.Context, msisdn string, score int) ([]*models.TierEligibility, error) {
	if msisdn == "" {
		return nil, apperrors.Validationf("msisdn is required")
	}

	tiers, err := s.tierRepo.FindActive(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list tiers", err)
	}

	eligibilities := make([]*models.TierEligibility, 0)
	for _, tier := range tiers {
		if !tier.ContainsScore(score) {
			continue
		}
		entered, err := s.entryRepo.ExistsForParticipant(ctx, msisdn, tier.ID)
		if err != nil {
			return nil, apperrors.Internal("failed to check existing entry", err)
		}
		eligibilities = append(eligibilities, &models.TierEligibility{
			Tier:           tier,
			AlreadyEntered: entered,
		})
	}
	return eligibilities, nil
}

// List returns entries matching the filter, newest first.
func (s *EntryServiceImpl) List(ctx context.Context, filter repositories.EntryFilter, page, limit int) ([]*models.PrizeEntry, error) {
	page, limit = normalizePage(page, limit)
	entries, err := s.entryRepo.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list entries", err)
	}
	return entries, nil
}

// MyEntries returns a participant's entries, newest first.
func (s *EntryServiceImpl) MyEntries(ctx context.Context, msisdn string) ([]*models.PrizeEntry, error) {
	if msisdn == "" {
		return nil, apperrors.Validationf("msisdn is required")
	}
	entries, err := s.entryRepo.FindByMSISDN(ctx, msisdn)
	if err != nil {
		return nil, apperrors.Internal("failed to list entries", err)
	}
	return entries, nil
}

func generateTicketNumbers(count int) []int {
	numbers := make([]int, count)
	for i := range numbers {
		numbers[i] = ticketNumberMin + rand.Intn(ticketNumberMax-ticketNumberMin+1)
	}
	return numbers
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return page, limit
}

// maskMSISDN masks a participant identifier for logging (first 3 and last
// 3 digits visible).
func maskMSISDN(msisdn string) string {
	if len(msisdn) > 6 {
		return msisdn[:3] + "******" + msisdn[len(msisdn)-3:]
	}
	return "******"
}
