package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scoreplay/promo-backend/internal/apperrors"
	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure ClaimServiceImpl implements ClaimService
var _ ClaimService = (*ClaimServiceImpl)(nil)

// ClaimServiceImpl settles prizes against single-use claim codes.
type ClaimServiceImpl struct {
	winnerRepo repositories.WinnerRepository
	audit      AuditService
}

// NewClaimService creates a new ClaimServiceImpl
func NewClaimService(winnerRepo repositories.WinnerRepository, audit AuditService) *ClaimServiceImpl {
	return &ClaimServiceImpl{
		winnerRepo: winnerRepo,
		audit:      audit,
	}
}

// Claim settles the winner holding the given code. Redemption is a single
// conditional update matching only an unclaimed code, so when two branch
// operators race on the same code exactly one succeeds; the loser gets the
// same conflict as a replayed or made-up code. The response does not
// reveal which of the two it was.
func (s *ClaimServiceImpl) Claim(ctx context.Context, input ClaimInput) (*models.PrizeWinner, error) {
	code := normalizeClaimCode(input.Code)
	if code == "" {
		return nil, apperrors.Validationf("claim code is required")
	}
	if input.Branch == "" {
		return nil, apperrors.Validationf("branch is required")
	}

	winner, err := s.winnerRepo.ClaimByCode(ctx, code, repositories.ClaimUpdate{
		Branch:    input.Branch,
		Operator:  input.Operator,
		Notes:     input.Notes,
		ClaimedAt: time.Now(),
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Conflictf("claim code is invalid or has already been used")
		}
		slog.Error("failed to settle claim", "error", err, "branch", input.Branch)
		return nil, apperrors.Internal("failed to settle claim", err)
	}

	s.audit.Record(ctx, &models.AuditLog{
		Action:     models.AuditPrizeClaimed,
		EntityType: "winner",
		EntityID:   winner.ID.Hex(),
		Actor:      input.Operator,
		After: map[string]interface{}{
			"drawId":    winner.DrawID.Hex(),
			"tierId":    winner.TierID.Hex(),
			"prizeName": winner.PrizeName,
			"branch":    input.Branch,
		},
		Origin: input.Origin,
	})
	slog.Info("prize claimed", "winnerId", winner.ID.Hex(), "msisdn", maskMSISDN(winner.MSISDN),
		"prize", winner.PrizeName, "branch", input.Branch, "operator", input.Operator)

	return winner, nil
}

// FindByCode looks up a winner by claim code without settling it. Branch
// staff use this to preview a prize before handing it over.
func (s *ClaimServiceImpl) FindByCode(ctx context.Context, code string) (*models.PrizeWinner, error) {
	code = normalizeClaimCode(code)
	if code == "" {
		return nil, apperrors.Validationf("claim code is required")
	}
	winner, err := s.winnerRepo.FindByClaimCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFoundf("no winner holds claim code %s", code)
		}
		return nil, apperrors.Internal("failed to look up claim code", err)
	}
	return winner, nil
}

// ListWinners returns winners matching the filter, newest first.
func (s *ClaimServiceImpl) ListWinners(ctx context.Context, filter repositories.WinnerFilter, page, limit int) ([]*models.PrizeWinner, error) {
	page, limit = normalizePage(page, limit)
	winners, err := s.winnerRepo.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list winners", err)
	}
	return winners, nil
}

// normalizeClaimCode canonicalizes a code read over the phone or typed by
// hand: uppercase, no whitespace, dashes re-inserted every four characters
// to match the stored form.
func normalizeClaimCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, " ", "")
	code = strings.ReplaceAll(code, "-", "")
	if code == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range code {
		if i > 0 && i%4 == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}
