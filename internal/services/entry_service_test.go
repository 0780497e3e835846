package services

import (
	"context"
	"testing"

	"github.com/scoreplay/promo-backend/internal/apperrors"
	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestComputeTickets(t *testing.T) {
	cases := []struct {
		score, tickets int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{499, 3},
		{500, 5},
		{999, 5},
		{1000, 8},
		{2499, 8},
		{2500, 10},
		{1000000, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.tickets, ComputeTickets(tc.score), "score %d", tc.score)
	}

	// Monotonically non-decreasing.
	prev := ComputeTickets(0)
	for score := 1; score <= 3000; score++ {
		cur := ComputeTickets(score)
		require.GreaterOrEqual(t, cur, prev, "tickets decreased at score %d", score)
		prev = cur
	}
}

func TestEnter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tier, err := env.tiers.Create(ctx, validTier("Silver", 100, 199), "admin@test", "test")
	require.NoError(t, err)

	receipt, err := env.entry.Enter(ctx, EnterInput{
		MSISDN:      "2348031234567",
		DisplayName: "Ada",
		TierID:      tier.ID,
		Score:       150,
	})
	require.NoError(t, err)
	assert.Equal(t, "Silver", receipt.TierName)
	assert.Equal(t, 2, receipt.Entry.Tickets)
	assert.Len(t, receipt.Entry.TicketNumbers, 2)
	assert.False(t, receipt.Entry.Won)
}

func TestEnterValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tier, err := env.tiers.Create(ctx, validTier("Silver", 100, 199), "admin@test", "test")
	require.NoError(t, err)

	_, err = env.entry.Enter(ctx, EnterInput{TierID: tier.ID, Score: 150})
	assert.True(t, apperrors.IsValidation(err), "missing msisdn: %v", err)

	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "234803", Score: 150})
	assert.True(t, apperrors.IsValidation(err), "missing tier: %v", err)

	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "234803", TierID: primitive.NewObjectID(), Score: 150})
	assert.True(t, apperrors.IsNotFound(err), "unknown tier: %v", err)
}

func TestEnterScoreOutsideRange(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tier, err := env.tiers.Create(ctx, validTier("Silver", 100, 199), "admin@test", "test")
	require.NoError(t, err)

	for _, score := range []int{99, 200, 0} {
		_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031234567", TierID: tier.ID, Score: score})
		assert.True(t, apperrors.IsValidation(err), "score %d: %v", score, err)
	}

	// Boundaries are inclusive.
	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031111111", TierID: tier.ID, Score: 100})
	assert.NoError(t, err)
	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348032222222", TierID: tier.ID, Score: 199})
	assert.NoError(t, err)
}

func TestEnterInactiveTier(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	dormant := validTier("Dormant", 100, 199)
	dormant.Active = false
	tier, err := env.tiers.Create(ctx, dormant, "admin@test", "test")
	require.NoError(t, err)

	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031234567", TierID: tier.ID, Score: 150})
	assert.True(t, apperrors.IsConflict(err))
}

func TestEnterOncePerTier(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tier, err := env.tiers.Create(ctx, validTier("Silver", 100, 199), "admin@test", "test")
	require.NoError(t, err)

	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031234567", TierID: tier.ID, Score: 150})
	require.NoError(t, err)

	// Second attempt, even with a different score, is rejected.
	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031234567", TierID: tier.ID, Score: 180})
	require.True(t, apperrors.IsConflict(err))

	entries, err := env.entry.MyEntries(ctx, "2348031234567")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEnterDifferentTiersAllowed(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	silver, err := env.tiers.Create(ctx, validTier("Silver", 100, 199), "admin@test", "test")
	require.NoError(t, err)
	gold, err := env.tiers.Create(ctx, validTier("Gold", 200, 299), "admin@test", "test")
	require.NoError(t, err)

	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031234567", TierID: silver.ID, Score: 150})
	require.NoError(t, err)
	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031234567", TierID: gold.ID, Score: 250})
	require.NoError(t, err)

	entries, err := env.entry.MyEntries(ctx, "2348031234567")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEnterDuplicateRaceMapsToConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tier, err := env.tiers.Create(ctx, validTier("Silver", 100, 199), "admin@test", "test")
	require.NoError(t, err)

	// Simulate the race where the pre-check passes but the unique
	// constraint rejects the insert.
	err = memEntryRepo{env.store}.Create(ctx, &models.PrizeEntry{MSISDN: "2348031234567", TierID: tier.ID, Score: 150, Tickets: 2})
	require.NoError(t, err)
	err = memEntryRepo{env.store}.Create(ctx, &models.PrizeEntry{MSISDN: "2348031234567", TierID: tier.ID, Score: 150, Tickets: 2})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestCheckEligibility(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	silver, err := env.tiers.Create(ctx, validTier("Silver", 100, 199), "admin@test", "test")
	require.NoError(t, err)
	_, err = env.tiers.Create(ctx, validTier("Gold", 200, 299), "admin@test", "test")
	require.NoError(t, err)

	// Score 150 qualifies for Silver only.
	tiers, err := env.entry.CheckEligibility(ctx, "2348031234567", 150)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, "Silver", tiers[0].Tier.Name)
	assert.False(t, tiers[0].AlreadyEntered)

	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031234567", TierID: silver.ID, Score: 150})
	require.NoError(t, err)

	tiers, err = env.entry.CheckEligibility(ctx, "2348031234567", 150)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.True(t, tiers[0].AlreadyEntered)

	// Score below every tier qualifies for nothing.
	tiers, err = env.entry.CheckEligibility(ctx, "2348031234567", 50)
	require.NoError(t, err)
	assert.Empty(t, tiers)
}

func TestEntryListFilters(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	silver, err := env.tiers.Create(ctx, validTier("Silver", 100, 199), "admin@test", "test")
	require.NoError(t, err)
	gold, err := env.tiers.Create(ctx, validTier("Gold", 200, 299), "admin@test", "test")
	require.NoError(t, err)

	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031111111", TierID: silver.ID, Score: 150})
	require.NoError(t, err)
	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348032222222", TierID: silver.ID, Score: 160})
	require.NoError(t, err)
	_, err = env.entry.Enter(ctx, EnterInput{MSISDN: "2348031111111", TierID: gold.ID, Score: 250})
	require.NoError(t, err)

	byTier, err := env.entry.List(ctx, repositories.EntryFilter{TierID: &silver.ID}, 1, 50)
	require.NoError(t, err)
	assert.Len(t, byTier, 2)

	byMSISDN, err := env.entry.List(ctx, repositories.EntryFilter{MSISDN: "2348031111111"}, 1, 50)
	require.NoError(t, err)
	assert.Len(t, byMSISDN, 2)
}
