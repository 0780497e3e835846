package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory stand-in for the MongoDB repositories. It
// enforces the same unique constraints and conditional updates, and its
// WithTransaction restores a snapshot on error so rollback behavior can be
// exercised without a running replica set.
type memStore struct {
	mu      sync.Mutex
	txnMu   sync.Mutex
	tiers   map[primitive.ObjectID]models.PrizeTier
	entries map[primitive.ObjectID]models.PrizeEntry
	winners map[primitive.ObjectID]models.PrizeWinner
	draws   map[primitive.ObjectID]models.PrizeDraw
	audits  []models.AuditLog
	admins  map[primitive.ObjectID]models.AdminUser

	// rangeLocks counts LockRanges acquisitions so tests can assert
	// overlap-sensitive mutations went through the lock.
	rangeLocks int

	// failures injects an error for the named operation, keyed like
	// "entries.MarkWon". Used to force mid-transaction aborts.
	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		tiers:    make(map[primitive.ObjectID]models.PrizeTier),
		entries:  make(map[primitive.ObjectID]models.PrizeEntry),
		winners:  make(map[primitive.ObjectID]models.PrizeWinner),
		draws:    make(map[primitive.ObjectID]models.PrizeDraw),
		admins:   make(map[primitive.ObjectID]models.AdminUser),
		failures: make(map[string]error),
	}
}

func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *memStore) failure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[op]
}

func (s *memStore) rangeLockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rangeLocks
}

type storeSnapshot struct {
	tiers   map[primitive.ObjectID]models.PrizeTier
	entries map[primitive.ObjectID]models.PrizeEntry
	winners map[primitive.ObjectID]models.PrizeWinner
	draws   map[primitive.ObjectID]models.PrizeDraw
	audits  []models.AuditLog
	admins  map[primitive.ObjectID]models.AdminUser
}

func (s *memStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		tiers:   make(map[primitive.ObjectID]models.PrizeTier, len(s.tiers)),
		entries: make(map[primitive.ObjectID]models.PrizeEntry, len(s.entries)),
		winners: make(map[primitive.ObjectID]models.PrizeWinner, len(s.winners)),
		draws:   make(map[primitive.ObjectID]models.PrizeDraw, len(s.draws)),
		audits:  append([]models.AuditLog(nil), s.audits...),
		admins:  make(map[primitive.ObjectID]models.AdminUser, len(s.admins)),
	}
	for k, v := range s.tiers {
		snap.tiers[k] = v
	}
	for k, v := range s.entries {
		snap.entries[k] = v
	}
	for k, v := range s.winners {
		snap.winners[k] = v
	}
	for k, v := range s.draws {
		snap.draws[k] = v
	}
	for k, v := range s.admins {
		snap.admins[k] = v
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers = snap.tiers
	s.entries = snap.entries
	s.winners = snap.winners
	s.draws = snap.draws
	s.audits = snap.audits
	s.admins = snap.admins
}

// WithTransaction implements repositories.TxnRunner. An error from fn
// rolls the store back to its pre-transaction state. Transactions run one
// at a time, matching how conflicting storage transactions abort and
// retry until they observe each other's committed writes.
func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txnMu.Lock()
	defer s.txnMu.Unlock()
	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// tierRepo

type memTierRepo struct{ s *memStore }

func (r memTierRepo) LockRanges(ctx context.Context) error {
	if err := r.s.failure("tiers.LockRanges"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rangeLocks++
	return nil
}

func (r memTierRepo) Create(ctx context.Context, tier *models.PrizeTier) error {
	if err := r.s.failure("tiers.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if tier.ID.IsZero() {
		tier.ID = primitive.NewObjectID()
	}
	tier.CreatedAt = time.Now()
	tier.UpdatedAt = tier.CreatedAt
	r.s.tiers[tier.ID] = *tier
	return nil
}

func (r memTierRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeTier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tier, ok := r.s.tiers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &tier, nil
}

func (r memTierRepo) FindActive(ctx context.Context) ([]*models.PrizeTier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PrizeTier
	for _, tier := range r.s.tiers {
		if tier.Active {
			t := tier
			out = append(out, &t)
		}
	}
	sortTiers(out)
	return out, nil
}

func (r memTierRepo) FindAll(ctx context.Context) ([]*models.PrizeTier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PrizeTier
	for _, tier := range r.s.tiers {
		t := tier
		out = append(out, &t)
	}
	sortTiers(out)
	return out, nil
}

func (r memTierRepo) Update(ctx context.Context, tier *models.PrizeTier) error {
	if err := r.s.failure("tiers.Update"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tiers[tier.ID]; !ok {
		return repositories.ErrNotFound
	}
	tier.UpdatedAt = time.Now()
	r.s.tiers[tier.ID] = *tier
	return nil
}

func (r memTierRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tiers[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.tiers, id)
	return nil
}

func sortTiers(tiers []*models.PrizeTier) {
	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i].DisplayOrder != tiers[j].DisplayOrder {
			return tiers[i].DisplayOrder < tiers[j].DisplayOrder
		}
		return tiers[i].MinScore < tiers[j].MinScore
	})
}

// entryRepo

type memEntryRepo struct{ s *memStore }

func (r memEntryRepo) Create(ctx context.Context, entry *models.PrizeEntry) error {
	if err := r.s.failure("entries.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.entries {
		if existing.MSISDN == entry.MSISDN && existing.TierID == entry.TierID {
			return repositories.ErrDuplicate
		}
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	r.s.entries[entry.ID] = *entry
	return nil
}

func (r memEntryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry, ok := r.s.entries[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &entry, nil
}

func (r memEntryRepo) FindUnwonByTier(ctx context.Context, tierID primitive.ObjectID) ([]*models.PrizeEntry, error) {
	if err := r.s.failure("entries.FindUnwonByTier"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PrizeEntry
	for _, entry := range r.s.entries {
		if entry.TierID == tierID && !entry.Won {
			e := entry
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r memEntryRepo) FindByMSISDN(ctx context.Context, msisdn string) ([]*models.PrizeEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PrizeEntry
	for _, entry := range r.s.entries {
		if entry.MSISDN == msisdn {
			e := entry
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r memEntryRepo) ExistsForParticipant(ctx context.Context, msisdn string, tierID primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, entry := range r.s.entries {
		if entry.MSISDN == msisdn && entry.TierID == tierID {
			return true, nil
		}
	}
	return false, nil
}

func (r memEntryRepo) Find(ctx context.Context, filter repositories.EntryFilter, page, limit int) ([]*models.PrizeEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PrizeEntry
	for _, entry := range r.s.entries {
		if filter.TierID != nil && entry.TierID != *filter.TierID {
			continue
		}
		if filter.MSISDN != "" && entry.MSISDN != filter.MSISDN {
			continue
		}
		if filter.Won != nil && entry.Won != *filter.Won {
			continue
		}
		e := entry
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return paginate(out, page, limit), nil
}

func (r memEntryRepo) CountByTier(ctx context.Context, tierID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, entry := range r.s.entries {
		if entry.TierID == tierID {
			count++
		}
	}
	return count, nil
}

func (r memEntryRepo) MarkWon(ctx context.Context, id primitive.ObjectID) error {
	if err := r.s.failure("entries.MarkWon"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry, ok := r.s.entries[id]
	if !ok || entry.Won {
		return repositories.ErrNotFound
	}
	entry.Won = true
	entry.UpdatedAt = time.Now()
	r.s.entries[id] = entry
	return nil
}

// winnerRepo

type memWinnerRepo struct{ s *memStore }

func (r memWinnerRepo) Create(ctx context.Context, winner *models.PrizeWinner) error {
	if err := r.s.failure("winners.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.winners {
		if existing.ClaimCode == winner.ClaimCode {
			return repositories.ErrDuplicate
		}
	}
	if winner.ID.IsZero() {
		winner.ID = primitive.NewObjectID()
	}
	winner.CreatedAt = time.Now()
	winner.UpdatedAt = winner.CreatedAt
	r.s.winners[winner.ID] = *winner
	return nil
}

func (r memWinnerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeWinner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	winner, ok := r.s.winners[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &winner, nil
}

func (r memWinnerRepo) FindByDrawID(ctx context.Context, drawID primitive.ObjectID) ([]*models.PrizeWinner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PrizeWinner
	for _, winner := range r.s.winners {
		if winner.DrawID == drawID {
			w := winner
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DrawSequence < out[j].DrawSequence })
	return out, nil
}

func (r memWinnerRepo) FindByClaimCode(ctx context.Context, code string) (*models.PrizeWinner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, winner := range r.s.winners {
		if winner.ClaimCode == code {
			w := winner
			return &w, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r memWinnerRepo) Find(ctx context.Context, filter repositories.WinnerFilter, page, limit int) ([]*models.PrizeWinner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PrizeWinner
	for _, winner := range r.s.winners {
		if filter.TierID != nil && winner.TierID != *filter.TierID {
			continue
		}
		if filter.DrawID != nil && winner.DrawID != *filter.DrawID {
			continue
		}
		if filter.MSISDN != "" && winner.MSISDN != filter.MSISDN {
			continue
		}
		if filter.Claimed != nil && winner.Claimed != *filter.Claimed {
			continue
		}
		w := winner
		out = append(out, &w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return paginate(out, page, limit), nil
}

func (r memWinnerRepo) CountByTier(ctx context.Context, tierID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, winner := range r.s.winners {
		if winner.TierID == tierID {
			count++
		}
	}
	return count, nil
}

func (r memWinnerRepo) ClaimCodeExists(ctx context.Context, code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, winner := range r.s.winners {
		if winner.ClaimCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r memWinnerRepo) ClaimByCode(ctx context.Context, code string, update repositories.ClaimUpdate) (*models.PrizeWinner, error) {
	if err := r.s.failure("winners.ClaimByCode"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, winner := range r.s.winners {
		if winner.ClaimCode != code || winner.Claimed {
			continue
		}
		winner.Claimed = true
		winner.ClaimedAt = update.ClaimedAt
		winner.ClaimBranch = update.Branch
		winner.ClaimedBy = update.Operator
		winner.ClaimNotes = update.Notes
		winner.UpdatedAt = time.Now()
		r.s.winners[id] = winner
		w := winner
		return &w, nil
	}
	return nil, repositories.ErrNotFound
}

// drawRepo

type memDrawRepo struct{ s *memStore }

func (r memDrawRepo) Create(ctx context.Context, draw *models.PrizeDraw) error {
	if err := r.s.failure("draws.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if draw.ID.IsZero() {
		draw.ID = primitive.NewObjectID()
	}
	draw.CreatedAt = time.Now()
	r.s.draws[draw.ID] = *draw
	return nil
}

func (r memDrawRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrizeDraw, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	draw, ok := r.s.draws[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &draw, nil
}

func (r memDrawRepo) FindByTier(ctx context.Context, tierID primitive.ObjectID) ([]*models.PrizeDraw, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PrizeDraw
	for _, draw := range r.s.draws {
		if draw.TierID == tierID {
			d := draw
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (r memDrawRepo) FindAll(ctx context.Context, page, limit int) ([]*models.PrizeDraw, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.PrizeDraw
	for _, draw := range r.s.draws {
		d := draw
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return paginate(out, page, limit), nil
}

// auditRepo

type memAuditRepo struct{ s *memStore }

func (r memAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := r.s.failure("audits.Create"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	entry.CreatedAt = time.Now()
	r.s.audits = append(r.s.audits, *entry)
	return nil
}

func (r memAuditRepo) Find(ctx context.Context, filter repositories.AuditFilter, limit int) ([]*models.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.AuditLog
	for i := len(r.s.audits) - 1; i >= 0 && len(out) < limit; i-- {
		entry := r.s.audits[i]
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && entry.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && entry.EntityID != filter.EntityID {
			continue
		}
		if !filter.Since.IsZero() && entry.CreatedAt.Before(filter.Since) {
			continue
		}
		e := entry
		out = append(out, &e)
	}
	return out, nil
}

// adminRepo

type memAdminRepo struct{ s *memStore }

func (r memAdminRepo) Create(ctx context.Context, user *models.AdminUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.admins {
		if strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.admins[user.ID] = *user
	return nil
}

func (r memAdminRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.admins {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r memAdminRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.admins)), nil
}

func paginate[T any](items []*T, page, limit int) []*T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func auditFilterFor(action models.AuditAction) repositories.AuditFilter {
	return repositories.AuditFilter{Action: action}
}

func winnerFilterForTier(tierID primitive.ObjectID) repositories.WinnerFilter {
	return repositories.WinnerFilter{TierID: &tierID}
}

// testEnv bundles a store and fully wired services for one test.
type testEnv struct {
	store  *memStore
	tiers  *TierServiceImpl
	entry  *EntryServiceImpl
	draws  *DrawServiceImpl
	claims *ClaimServiceImpl
	audit  *AuditServiceImpl
}

func newTestEnv() *testEnv {
	store := newMemStore()
	tierRepo := memTierRepo{store}
	entryRepo := memEntryRepo{store}
	winnerRepo := memWinnerRepo{store}
	drawRepo := memDrawRepo{store}
	auditRepo := memAuditRepo{store}

	audit := NewAuditService(auditRepo)
	return &testEnv{
		store:  store,
		tiers:  NewTierService(tierRepo, entryRepo, winnerRepo, audit, store),
		entry:  NewEntryService(entryRepo, tierRepo, audit),
		draws:  NewDrawService(tierRepo, entryRepo, winnerRepo, drawRepo, audit, store),
		claims: NewClaimService(winnerRepo, audit),
		audit:  audit,
	}
}
