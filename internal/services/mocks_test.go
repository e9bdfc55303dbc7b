package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"forkly/internal/models"
	"forkly/internal/utils"
	"forkly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func testLogger() *logger.Logger {
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	return log
}

// fakeSessionContext satisfies mongo.SessionContext without a live session.
// The in-memory repositories never touch the embedded session.
type fakeSessionContext struct {
	context.Context
	mongo.Session
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	return fn(fakeSessionContext{Context: ctx})
}

// failingTxRunner aborts every transaction before the closure runs, so no
// write inside it can reach the repositories.
type failingTxRunner struct{}

func (failingTxRunner) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	return nil, errors.New("transaction aborted")
}

// noopCache misses every read so service tests always hit the repositories.
type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("cache miss")
}

func (noopCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (noopCache) Delete(ctx context.Context, keys ...string) error { return nil }

func (noopCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[primitive.ObjectID]*models.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[primitive.ObjectID]*models.Account)}
}

func (r *memAccountRepo) Create(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.ReferralCode == account.ReferralCode {
			return errors.New("duplicate referral code")
		}
	}
	account.ID = primitive.NewObjectID()
	stored := *account
	r.accounts[account.ID] = &stored
	return nil
}

func (r *memAccountRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, utils.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *memAccountRepo) GetByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.ReferralCode == code {
			copied := *account
			return &copied, nil
		}
	}
	return nil, utils.ErrAccountNotFound
}

func (r *memAccountRepo) ApplyPointsDelta(ctx context.Context, id primitive.ObjectID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return utils.ErrAccountNotFound
	}
	if delta < 0 && account.Points < -delta {
		return utils.ErrInsufficientBalance
	}
	account.Points += delta
	account.UpdatedAt = time.Now()
	return nil
}

func (r *memAccountRepo) IncrementReviewCount(ctx context.Context, id primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return 0, utils.ErrAccountNotFound
	}
	account.ReviewCount++
	return account.ReviewCount, nil
}

func (r *memAccountRepo) TopByPoints(ctx context.Context, limit int) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	accounts := make([]*models.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		copied := *account
		accounts = append(accounts, &copied)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Points > accounts[j].Points })
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}
	return accounts, nil
}

type memLedgerRepo struct {
	mu      sync.Mutex
	entries []*models.LedgerEntry
}

func newMemLedgerRepo() *memLedgerRepo { return &memLedgerRepo{} }

func (r *memLedgerRepo) Create(ctx context.Context, entry *models.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	stored := *entry
	r.entries = append(r.entries, &stored)
	return nil
}

func (r *memLedgerRepo) GetByAccount(ctx context.Context, accountID primitive.ObjectID, params *utils.PaginationParams) ([]*models.LedgerEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.LedgerEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].AccountID == accountID {
			copied := *r.entries[i]
			matched = append(matched, &copied)
		}
	}
	total := int64(len(matched))
	start := params.GetSkip()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.GetLimit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memLedgerRepo) SumByAccount(ctx context.Context, accountID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, entry := range r.entries {
		if entry.AccountID == accountID {
			sum += entry.Points
		}
	}
	return sum, nil
}

type memReferralRepo struct {
	mu    sync.Mutex
	edges []*models.ReferralEdge
}

func newMemReferralRepo() *memReferralRepo { return &memReferralRepo{} }

func (r *memReferralRepo) InsertIfAbsent(ctx context.Context, edge *models.ReferralEdge) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.edges {
		if existing.AccountID == edge.AccountID && existing.PeerID == edge.PeerID {
			return false, nil
		}
	}
	edge.ID = primitive.NewObjectID()
	stored := *edge
	r.edges = append(r.edges, &stored)
	return true, nil
}

func (r *memReferralRepo) CountReferred(ctx context.Context, inviterID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, edge := range r.edges {
		if edge.AccountID == inviterID && edge.IsReferred {
			count++
		}
	}
	return count, nil
}

func (r *memReferralRepo) LatestReferredByInvitee(ctx context.Context, inviteeID primitive.ObjectID) (*models.ReferralEdge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.edges) - 1; i >= 0; i-- {
		if r.edges[i].PeerID == inviteeID && r.edges[i].IsReferred {
			copied := *r.edges[i]
			return &copied, nil
		}
	}
	return nil, utils.ErrEdgeNotFound
}

func (r *memReferralRepo) MarkMilestoneCredited(ctx context.Context, edgeID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, edge := range r.edges {
		if edge.ID == edgeID {
			if edge.MilestoneCredited {
				return false, nil
			}
			edge.MilestoneCredited = true
			return true, nil
		}
	}
	return false, utils.ErrEdgeNotFound
}

type memTierRepo struct {
	mu          sync.Mutex
	tiers       []*models.Tier
	assignments map[primitive.ObjectID]*models.TierAssignment
}

func newMemTierRepo(tiers []*models.Tier) *memTierRepo {
	return &memTierRepo{
		tiers:       tiers,
		assignments: make(map[primitive.ObjectID]*models.TierAssignment),
	}
}

func (r *memTierRepo) ListTiers(ctx context.Context) ([]*models.Tier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Tier(nil), r.tiers...), nil
}

func (r *memTierRepo) GetAssignment(ctx context.Context, accountID primitive.ObjectID) (*models.TierAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[accountID]
	if !ok {
		return nil, utils.ErrTierNotFound
	}
	copied := *assignment
	return &copied, nil
}

func (r *memTierRepo) UpsertAssignment(ctx context.Context, assignment *models.TierAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if assignment.ID.IsZero() {
		assignment.ID = primitive.NewObjectID()
	}
	stored := *assignment
	r.assignments[assignment.AccountID] = &stored
	return nil
}

type memAchievementRepo struct {
	mu           sync.Mutex
	achievements []*models.Achievement
	unlocks      []*models.AchievementUnlock
}

func newMemAchievementRepo(achievements []*models.Achievement) *memAchievementRepo {
	return &memAchievementRepo{achievements: achievements}
}

func (r *memAchievementRepo) ListActive(ctx context.Context) ([]*models.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []*models.Achievement
	for _, achievement := range r.achievements {
		if achievement.IsActive {
			active = append(active, achievement)
		}
	}
	return active, nil
}

func (r *memAchievementRepo) ListUnlocks(ctx context.Context, accountID primitive.ObjectID) ([]*models.AchievementUnlock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.AchievementUnlock
	for _, unlock := range r.unlocks {
		if unlock.AccountID == accountID {
			copied := *unlock
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

func (r *memAchievementRepo) InsertUnlockIfAbsent(ctx context.Context, unlock *models.AchievementUnlock) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.unlocks {
		if existing.AccountID == unlock.AccountID && existing.AchievementID == unlock.AchievementID {
			return false, nil
		}
	}
	unlock.ID = primitive.NewObjectID()
	stored := *unlock
	r.unlocks = append(r.unlocks, &stored)
	return true, nil
}

type memRewardRepo struct {
	mu      sync.Mutex
	rewards []*models.Reward
	grants  []*models.RewardGrant
}

func newMemRewardRepo(rewards []*models.Reward) *memRewardRepo {
	return &memRewardRepo{rewards: rewards}
}

func (r *memRewardRepo) ListActive(ctx context.Context) ([]*models.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []*models.Reward
	for _, reward := range r.rewards {
		if reward.IsActive {
			active = append(active, reward)
		}
	}
	return active, nil
}

func (r *memRewardRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reward := range r.rewards {
		if reward.ID == id {
			return reward, nil
		}
	}
	return nil, utils.ErrRewardNotFound
}

func (r *memRewardRepo) InsertGrant(ctx context.Context, grant *models.RewardGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.grants {
		if existing.AccountID == grant.AccountID && existing.RewardID == grant.RewardID {
			return utils.ErrAlreadyClaimed
		}
	}
	grant.ID = primitive.NewObjectID()
	stored := *grant
	r.grants = append(r.grants, &stored)
	return nil
}

func (r *memRewardRepo) GetGrant(ctx context.Context, id primitive.ObjectID) (*models.RewardGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, grant := range r.grants {
		if grant.ID == id {
			copied := *grant
			return &copied, nil
		}
	}
	return nil, utils.ErrGrantNotFound
}

func (r *memRewardRepo) ListGrants(ctx context.Context, accountID primitive.ObjectID) ([]*models.RewardGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.RewardGrant
	for _, grant := range r.grants {
		if grant.AccountID == accountID {
			copied := *grant
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

func (r *memRewardRepo) MarkUsed(ctx context.Context, id, accountID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, grant := range r.grants {
		if grant.ID == id && grant.AccountID == accountID {
			if grant.IsUsed {
				return false, nil
			}
			now := time.Now()
			grant.IsUsed = true
			grant.UsedAt = &now
			return true, nil
		}
	}
	return false, utils.ErrGrantNotFound
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func newMemNotificationRepo() *memNotificationRepo { return &memNotificationRepo{} }

func (r *memNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	stored := *notification
	r.notifications = append(r.notifications, &stored)
	return nil
}

func (r *memNotificationRepo) ListByAccount(ctx context.Context, accountID primitive.ObjectID, limit int) ([]*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.Notification
	for i := len(r.notifications) - 1; i >= 0 && len(matched) < limit; i-- {
		if r.notifications[i].AccountID == accountID {
			copied := *r.notifications[i]
			matched = append(matched, &copied)
		}
	}
	return matched, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, id, accountID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, notification := range r.notifications {
		if notification.ID == id && notification.AccountID == accountID {
			now := time.Now()
			notification.Status = models.NotificationStatusRead
			notification.ReadAt = &now
			return nil
		}
	}
	return utils.ErrAccountNotFound
}

type memAnalyticsRepo struct {
	aggregates map[primitive.ObjectID]*models.RestaurantActivityAggregate
}

func newMemAnalyticsRepo() *memAnalyticsRepo {
	return &memAnalyticsRepo{aggregates: make(map[primitive.ObjectID]*models.RestaurantActivityAggregate)}
}

func (r *memAnalyticsRepo) GetAggregate(ctx context.Context, restaurantID primitive.ObjectID) (*models.RestaurantActivityAggregate, error) {
	aggregate, ok := r.aggregates[restaurantID]
	if !ok {
		return nil, utils.ErrAggregateNotFound
	}
	return aggregate, nil
}

// seedTiers mirrors the shipped tier ladder.
func seedTiers() []*models.Tier {
	names := []struct {
		name string
		min  int64
	}{
		{"Iniciante", 0},
		{"Bronze", 3},
		{"Prata", 8},
		{"Ouro", 15},
		{"Diamante", 30},
	}
	tiers := make([]*models.Tier, 0, len(names))
	for _, entry := range names {
		tiers = append(tiers, &models.Tier{
			ID:           primitive.NewObjectID(),
			Name:         entry.name,
			MinReferrals: entry.min,
		})
	}
	return tiers
}
