package models

// AccountStats is the aggregate gamification read model returned to the host
// application. It is assembled after the refresh side effects (tier recompute,
// achievement evaluation) have run.
type AccountStats struct {
	AccountID        string              `json:"account_id"`
	ReferralCode     string              `json:"referral_code"`
	Points           int64               `json:"points"`
	Referrals        int64               `json:"referrals"`
	Reviews          int64               `json:"reviews"`
	Progress         *TierProgress       `json:"tier_progress"`
	Achievements     []AchievementStatus `json:"achievements"`
	AvailableRewards []*Reward           `json:"available_rewards"`
	ClaimedRewards   []*RewardGrant      `json:"claimed_rewards"`
}

// LeaderboardEntry ranks accounts by cached points.
type LeaderboardEntry struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Points    int64  `json:"points"`
	TierName  string `json:"tier_name,omitempty"`
}
