package utils

import "errors"

// Error taxonomy for the loyalty core. All of these are local, recoverable
// conditions returned to the caller; storage failures outside this set are
// wrapped and propagated unchanged.
var (
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrAlreadyClaimed         = errors.New("reward already claimed")
	ErrAlreadyUsed            = errors.New("reward already used")
	ErrAccountNotFound        = errors.New("account not found")
	ErrRewardNotFound         = errors.New("reward not found")
	ErrGrantNotFound          = errors.New("reward grant not found")
	ErrTierNotFound           = errors.New("tier not found")
	ErrEdgeNotFound           = errors.New("referral edge not found")
	ErrAggregateNotFound      = errors.New("restaurant aggregate not found")
	ErrInvalidReferralCode    = errors.New("invalid referral code")
	ErrConcurrentModification = errors.New("concurrent modification, retry")
)
