package handlers

import (
	"fmt"
	"strconv"

	"forkly/internal/models"
	"forkly/internal/services"
	"forkly/internal/utils"
	"forkly/internal/validators"

	"github.com/gin-gonic/gin"
)

type LoyaltyHandler struct {
	loyaltyService services.LoyaltyService
	inviteBaseURL  string
}

func NewLoyaltyHandler(loyaltyService services.LoyaltyService, inviteBaseURL string) *LoyaltyHandler {
	return &LoyaltyHandler{
		loyaltyService: loyaltyService,
		inviteBaseURL:  inviteBaseURL,
	}
}

type registerRequest struct {
	Username     string             `json:"username" binding:"required,min=2,max=50"`
	Email        string             `json:"email" binding:"omitempty,email"`
	Role         models.AccountRole `json:"role"`
	ReferralCode string             `json:"referral_code"`
}

// Register creates the loyalty profile for a newly registered account. An
// unknown or self-referencing referral code registers the account normally
// with no referral recorded.
func (h *LoyaltyHandler) Register(c *gin.Context) {
	var request registerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	// Malformed codes get the same treatment as unknown ones.
	if request.ReferralCode != "" && !validators.IsValidReferralCode(request.ReferralCode) {
		request.ReferralCode = ""
	}

	account, err := h.loyaltyService.RegisterAccount(c.Request.Context(), request.Username, request.Email, request.Role, request.ReferralCode)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Account registered successfully", account)
}

// ReviewRecorded is the host application's hook for a published review.
func (h *LoyaltyHandler) ReviewRecorded(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	if err := h.loyaltyService.OnReviewRecorded(c.Request.Context(), accountID); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Review recorded successfully", nil)
}

// CheckAchievements forces a fresh evaluation of the caller's achievements
// and returns the ones unlocked by this call.
func (h *LoyaltyHandler) CheckAchievements(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	unlocked, err := h.loyaltyService.CheckAchievements(c.Request.Context(), accountID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Achievements checked successfully", gin.H{
		"newly_unlocked": unlocked,
	})
}

// GetStats returns the caller's aggregate gamification read model.
func (h *LoyaltyHandler) GetStats(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	stats, err := h.loyaltyService.GetStats(c.Request.Context(), accountID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Stats retrieved successfully", stats)
}

// GetLedger returns the caller's point history, newest first.
func (h *LoyaltyHandler) GetLedger(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, err := h.loyaltyService.GetLedger(c.Request.Context(), accountID, params)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	meta := &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		Total:      total,
		Count:      len(entries),
	}
	utils.SuccessResponseWithMeta(c, "Ledger retrieved successfully", entries, meta)
}

// GetLeaderboard returns the top accounts by points.
func (h *LoyaltyHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultLeaderboardSize)))

	entries, err := h.loyaltyService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Leaderboard retrieved successfully", entries)
}

// GetInviteLink returns the caller's referral code and shareable URL.
func (h *LoyaltyHandler) GetInviteLink(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	account, err := h.loyaltyService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Invite link retrieved successfully", gin.H{
		"referral_code": account.ReferralCode,
		"invite_link":   fmt.Sprintf("%s/invite/%s", h.inviteBaseURL, account.ReferralCode),
	})
}
