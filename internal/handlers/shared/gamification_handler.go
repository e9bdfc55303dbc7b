package handlers

import (
	"forkly/internal/services"
	"forkly/internal/utils"
	"forkly/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GamificationHandler struct {
	achievementService services.AchievementService
	rewardService      services.RewardService
}

func NewGamificationHandler(achievementService services.AchievementService, rewardService services.RewardService) *GamificationHandler {
	return &GamificationHandler{
		achievementService: achievementService,
		rewardService:      rewardService,
	}
}

// GetAchievements lists the achievement catalog with the caller's unlock state.
func (h *GamificationHandler) GetAchievements(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	statuses, err := h.achievementService.ListForAccount(c.Request.Context(), accountID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Achievements retrieved successfully", statuses)
}

// GetRewards lists the active reward catalog alongside the caller's grants.
func (h *GamificationHandler) GetRewards(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	catalog, err := h.rewardService.Catalog(c.Request.Context())
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	grants, err := h.rewardService.ListGrants(c.Request.Context(), accountID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Rewards retrieved successfully", gin.H{
		"available": catalog,
		"claimed":   grants,
	})
}

type claimRewardRequest struct {
	RewardID string `json:"reward_id" binding:"required" validate:"required,object_id"`
}

// ClaimReward exchanges points for a reward grant.
func (h *GamificationHandler) ClaimReward(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	var request claimRewardRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	rewardID, err := primitive.ObjectIDFromHex(request.RewardID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid reward ID")
		return
	}

	grant, err := h.rewardService.Claim(c.Request.Context(), accountID, rewardID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Reward claimed successfully", grant)
}

type useRewardRequest struct {
	GrantID string `json:"grant_id" binding:"required" validate:"required,object_id"`
}

// UseReward marks a claimed reward as used.
func (h *GamificationHandler) UseReward(c *gin.Context) {
	accountID, ok := accountIDFromContext(c)
	if !ok {
		return
	}

	var request useRewardRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Fields())
		return
	}

	grantID, err := primitive.ObjectIDFromHex(request.GrantID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid grant ID")
		return
	}

	grant, err := h.rewardService.Use(c.Request.Context(), accountID, grantID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Reward used successfully", grant)
}
