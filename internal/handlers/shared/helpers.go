package handlers

import (
	"errors"
	"net/http"

	"forkly/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// accountIDFromContext reads the account id set by the auth middleware.
func accountIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("account_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}
	accountID, ok := value.(primitive.ObjectID)
	if !ok {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}
	return accountID, true
}

// serviceErrorResponse maps the service error taxonomy onto the response
// envelope. Anything outside the taxonomy is an internal error.
func serviceErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrAccountNotFound):
		utils.NotFoundResponse(c, "Account")
	case errors.Is(err, utils.ErrRewardNotFound):
		utils.NotFoundResponse(c, "Reward")
	case errors.Is(err, utils.ErrGrantNotFound):
		utils.NotFoundResponse(c, "Reward grant")
	case errors.Is(err, utils.ErrTierNotFound):
		utils.NotFoundResponse(c, "Tier")
	case errors.Is(err, utils.ErrAggregateNotFound):
		utils.NotFoundResponse(c, "Restaurant analytics")
	case errors.Is(err, utils.ErrInsufficientBalance):
		utils.ErrorResponse(c, http.StatusBadRequest, "INSUFFICIENT_BALANCE", "Not enough points for this reward")
	case errors.Is(err, utils.ErrAlreadyClaimed):
		utils.ConflictResponse(c, "Reward already claimed")
	case errors.Is(err, utils.ErrAlreadyUsed):
		utils.ConflictResponse(c, "Reward already used")
	case errors.Is(err, utils.ErrConcurrentModification):
		utils.ConflictResponse(c, "Concurrent update, please retry")
	default:
		utils.InternalServerErrorResponse(c)
	}
}
