package middleware

import (
	"net/http"
	"strings"

	"forkly/internal/models"
	"forkly/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JWTClaims are the token claims issued by the host application.
type JWTClaims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// AuthRequired validates the bearer token and puts the caller's account id
// and role into the gin context.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*JWTClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		accountID, err := primitive.ObjectIDFromHex(claims.AccountID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid account ID in token"})
			c.Abort()
			return
		}

		c.Set("account_id", accountID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RestaurantOwnerRequired ensures the caller registered as a restaurant owner.
func RestaurantOwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok || roleStr != string(models.AccountRoleRestaurantOwner) {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
