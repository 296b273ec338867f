package middleware

import (
	"github.com/gin-gonic/gin"

	models "github.com/phillip/event-booking-go/models"
	utils "github.com/phillip/event-booking-go/utils"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// AuthMiddleware accepts an access token from the accessToken cookie or a
// bearer Authorization header and stores the caller on the gin context.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(AccessTokenCookie)
		if token == "" {
			token, _ = utils.TokenFromHeader(c.GetHeader("Authorization"))
		}
		if token == "" {
			utils.RespondError(c, utils.Unauthorized("Unauthorized request"))
			return
		}

		claims, err := tokens.Validate(token)
		if err != nil {
			utils.RespondError(c, utils.Unauthorized("Invalid access token"))
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleAdmin {
			utils.RespondError(c, utils.Forbidden("Admin access required"))
			return
		}
		c.Next()
	}
}
