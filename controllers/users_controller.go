package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	middleware "github.com/phillip/event-booking-go/middleware"
	services "github.com/phillip/event-booking-go/services"
	utils "github.com/phillip/event-booking-go/utils"
)

func (s SessionCookies) set(c *gin.Context, pair services.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken, int(s.AccessMaxAge.Seconds()), "/", s.Domain, s.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, pair.RefreshToken, int(s.RefreshMaxAge.Seconds()), "/", s.Domain, s.Secure, true)
}

func (s SessionCookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", s.Domain, s.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", s.Domain, s.Secure, true)
}

// ---------------- REGISTER ----------------
func Register(svc AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondError(c, utils.BadRequest("invalid request body"))
			return
		}

		user, err := svc.Register(c.Request.Context(), input)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusCreated, user, "User registered successfully")
	}
}

// ---------------- LOGIN ----------------
func Login(svc AccountService, cookies SessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.LoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondError(c, utils.BadRequest("invalid request body"))
			return
		}

		result, err := svc.Login(c.Request.Context(), input)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		cookies.set(c, result.TokenPair)
		utils.Respond(c, http.StatusOK, result, "User logged in successfully")
	}
}

// ---------------- LOGOUT ----------------
func Logout(svc AccountService, cookies SessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Logout(c.Request.Context(), c.GetString("user_id")); err != nil {
			utils.RespondError(c, err)
			return
		}

		cookies.clear(c)
		utils.Respond(c, http.StatusOK, gin.H{}, "User logged out")
	}
}

// ---------------- REFRESH ----------------
// RefreshToken reads the refresh token from its cookie, falling back to a
// JSON body of the form {"refreshToken": "..."}.
func RefreshToken(svc AccountService, cookies SessionCookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(middleware.RefreshTokenCookie)
		if token == "" {
			var body struct {
				RefreshToken string `json:"refreshToken"`
			}
			if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
				utils.RespondError(c, utils.BadRequest("invalid request body"))
				return
			}
			token = body.RefreshToken
		}

		pair, err := svc.Refresh(c.Request.Context(), token)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		cookies.set(c, *pair)
		utils.Respond(c, http.StatusOK, pair, "Access token refreshed")
	}
}

// ---------------- ME ----------------
func Me(svc AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Me(c.Request.Context(), c.GetString("user_id"))
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"userId": user.ID.Hex()}, "User is authenticated")
	}
}

// ---------------- ADMIN ----------------
func ListUsers(svc AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.ListUsers(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, users, "Users fetched successfully")
	}
}

func UpdateUser(svc AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondError(c, utils.BadRequest("invalid request body"))
			return
		}
		input.UserID = c.Param("id")

		user, err := svc.UpdateUser(c.Request.Context(), input)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, user, "User updated successfully")
	}
}

func DeleteUser(svc AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, nil, "User deleted successfully")
	}
}
