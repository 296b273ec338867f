package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	utils "github.com/phillip/event-booking-go/utils"
)

func HealthCheck(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			utils.RespondError(c, &utils.ApiError{StatusCode: http.StatusServiceUnavailable, Message: "database unavailable", Err: err})
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"status": "ok"}, "healthy")
	}
}
