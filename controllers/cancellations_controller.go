package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	utils "github.com/phillip/event-booking-go/utils"
)

type cancellationRequest struct {
	Reason string `json:"reason" form:"reason"`
}

func RequestCancellation(svc CancellationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body cancellationRequest
		if err := c.ShouldBind(&body); err != nil && !errors.Is(err, io.EOF) {
			utils.RespondError(c, utils.BadRequest("invalid request body"))
			return
		}

		request, err := svc.RequestCancellation(c.Request.Context(), actorFrom(c), c.Param("id"), body.Reason)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusCreated, request, "Cancellation request submitted")
	}
}

func ApproveCancellation(svc CancellationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.ApproveCancellation(c.Request.Context(), c.Param("id")); err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, nil, "Event cancelled and removed")
	}
}

func ListCancellations(svc CancellationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		requests, err := svc.ListPending(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, requests, "Cancellation requests fetched successfully")
	}
}
