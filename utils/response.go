package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ApiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func Respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, ApiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// RespondError writes err as an error envelope. Server errors are logged and
// their detail is never sent to the client.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "something went wrong"

	var apiErr *ApiError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
		message = apiErr.Message
	}

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, ApiResponse{
		StatusCode: status,
		Data:       nil,
		Message:    message,
		Success:    false,
	})
}
