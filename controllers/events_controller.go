package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	services "github.com/phillip/event-booking-go/services"
	utils "github.com/phillip/event-booking-go/utils"
)

// ---------------- CREATE ----------------
// CreateEvent accepts JSON or multipart form data; multipart requests may
// attach files under "images". uploader may be nil.
func CreateEvent(svc EventService, uploader ImageUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)

		var input services.CreateEventInput
		if err := c.ShouldBind(&input); err != nil {
			utils.RespondError(c, utils.BadRequest("invalid request body"))
			return
		}
		if input.UserID == "" {
			input.UserID = actor.UserID
		}
		if !actor.CanActFor(input.UserID) {
			utils.RespondError(c, utils.Forbidden("Access denied"))
			return
		}

		// --- Handle file uploads ---
		form, err := c.MultipartForm()
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			utils.RespondError(c, utils.BadRequest("invalid form data"))
			return
		}
		if form != nil && len(form.File["images"]) > 0 {
			if uploader == nil {
				utils.RespondError(c, utils.BadRequest("image uploads are not enabled"))
				return
			}
			for _, fileHeader := range form.File["images"] {
				file, err := fileHeader.Open()
				if err != nil {
					discardUploads(c, uploader, input.Images)
					utils.RespondError(c, utils.BadRequest("failed to open file "+fileHeader.Filename))
					return
				}

				url, err := uploader.Upload(c.Request.Context(), file)
				file.Close()
				if err != nil {
					discardUploads(c, uploader, input.Images)
					utils.RespondError(c, utils.Internal("image upload failed", err))
					return
				}
				input.Images = append(input.Images, url)
			}
		}

		event, err := svc.CreateEvent(c.Request.Context(), input)
		if err != nil {
			discardUploads(c, uploader, input.Images)
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusCreated, event, "New event registered successfully")
	}
}

// discardUploads removes images uploaded for a booking that was not created.
// Failures are logged and otherwise ignored.
func discardUploads(c *gin.Context, uploader ImageUploader, urls []string) {
	// cleanup must outlive a cancelled request
	ctx := context.WithoutCancel(c.Request.Context())
	for _, url := range urls {
		if err := uploader.Delete(ctx, url); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("could not remove orphaned image")
		}
	}
}

// ---------------- LIST ----------------
func ListEvents(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := svc.EventsByCategory(c.Request.Context(), c.Query("category"))
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, services.FormatEvents(events), "Events fetched successfully")
	}
}

func EventCounts(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := svc.EventCounts(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, counts, "Event counts fetched successfully")
	}
}

func UserEvents(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")
		if !actorFrom(c).CanActFor(userID) {
			utils.RespondError(c, utils.Forbidden("Access denied"))
			return
		}

		events, err := svc.EventsOfUser(c.Request.Context(), userID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, events, "User events fetched successfully")
	}
}

// ---------------- GET ----------------
func GetEvent(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := svc.GetEvent(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		etag := utils.GenerateETag(event.Event.ID, event.Event.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		utils.Respond(c, http.StatusOK, services.FormatEvent(*event), "Event fetched successfully")
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)

		var input services.UpdateEventInput
		if err := c.ShouldBind(&input); err != nil {
			utils.RespondError(c, utils.BadRequest("invalid request body"))
			return
		}
		input.EventID = c.Param("id")
		if input.UserID == "" {
			input.UserID = actor.UserID
		}

		result, err := svc.UpdateEvent(c.Request.Context(), actor, input)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, result, "User & Event updated successfully")
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(svc EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
			utils.RespondError(c, err)
			return
		}

		utils.Respond(c, http.StatusOK, nil, "Event deleted successfully")
	}
}
