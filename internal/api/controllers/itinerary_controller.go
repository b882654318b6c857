package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/services"
	"tripdaddy/pkg/utils"
)

type ItineraryController struct {
	itinerary services.ItineraryServiceInterface
	log       *zap.Logger
}

func NewItineraryController(itinerary services.ItineraryServiceInterface, log *zap.Logger) *ItineraryController {
	return &ItineraryController{
		itinerary: itinerary,
		log:       log.Named("itinerary_api"),
	}
}

// SaveEmail godoc
// @Summary Attach an email to a trip and send the preview
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param request body request_models.SaveEmailRequest true "Trip id and email"
// @Success 200 {object} utils.APIResponse
// @Router /api/save-email [post]
func (i *ItineraryController) SaveEmail(c *gin.Context) {
	var req request_models.SaveEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "A trip id and a valid email are required")
		return
	}

	trip, err := i.itinerary.SaveEmail(c.Request.Context(), req.ID, req.Email)
	if err != nil {
		utils.HandleServiceError(c, i.log, err)
		return
	}
	utils.RespondSuccess(c, trip, "Email saved")
}

func (i *ItineraryController) GetItinerary(c *gin.Context) {
	trip, err := i.itinerary.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, i.log, err)
		return
	}
	utils.RespondSuccess(c, trip, "")
}

// ExportPDF renders into memory first so a failure can still be reported as
// JSON.
func (i *ItineraryController) ExportPDF(c *gin.Context) {
	id := c.Param("id")

	var buf bytes.Buffer
	if err := i.itinerary.ExportPDF(c.Request.Context(), id, &buf); err != nil {
		utils.HandleServiceError(c, i.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="tripdaddy-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (i *ItineraryController) RemoveActivity(c *gin.Context) {
	var req request_models.RemoveActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "dayNumber, period and index are required")
		return
	}

	trip, err := i.itinerary.RemoveActivity(c.Request.Context(), c.Param("id"), req.ActivitySlot)
	if err != nil {
		utils.HandleServiceError(c, i.log, err)
		return
	}
	utils.RespondSuccess(c, trip, "Activity removed")
}

// Regenerate godoc
// @Summary Suggest a replacement for one activity
// @Tags Itinerary
// @Accept json
// @Produce json
// @Param request body request_models.RegenerateRequest true "Activity to replace"
// @Success 200 {object} utils.APIResponse
// @Router /api/regenerate [post]
func (i *ItineraryController) Regenerate(c *gin.Context) {
	var req request_models.RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	alt, err := i.itinerary.RegenerateActivity(c.Request.Context(), &req)
	if err != nil {
		utils.HandleServiceError(c, i.log, err)
		return
	}
	if alt == nil {
		utils.RespondSuccess(c, nil, "No alternative found")
		return
	}
	utils.RespondSuccess(c, alt, "Alternative found")
}
