package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/services"
	"tripdaddy/pkg/utils"
)

// PlannerController serves the wizard steps that run before a trip exists.
type PlannerController struct {
	generation services.GenerationServiceInterface
	itinerary  services.ItineraryServiceInterface
	log        *zap.Logger
}

func NewPlannerController(
	generation services.GenerationServiceInterface,
	itinerary services.ItineraryServiceInterface,
	log *zap.Logger,
) *PlannerController {
	return &PlannerController{
		generation: generation,
		itinerary:  itinerary,
		log:        log.Named("planner"),
	}
}

// ValidateDestination godoc
// @Summary Check that a destination is a real place
// @Tags Planner
// @Accept json
// @Produce json
// @Param request body request_models.ValidateDestinationRequest true "Destination"
// @Success 200 {object} utils.APIResponse
// @Router /api/validate [post]
func (p *PlannerController) ValidateDestination(c *gin.Context) {
	var req request_models.ValidateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "destination is required")
		return
	}

	result := p.generation.ValidateDestination(c.Request.Context(), req.Destination)
	utils.RespondSuccess(c, result, "Destination checked")
}

// Questions godoc
// @Summary Follow-up yes/no questions for the trip
// @Tags Planner
// @Accept json
// @Produce json
// @Param request body request_models.UserPreferences true "Preferences so far"
// @Success 200 {object} utils.APIResponse
// @Router /api/questions [post]
func (p *PlannerController) Questions(c *gin.Context) {
	var prefs request_models.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		utils.HandleServiceError(c, p.log, utils.BindingError(err))
		return
	}
	if err := prefs.ValidateStart(); err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}

	questions := p.generation.GetQuestions(c.Request.Context(), &prefs)
	utils.RespondSuccess(c, questions, "Questions generated")
}

func (p *PlannerController) Generate(c *gin.Context) {
	var prefs request_models.UserPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		utils.HandleServiceError(c, p.log, utils.BindingError(err))
		return
	}

	preview, err := p.itinerary.GeneratePreview(c.Request.Context(), &prefs)
	if err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}
	utils.RespondSuccess(c, preview, "Preview generated")
}
