package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tripdaddy/internal/models/request_models"
	"tripdaddy/internal/services"
	"tripdaddy/pkg/utils"
)

// Stripe caps event payloads well below this.
const maxWebhookBody = 1 << 16

type PaymentController struct {
	paymentService services.PaymentServiceInterface
	log            *zap.Logger
}

func NewPaymentController(paymentService services.PaymentServiceInterface, log *zap.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		log:            log.Named("payment_api"),
	}
}

// CreateCheckoutSession godoc
// @Summary Start a Stripe checkout to unlock a trip
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CreateCheckoutRequest true "Trip id"
// @Success 200 {object} utils.APIResponse
// @Router /api/create-checkout-session [post]
func (p *PaymentController) CreateCheckoutSession(c *gin.Context) {
	var req request_models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "id is required")
		return
	}

	checkout, err := p.paymentService.CreateCheckout(c.Request.Context(), req.ID)
	if err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}
	utils.RespondSuccess(c, checkout, "Checkout session created")
}

func (p *PaymentController) VerifyPayment(c *gin.Context) {
	var req request_models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "tripId is required")
		return
	}

	res, err := p.paymentService.VerifyPayment(c.Request.Context(), req.TripID, req.SessionID)
	if err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}
	utils.RespondSuccess(c, res, res.Message)
}

func (p *PaymentController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := p.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		utils.HandleServiceError(c, p.log, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"received": true}, "")
}
