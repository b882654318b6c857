package request_models

type CreateCheckoutRequest struct {
	ID string `json:"id" binding:"required"`
}

type VerifyPaymentRequest struct {
	TripID    string `json:"tripId" binding:"required"`
	SessionID string `json:"sessionId"`
}
