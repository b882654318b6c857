package utils

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrTripNotFound           = errors.New("trip not found")
	ErrTripLocked             = errors.New("trip is locked")
	ErrGenerationFailed       = errors.New("itinerary generation failed")
	ErrActivityNotFound       = errors.New("activity not found")
	ErrPaymentNotCompleted    = errors.New("payment not completed")
	ErrPaymentProvider        = errors.New("payment provider error")
	ErrDatabaseError          = errors.New("database error")
	ErrUnexpectedBehaviorOfAI = errors.New("unexpected behavior of AI")
	ErrNoJSONFound            = errors.New("no JSON payload found")
)
