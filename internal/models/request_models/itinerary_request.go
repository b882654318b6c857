package request_models

import "tripdaddy/internal/models/response_models"

type ValidateDestinationRequest struct {
	Destination string `json:"destination" binding:"required"`
}

type SaveEmailRequest struct {
	ID    string `json:"id" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type ActivityContext struct {
	DayTitle  string `json:"dayTitle"`
	Area      string `json:"area"`
	TimeOfDay string `json:"timeOfDay"`
}

// ActivitySlot addresses one activity inside a stored plan.
type ActivitySlot struct {
	DayNumber int    `json:"dayNumber" binding:"required,min=1"`
	Period    string `json:"period" binding:"required,oneof=morning afternoon evening"`
	Index     int    `json:"index" binding:"min=0"`
}

// RegenerateRequest asks for a replacement activity. When TripID is set the
// stored preferences are used and, with a Slot, the swap is persisted.
type RegenerateRequest struct {
	TripID                string                   `json:"tripId"`
	Prefs                 *UserPreferences         `json:"prefs" binding:"-"`
	Activity              response_models.Activity `json:"activity"`
	Context               ActivityContext          `json:"context"`
	CustomRequest         string                   `json:"customRequest"`
	ExistingActivityNames []string                 `json:"existingActivityNames"`
	Slot                  *ActivitySlot            `json:"slot"`
}

type RemoveActivityRequest struct {
	ActivitySlot
}
