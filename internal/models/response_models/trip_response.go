package response_models

type DestinationValidation struct {
	IsValid       bool    `json:"isValid"`
	FormattedName *string `json:"formattedName"`
}

type SmartQuestion struct {
	ID          string `json:"id"`
	Emoji       string `json:"emoji"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type PreviewResponse struct {
	ID          string `json:"id"`
	TotalDays   int    `json:"totalDays"`
	PreviewDays int    `json:"previewDays"`
}

type TripResponse struct {
	Plan        Itinerary         `json:"plan"`
	Images      map[string]string `json:"images"`
	Unlocked    bool              `json:"unlocked"`
	TotalDays   int               `json:"totalDays"`
	Destination string            `json:"destination,omitempty"`
	StartDate   string            `json:"startDate,omitempty"`
	EndDate     string            `json:"endDate,omitempty"`
}

type UnlockResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Plan    *Itinerary        `json:"plan,omitempty"`
	Images  map[string]string `json:"images,omitempty"`
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}
