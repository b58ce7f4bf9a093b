package main

// LocationsResponse lists the monitored structures
type LocationsResponse struct {
	Count     int      `json:"count" example:"6"`
	Locations []string `json:"locations"`
}

// HealthResponse reports service liveness and which assessment strategies are available
type HealthResponse struct {
	Status              string `json:"status" example:"ok"`
	ClassifierAvailable bool   `json:"classifier_available" example:"true"`
	LLMConfigured       bool   `json:"llm_configured" example:"false"`
	FeedEnabled         bool   `json:"feed_enabled" example:"false"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"assessment failed"`
	Message string `json:"message,omitempty" example:"llm call failed with status 500: upstream error"`
}
