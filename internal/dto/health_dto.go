package dto

// Capability status values reported by the health endpoint.
const (
	StatusHealthy       = "healthy"
	StatusNotConfigured = "not_configured"
	StatusError         = "error"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

type CollectionStatusDTO struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

type CollectionsResponse struct {
	Collections []CollectionStatusDTO `json:"collections"`
}
