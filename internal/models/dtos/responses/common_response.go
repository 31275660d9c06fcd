package responses

// APIResponse is the envelope of every JSON endpoint except the import result,
// which is flat.
type APIResponse[T any] struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Data  *T     `json:"data,omitempty"`
}

// ImportFailure is the body of a failed import in JSON mode.
type ImportFailure struct {
	OK        bool     `json:"ok"`
	Error     string   `json:"error"`
	Completed []string `json:"completed,omitempty"`
}

// ServiceStatus is the health of one backing service.
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

// HealthCheckResponse is the body of GET /healthCheck.
type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}
