package response

import (
	"net/http"
	"time"
)

// HealthStatus represents system health status
type HealthStatus struct {
	Status      string                 `json:"status"`
	Timestamp   int64                  `json:"timestamp"`
	Version     string                 `json:"version,omitempty"`
	Environment string                 `json:"environment,omitempty"`
	Uptime      float64                `json:"uptime_seconds,omitempty"`
	Services    map[string]interface{} `json:"services,omitempty"`
}

// NewHealthStatus starts a healthy report; AddService downgrades it
func NewHealthStatus(environment string, startedAt time.Time) *HealthStatus {
	return &HealthStatus{
		Status:      "healthy",
		Timestamp:   time.Now().Unix(),
		Environment: environment,
		Uptime:      time.Since(startedAt).Seconds(),
		Services:    make(map[string]interface{}),
	}
}

// AddService records a dependency check. A failing critical dependency
// makes the report unhealthy, a failing optional one degrades it.
func (h *HealthStatus) AddService(name string, err error, critical bool) {
	if err == nil {
		h.Services[name] = map[string]interface{}{"status": "healthy"}
		return
	}

	h.Services[name] = map[string]interface{}{
		"status": "unhealthy",
		"error":  err.Error(),
	}
	switch {
	case critical:
		h.Status = "unhealthy"
	case h.Status == "healthy":
		h.Status = "degraded"
	}
}

// WriteHealthCheck writes a health check response; anything but unhealthy
// is served as 200
func (b *Builder) WriteHealthCheck(w http.ResponseWriter, r *http.Request, health *HealthStatus) {
	code := http.StatusOK
	if health.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	response := b.Success(r.Context(), health)
	response.Success = code == http.StatusOK
	b.WriteJSON(w, r, response, code)
}
