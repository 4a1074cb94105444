package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gmc/bootstrap/probe"
	"github.com/gmc/bootstrap/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Instance  string            `json:"instance,omitempty"`
	Network   string            `json:"network,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	probers      []probe.Prober
	probeTimeout time.Duration
	instanceID   string
	network      string
	logger       *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(probers []probe.Prober, probeTimeout time.Duration, instanceID, network string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		probers:      probers,
		probeTimeout: probeTimeout,
		instanceID:   instanceID,
		network:      network,
		logger:       logger,
	}
}

// HandleHealth handles GET /healthz
// Liveness check - always returns 200 if the process is running
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Instance:  h.instanceID,
		Network:   h.network,
	}

	_ = utils.WriteOK(w, response)
}

// HandleReadiness handles GET /readyz
// Readiness check - re-probes every declared dependency within the probe
// timeout and returns 503 unless all of them respond.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	report := probe.ValidateConnectivity(r.Context(), h.probeTimeout, h.probers...)

	checks := make(map[string]string, len(report.Results))
	for _, res := range report.Results {
		if res.Healthy() {
			checks[res.Dependency] = "healthy"
		} else {
			h.logger.Warn("dependency health check failed",
				zap.String("dependency", res.Dependency),
				zap.String("addr", res.Addr),
				zap.Duration("duration", res.Duration),
				zap.Error(res.Err))
			checks[res.Dependency] = "unhealthy"
		}
	}

	if !report.Healthy() {
		err := utils.WriteServiceUnavailable(w, "one or more dependencies are unreachable", map[string]interface{}{
			"checks":   checks,
			"instance": h.instanceID,
			"network":  h.network,
		})
		if err != nil {
			h.logger.Error("failed to write readiness response", zap.Error(err))
		}
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Instance:  h.instanceID,
		Network:   h.network,
		Checks:    checks,
	}

	if err := utils.WriteOK(w, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
