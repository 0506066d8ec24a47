package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/showbook/internal/version"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness endpoints.
type HealthHandler struct {
	startTime time.Time
	db        Pinger
}

// NewHealthHandler creates a new health handler. db may be nil, in which
// case readiness reports the database as not configured.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), db: db}
}

// Register registers the health routes with the API.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getLivez",
		Method:      "GET",
		Path:        "/livez",
		Summary:     "Liveness probe",
		Tags:        []string{"System"},
	}, h.GetLivez)

	huma.Register(api, huma.Operation{
		OperationID: "getReadyz",
		Method:      "GET",
		Path:        "/readyz",
		Summary:     "Readiness probe",
		Description: "Reports ready once the database answers a ping",
		Tags:        []string{"System"},
	}, h.GetReadyz)
}

// LivezOutput is the output for the liveness probe.
type LivezOutput struct {
	Body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
		Uptime  string `json:"uptime"`
	}
}

// GetLivez reports that the process is serving.
func (h *HealthHandler) GetLivez(ctx context.Context, input *struct{}) (*LivezOutput, error) {
	out := &LivezOutput{}
	out.Body.Status = "ok"
	out.Body.Version = version.Version
	out.Body.Uptime = time.Since(h.startTime).Truncate(time.Second).String()
	return out, nil
}

// ReadyzOutput is the output for the readiness probe.
type ReadyzOutput struct {
	Status int
	Body   struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
}

// GetReadyz reports readiness; it responds 503 while the database is
// unreachable.
func (h *HealthHandler) GetReadyz(ctx context.Context, input *struct{}) (*ReadyzOutput, error) {
	out := &ReadyzOutput{Status: http.StatusOK}
	out.Body.Status = "ready"
	out.Body.Components = map[string]string{"database": "ok"}

	switch {
	case h.db == nil:
		out.Body.Components["database"] = "not_configured"
	default:
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.db.Ping(pingCtx); err != nil {
			out.Body.Components["database"] = err.Error()
		}
	}

	if out.Body.Components["database"] != "ok" {
		out.Status = http.StatusServiceUnavailable
		out.Body.Status = "not_ready"
	}
	return out, nil
}
