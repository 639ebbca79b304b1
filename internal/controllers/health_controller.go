package controllers

import (
	"fmt"
	"net/http"
	"time"
	"tripgen/internal/llm"
	"tripgen/internal/repository"
	"tripgen/internal/statistic/interfaces"
)

type HealthController struct {
	status    interfaces.StatusInterface
	repo      repository.PlanRepositoryInterface
	client    llm.ClientInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string           `json:"status"`
	Uptime        string           `json:"uptime"`
	UptimeSeconds float64          `json:"uptime_seconds"`
	Store         string           `json:"store"`
	Provider      string           `json:"provider"`
	Plans         map[string]int64 `json:"plans"`
	RefreshedAt   *time.Time       `json:"refreshed_at,omitempty"`
}

// Health reports the scheduler's last snapshot and never touches the store.
func (hc *HealthController) Health(w http.ResponseWriter, _ *http.Request) {
	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Store:         "ok",
		Provider:      hc.client.Provider(),
		Plans:         hc.status.Totals(),
	}

	switch {
	case !hc.repo.Enabled():
		resp.Store = "disabled"
	case !hc.status.StoreHealthy():
		resp.Store = "unreachable"
		resp.Status = "degraded"
	}
	if refreshed := hc.status.LastRefresh(); !refreshed.IsZero() {
		resp.RefreshedAt = &refreshed
	}

	writeJSON(w, http.StatusOK, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(status interfaces.StatusInterface, repo repository.PlanRepositoryInterface, client llm.ClientInterface) *HealthController {
	return &HealthController{
		status:    status,
		repo:      repo,
		client:    client,
		startTime: time.Now(),
	}
}
