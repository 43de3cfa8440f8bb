package service

import (
	"context"
	"sync"
	"time"
)

// Aggregate health states reported by the health endpoint.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"
)

// HealthProbe is anything that can report its own liveness.
type HealthProbe interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// ProbeResult is the outcome of one provider liveness check.
type ProbeResult struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthReport aggregates all probe results.
type HealthReport struct {
	Status    string        `json:"status"`
	Services  []ProbeResult `json:"services"`
	CheckedAt time.Time     `json:"checked_at"`
}

// HealthService probes the configured providers in parallel and reports
// an aggregate status for uptime monitoring.
type HealthService struct {
	probes  []HealthProbe
	timeout time.Duration
}

// NewHealthService creates a HealthService over the given probes.
func NewHealthService(probes ...HealthProbe) *HealthService {
	return &HealthService{probes: probes, timeout: 10 * time.Second}
}

// Check runs all probes concurrently. Aggregate status is healthy when
// every probe passes, unhealthy when none do, degraded otherwise.
func (s *HealthService) Check(ctx context.Context) *HealthReport {
	report := &HealthReport{
		Services:  make([]ProbeResult, len(s.probes)),
		CheckedAt: time.Now(),
	}

	var wg sync.WaitGroup
	for i, probe := range s.probes {
		wg.Add(1)
		go func(i int, probe HealthProbe) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			start := time.Now()
			err := probe.HealthCheck(probeCtx)
			result := ProbeResult{
				Service:   probe.Name(),
				Status:    "ok",
				LatencyMS: time.Since(start).Milliseconds(),
			}
			if err != nil {
				result.Status = "error"
				result.Error = err.Error()
			}
			report.Services[i] = result
		}(i, probe)
	}
	wg.Wait()

	healthy := 0
	for _, r := range report.Services {
		if r.Status == "ok" {
			healthy++
		}
	}
	switch {
	case len(report.Services) == 0 || healthy == len(report.Services):
		report.Status = HealthStatusHealthy
	case healthy == 0:
		report.Status = HealthStatusUnhealthy
	default:
		report.Status = HealthStatusDegraded
	}

	return report
}
