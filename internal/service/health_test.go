package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	name  string
	err   error
	delay time.Duration
}

func (p *fakeProbe) Name() string { return p.name }

func (p *fakeProbe) HealthCheck(ctx context.Context) error {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.err
}

func TestHealthCheck(t *testing.T) {
	t.Run("all probes passing is healthy", func(t *testing.T) {
		svc := NewHealthService(
			&fakeProbe{name: "deepseek"},
			&fakeProbe{name: "openai"},
		)

		report := svc.Check(context.Background())
		assert.Equal(t, HealthStatusHealthy, report.Status)
		require.Len(t, report.Services, 2)
		for _, s := range report.Services {
			assert.Equal(t, "ok", s.Status)
			assert.Empty(t, s.Error)
		}
	})

	t.Run("partial failure is degraded", func(t *testing.T) {
		svc := NewHealthService(
			&fakeProbe{name: "deepseek"},
			&fakeProbe{name: "openai", err: errors.New("status 503")},
		)

		report := svc.Check(context.Background())
		assert.Equal(t, HealthStatusDegraded, report.Status)
	})

	t.Run("total failure is unhealthy", func(t *testing.T) {
		svc := NewHealthService(
			&fakeProbe{name: "deepseek", err: errors.New("down")},
			&fakeProbe{name: "openai", err: errors.New("down")},
		)

		report := svc.Check(context.Background())
		assert.Equal(t, HealthStatusUnhealthy, report.Status)
		for _, s := range report.Services {
			assert.Equal(t, "error", s.Status)
			assert.NotEmpty(t, s.Error)
		}
	})

	t.Run("no probes is trivially healthy", func(t *testing.T) {
		svc := NewHealthService()
		report := svc.Check(context.Background())
		assert.Equal(t, HealthStatusHealthy, report.Status)
	})

	t.Run("probes run in parallel", func(t *testing.T) {
		svc := NewHealthService(
			&fakeProbe{name: "a", delay: 100 * time.Millisecond},
			&fakeProbe{name: "b", delay: 100 * time.Millisecond},
			&fakeProbe{name: "c", delay: 100 * time.Millisecond},
		)

		start := time.Now()
		report := svc.Check(context.Background())
		elapsed := time.Since(start)

		assert.Equal(t, HealthStatusHealthy, report.Status)
		assert.Less(t, elapsed, 250*time.Millisecond, "probes should not run serially")
	})

	t.Run("report preserves probe order and latency", func(t *testing.T) {
		svc := NewHealthService(
			&fakeProbe{name: "first"},
			&fakeProbe{name: "second", delay: 20 * time.Millisecond},
		)

		report := svc.Check(context.Background())
		require.Len(t, report.Services, 2)
		assert.Equal(t, "first", report.Services[0].Service)
		assert.Equal(t, "second", report.Services[1].Service)
		assert.GreaterOrEqual(t, report.Services[1].LatencyMS, int64(20))
		assert.False(t, report.CheckedAt.IsZero())
	})
}
