package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"payment-event-pipeline/internal/core/ports"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// healthPingTimeout bounds each dependency ping.
const healthPingTimeout = 2 * time.Second

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthCheck handles GET /health. Dependencies are pinged in parallel and
// any failure reports the service as degraded with 503.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps := pingAll(c.Request.Context(), checkers)

		status, code := "healthy", http.StatusOK
		for _, d := range deps {
			if d.Status != "healthy" {
				status, code = "degraded", http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

func pingAll(ctx context.Context, checkers []ports.HealthChecker) map[string]dependencyStatus {
	var (
		mu   sync.Mutex
		deps = make(map[string]dependencyStatus, len(checkers))
		g    errgroup.Group
	)
	for _, checker := range checkers {
		g.Go(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
			defer cancel()

			st := dependencyStatus{Status: "healthy"}
			if err := checker.Ping(pingCtx); err != nil {
				st = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			}
			mu.Lock()
			deps[checker.Name()] = st
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return deps
}
