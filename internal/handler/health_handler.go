package handler

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/schedmate-api/internal/config"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

const probeTimeout = 2 * time.Second

// Probe checks one backing dependency such as the database or cache.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthCheck runs every probe concurrently. Any failing probe turns the
// status to "degraded" and the response to 503.
func HealthCheck(cfg config.Config, probes ...Probe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		if len(probes) > 0 {
			payload.Dependencies = runProbes(c.UserContext(), probes)
			for _, state := range payload.Dependencies {
				if state != "ok" {
					payload.Status = "degraded"
				}
			}
		}

		if payload.Status != "ok" {
			return utils.SendSuccessWithStatus(c, fiber.StatusServiceUnavailable, "service degraded", payload)
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}

func runProbes(ctx context.Context, probes []Probe) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var mu sync.Mutex
	results := make(map[string]string, len(probes))

	var group errgroup.Group
	for _, probe := range probes {
		group.Go(func() error {
			state := "ok"
			if err := probe.Check(ctx); err != nil {
				state = "down"
			}
			mu.Lock()
			results[probe.Name] = state
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return results
}
