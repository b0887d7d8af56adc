package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_refiner/internal/adapters/hf"
	"review_refiner/internal/adapters/observability"
	"review_refiner/internal/shared"
)

// Pre-warms the hosted models so the first real request does not pay the
// cold-start cost. Safe to run at deploy time or from a cron.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.HFBase).
		Int("workers", cfg.WarmWorkers).
		Msg("warmup starting")

	// warm-up calls wait out the full model load; give them room
	client := hf.New(cfg.HFBase, cfg.HFToken, cfg.InferRPS, 5*time.Minute)

	models := []string{cfg.RatingModel, cfg.AspectModel, cfg.ParaphraseModel}
	sem := semaphore.NewWeighted(int64(cfg.WarmWorkers))
	var wg sync.WaitGroup

	for _, m := range models {
		m := m

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(model string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			start := time.Now()
			if err := client.Warm(ctx, model); err != nil {
				log.Warn().Str("model", model).Err(err).Msg("warmup failed")
				return
			}
			log.Info().Str("model", model).Dur("took", time.Since(start)).Msg("warmup ok")
		}(m)
	}

	wg.Wait()
	log.Info().Msg("warmup completed")
}
