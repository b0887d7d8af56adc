package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"review_refiner/internal/adapters/hf"
	server "review_refiner/internal/adapters/http_server"
	"review_refiner/internal/adapters/observability"
	redisad "review_refiner/internal/adapters/redis"
	"review_refiner/internal/app"
	"review_refiner/internal/domain"
	"review_refiner/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// deps
	client := hf.New(cfg.HFBase, cfg.HFToken, cfg.InferRPS, cfg.InferTimeout)
	models := hf.Models{Rating: cfg.RatingModel, Aspect: cfg.AspectModel, Paraphrase: cfg.ParaphraseModel}
	registry := app.NewRegistry(hf.NewBuilder(client, models, cfg.WarmOnInit))

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	} else {
		log.Warn().Msg("REDIS_ADDR is empty; result caching disabled")
	}
	svc := app.NewAnalysisService(app.NewAnalyzer(registry), cache, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: svc})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
