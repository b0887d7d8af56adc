package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	HFBase  string
	HFToken string

	RatingModel     string
	AspectModel     string
	ParaphraseModel string

	InferTimeout time.Duration
	InferRPS     int
	WarmOnInit   bool
	WarmWorkers  int

	RedisAddr string
	RedisPass string
	RedisDB   int
	CacheTTL  time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),

		HFBase:  env("HF_BASE_URL", "https://api-inference.huggingface.co"),
		HFToken: env("HF_API_TOKEN", ""),

		RatingModel:     env("HF_RATING_MODEL", "LiYuan/amazon-review-sentiment-analysis"),
		AspectModel:     env("HF_ASPECT_MODEL", "dvquys/ner-finetune-restaurant-reviews-aspects"),
		ParaphraseModel: env("HF_PARAPHRASE_MODEL", "humarin/chatgpt_paraphraser_on_T5_base"),

		InferTimeout: time.Duration(atoi("INFER_TIMEOUT_SECONDS", 60)) * time.Second,
		InferRPS:     atoi("INFER_RPS", 5),
		WarmOnInit:   env("WARM_ON_INIT", "") == "true",
		WarmWorkers:  atoi("WARM_WORKERS", 3),

		RedisAddr: env("REDIS_ADDR", "localhost:6379"),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.HFToken == "" {
		log.Warn().Msg("HF_API_TOKEN is empty; anonymous inference is heavily rate limited")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
