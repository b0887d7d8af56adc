package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"review_refiner/internal/domain"
)

// AnalysisService fronts the pipeline with a TTL result cache keyed by the
// review text. The cache holds derived output only and expires; nothing
// durable is ever written. A nil cache disables caching entirely.
type AnalysisService struct {
	pipe     *Analyzer
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewAnalysisService(p *Analyzer, c domain.Cache, ttl time.Duration) *AnalysisService {
	return &AnalysisService{pipe: p, cache: c, cacheTTL: ttl}
}

func (s *AnalysisService) Analyze(ctx context.Context, in domain.ReviewInput) (domain.AnalysisResult, error) {
	key := analysisKey(in.Text)
	if s.cache != nil {
		var cached domain.AnalysisResult
		if ok, _ := s.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	out, err := s.pipe.Analyze(ctx, in)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func analysisKey(text string) string {
	sum := sha1.Sum([]byte(text))
	return "analysis:" + hex.EncodeToString(sum[:])
}
