package hf

import (
	"context"
	"fmt"
	"time"

	"review_refiner/internal/adapters/observability"
	"review_refiner/internal/app"
	"review_refiner/internal/domain"
)

// Bound capabilities: a client plus the fixed per-model configuration the
// pipeline calls through. These are what the model registry hands out.

type Sentiment struct {
	c     *Client
	model string
}

func (s *Sentiment) Classify(ctx context.Context, text string) ([]domain.LabelScore, error) {
	return s.c.Classify(ctx, s.model, text)
}

type Aspects struct {
	c     *Client
	model string
}

func (a *Aspects) LabelSpans(ctx context.Context, text string) ([]domain.Entity, error) {
	return a.c.LabelSpans(ctx, a.model, text)
}

// paraphraseParams is the fixed decoding configuration: longest output 256
// tokens, beam search width 4, deterministic decoding.
var paraphraseParams = GenParams{MaxLength: 256, NumBeams: 4, DoSample: false}

type Paraphrase struct {
	c     *Client
	model string
}

func (p *Paraphrase) Paraphrase(ctx context.Context, text string) (string, error) {
	cands, err := p.c.Generate(ctx, p.model, text, paraphraseParams)
	if err != nil {
		return "", err
	}
	if len(cands) == 0 {
		return "", fmt.Errorf("hf: %s returned no candidates", p.model)
	}
	return cands[0], nil
}

// Models names the hosted model backing each capability kind.
type Models struct {
	Rating     string
	Aspect     string
	Paraphrase string
}

// NewBuilder returns the registry builder that binds each capability kind to
// its hosted model. With warm set, construction blocks until the model is
// resident, so the cold-start cost lands on the first get instead of the
// first user request.
func NewBuilder(c *Client, m Models, warm bool) app.Builder {
	return func(ctx context.Context, k app.Kind) (any, error) {
		start := time.Now()
		var model string
		var handle any
		switch k {
		case app.KindSentiment:
			model = m.Rating
			handle = &Sentiment{c: c, model: model}
		case app.KindAspects:
			model = m.Aspect
			handle = &Aspects{c: c, model: model}
		case app.KindParaphrase:
			model = m.Paraphrase
			handle = &Paraphrase{c: c, model: model}
		default:
			return nil, fmt.Errorf("hf: unknown capability kind %q", k)
		}
		if warm {
			if err := c.Warm(ctx, model); err != nil {
				return nil, err
			}
		}
		observability.ObserveModelLoad(string(k), time.Since(start))
		return handle, nil
	}
}
