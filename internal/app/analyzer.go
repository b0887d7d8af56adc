package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"review_refiner/internal/domain"
)

// Analyzer runs the three-stage review analysis pipeline: star rating,
// topic extraction, and paraphrasing. The stages share no data and run
// concurrently; all three must succeed or the whole call fails, so a
// partial result is never returned.
type Analyzer struct {
	models *Registry
}

func NewAnalyzer(r *Registry) *Analyzer { return &Analyzer{models: r} }

// Analyze requires only non-empty text. The ≥10-word minimum is a
// presentation-layer precondition, not the pipeline's.
func (a *Analyzer) Analyze(ctx context.Context, in domain.ReviewInput) (domain.AnalysisResult, error) {
	if strings.TrimSpace(in.Text) == "" {
		return domain.AnalysisResult{}, domain.ErrEmptyReview
	}

	var res domain.AnalysisResult
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := a.rate(ctx, in.Text)
		if err != nil {
			return fmt.Errorf("rating stage: %w", err)
		}
		res.Rating = r
		return nil
	})
	g.Go(func() error {
		ts, err := a.topics(ctx, in.Text)
		if err != nil {
			return fmt.Errorf("aspect stage: %w", err)
		}
		res.Topics = ts
		return nil
	})
	g.Go(func() error {
		rt, err := a.refine(ctx, in.Text)
		if err != nil {
			return fmt.Errorf("paraphrase stage: %w", err)
		}
		res.RefinedText = rt
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.AnalysisResult{}, err
	}
	return res, nil
}

func (a *Analyzer) rate(ctx context.Context, text string) (int, error) {
	clf, err := a.models.Sentiment(ctx)
	if err != nil {
		return 0, err
	}
	ranked, err := clf.Classify(ctx, text)
	if err != nil {
		return 0, err
	}
	if len(ranked) == 0 {
		return 0, errors.New("classifier returned no labels")
	}
	return starRating(ranked[0].Label), nil
}

func (a *Analyzer) topics(ctx context.Context, text string) ([]domain.Topic, error) {
	lab, err := a.models.Aspects(ctx)
	if err != nil {
		return nil, err
	}
	ents, err := lab.LabelSpans(ctx, text)
	if err != nil {
		return nil, err
	}
	return topicsFromEntities(ents), nil
}

func (a *Analyzer) refine(ctx context.Context, text string) (string, error) {
	par, err := a.models.Paraphraser(ctx)
	if err != nil {
		return "", err
	}
	gen, err := par.Paraphrase(ctx, text)
	if err != nil {
		return "", err
	}
	return refineText(gen), nil
}
