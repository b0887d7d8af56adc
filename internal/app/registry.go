package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"review_refiner/internal/domain"
)

// Kind identifies one inference capability held by the registry.
type Kind string

const (
	KindSentiment  Kind = "sentiment"
	KindAspects    Kind = "aspects"
	KindParaphrase Kind = "paraphrase"
)

// Builder constructs the handle for one capability kind. Construction may
// block for a long time (hosted model cold start).
type Builder func(ctx context.Context, k Kind) (any, error)

// Registry lazily builds and memoizes one handle per capability kind.
// Handles live for the process lifetime and are never refreshed. Under
// concurrent first use, singleflight guarantees exactly one construction per
// kind; the losers of the race block and share the winner's handle.
type Registry struct {
	build Builder

	mu      sync.Mutex
	handles map[Kind]any
	sf      singleflight.Group
}

func NewRegistry(b Builder) *Registry {
	return &Registry{build: b, handles: make(map[Kind]any)}
}

func (r *Registry) get(ctx context.Context, k Kind) (any, error) {
	r.mu.Lock()
	if h, ok := r.handles[k]; ok {
		r.mu.Unlock()
		return h, nil
	}
	r.mu.Unlock()

	h, err, _ := r.sf.Do(string(k), func() (any, error) {
		h, err := r.build(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrCapabilityUnavailable, k, err)
		}
		r.mu.Lock()
		r.handles[k] = h
		r.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *Registry) Sentiment(ctx context.Context) (domain.SentimentClassifier, error) {
	h, err := r.get(ctx, KindSentiment)
	if err != nil {
		return nil, err
	}
	c, ok := h.(domain.SentimentClassifier)
	if !ok {
		return nil, fmt.Errorf("registry: %s handle is %T, not a classifier", KindSentiment, h)
	}
	return c, nil
}

func (r *Registry) Aspects(ctx context.Context) (domain.AspectLabeler, error) {
	h, err := r.get(ctx, KindAspects)
	if err != nil {
		return nil, err
	}
	l, ok := h.(domain.AspectLabeler)
	if !ok {
		return nil, fmt.Errorf("registry: %s handle is %T, not a labeler", KindAspects, h)
	}
	return l, nil
}

func (r *Registry) Paraphraser(ctx context.Context) (domain.Paraphraser, error) {
	h, err := r.get(ctx, KindParaphrase)
	if err != nil {
		return nil, err
	}
	p, ok := h.(domain.Paraphraser)
	if !ok {
		return nil, fmt.Errorf("registry: %s handle is %T, not a paraphraser", KindParaphrase, h)
	}
	return p, nil
}
