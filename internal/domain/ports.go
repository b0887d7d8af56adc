package domain

import "context"

// LabelScore is one ranked candidate from the sentiment classifier.
type LabelScore struct {
	Label string
	Score float64
}

// Entity is one aggregated span from the span-labeling capability.
// Group is the raw category label (e.g. "FOOD", "STAFF", "VIEW").
type Entity struct {
	Group string
	Word  string
	Score float64
}

type SentimentClassifier interface {
	Classify(ctx context.Context, text string) ([]LabelScore, error)
}

type AspectLabeler interface {
	LabelSpans(ctx context.Context, text string) ([]Entity, error)
}

type Paraphraser interface {
	Paraphrase(ctx context.Context, text string) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
