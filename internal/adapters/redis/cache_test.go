package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "review_refiner/internal/adapters/redis"
	"review_refiner/internal/domain"
)

func TestCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	want := domain.AnalysisResult{
		Rating:      4,
		Topics:      []domain.Topic{domain.TopicFoodBeverage, domain.TopicStaffService},
		RefinedText: "Great stay overall.",
	}

	// miss before set
	var out domain.AnalysisResult
	ok, err := c.Get(ctx, "analysis:abc", &out)
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "analysis:abc", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err = c.Get(ctx, "analysis:abc", &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if out.Rating != want.Rating || out.RefinedText != want.RefinedText || len(out.Topics) != 2 {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	if err := c.Del(ctx, "analysis:abc"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = c.Get(ctx, "analysis:abc", &out)
	if ok {
		t.Fatalf("expected miss after del")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", domain.AnalysisResult{Rating: 3}, 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Second)

	var out domain.AnalysisResult
	ok, _ := c.Get(ctx, "k", &out)
	if ok {
		t.Fatalf("expected expiry")
	}
}
