//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"

	"review_refiner/internal/adapters/hf"
	httpserver "review_refiner/internal/adapters/http_server"
	redisad "review_refiner/internal/adapters/redis"
	"review_refiner/internal/app"
	"review_refiner/internal/shared"
)

// stubHF serves the three model routes of the inference API, counting calls
// so the cache assertion below can prove the second request never hit it.
func stubHF(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	cfg := shared.Load()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		model := strings.TrimPrefix(r.URL.Path, "/models/")
		w.Header().Set("Content-Type", "application/json")
		switch model {
		case cfg.RatingModel:
			_ = json.NewEncoder(w).Encode([][]map[string]any{{{"label": "4 stars", "score": 0.91}}})
		case cfg.AspectModel:
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"entity_group": "STAFF", "word": "staff", "score": 0.95},
				{"entity_group": "LOCATION", "word": "location", "score": 0.93},
				{"entity_group": "FOOD", "word": "breakfast buffet", "score": 0.97},
			})
		case cfg.ParaphraseModel:
			_ = json.NewEncoder(w).Encode([]map[string]any{{"generated_text": " Great stay overall. "}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestHTTP_EndToEnd_AnalyzeWithRedisCache(t *testing.T) {
	// Start isolated redis container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7.2",
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	addr := fmt.Sprintf("127.0.0.1:%s", resource.GetPort("6379/tcp"))
	if err := pool.Retry(func() error {
		return redis.NewClient(&redis.Options{Addr: addr}).Ping(context.Background()).Err()
	}); err != nil {
		t.Fatalf("connect redis: %v", err)
	}

	var hfCalls int32
	stub := stubHF(t, &hfCalls)
	defer stub.Close()

	// Full wiring against the stub and the container
	cfg := shared.Load()
	client := hf.New(stub.URL, "", 100, 5*time.Second)
	models := hf.Models{Rating: cfg.RatingModel, Aspect: cfg.AspectModel, Paraphrase: cfg.ParaphraseModel}
	registry := app.NewRegistry(hf.NewBuilder(client, models, false))
	cache := redisad.New(addr, "", 0)
	svc := app.NewAnalysisService(app.NewAnalyzer(registry), cache, time.Minute)

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{S: svc})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	body := `{"text":"The hotel was in a fantastic location near the city center. The staff were incredibly friendly and helpful, and the breakfast buffet had a great variety of fresh food. However, the room was a bit noisy at night.","hotel_name":"E2E Hotel"}`

	post := func() map[string]any {
		t.Helper()
		res, err := http.Post(ts.URL+"/v1/reviews/analyze", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("status %d", res.StatusCode)
		}
		var out map[string]any
		if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	out := post()
	if out["rating"] != float64(4) || out["stars"] != "★★★★☆" {
		t.Fatalf("unexpected body: %+v", out)
	}
	if out["refined_text"] != "Great stay overall." {
		t.Fatalf("unexpected refined text: %+v", out["refined_text"])
	}
	topics, _ := out["topics"].([]any)
	if len(topics) != 3 || topics[0] != "Food & Beverage" {
		t.Fatalf("unexpected topics: %+v", topics)
	}

	// Second identical request must be served from redis, not inference
	before := atomic.LoadInt32(&hfCalls)
	out2 := post()
	if out2["rating"] != float64(4) {
		t.Fatalf("unexpected cached body: %+v", out2)
	}
	if after := atomic.LoadInt32(&hfCalls); after != before {
		t.Fatalf("expected cached response, inference calls went %d -> %d", before, after)
	}
}
