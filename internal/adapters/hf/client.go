// internal/adapters/hf/client.go
package hf

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_refiner/internal/adapters/observability"
	"review_refiner/internal/domain"
)

// Client talks to the HuggingFace Inference API over plain HTTPS JSON.
type Client struct {
	base  string
	hc    *http.Client
	token string
	rl    *rate.Limiter
}

func New(base, token string, rps int, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		hc:    &http.Client{Timeout: timeout},
		token: token,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ---- Public API: one method per inference task ----

type inferRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    *options       `json:"options,omitempty"`
}

type options struct {
	UseCache     bool `json:"use_cache"`
	WaitForModel bool `json:"wait_for_model"`
}

type labelScoreDTO struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify runs text-classification and returns the ranked candidates for
// the input. Truncation is always on: the rating models reject over-length
// sequences otherwise.
func (c *Client) Classify(ctx context.Context, model, text string) ([]domain.LabelScore, error) {
	req := inferRequest{
		Inputs:     text,
		Parameters: map[string]any{"truncation": true},
	}
	var raw json.RawMessage
	if err := c.post(ctx, "text-classification", model, req, &raw); err != nil {
		return nil, err
	}
	// The API nests single-input results one level deep; older deployments
	// return a flat list. Accept both.
	var nested [][]labelScoreDTO
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		return toLabelScores(nested[0]), nil
	}
	var flat []labelScoreDTO
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("hf: decode classification payload: %w", err)
	}
	return toLabelScores(flat), nil
}

func toLabelScores(in []labelScoreDTO) []domain.LabelScore {
	out := make([]domain.LabelScore, len(in))
	for i, d := range in {
		out[i] = domain.LabelScore{Label: d.Label, Score: d.Score}
	}
	return out
}

type entityDTO struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

// LabelSpans runs token-classification with simple aggregation, so
// contiguous same-type spans come back as single entities.
func (c *Client) LabelSpans(ctx context.Context, model, text string) ([]domain.Entity, error) {
	req := inferRequest{
		Inputs:     text,
		Parameters: map[string]any{"aggregation_strategy": "simple"},
	}
	var dtos []entityDTO
	if err := c.post(ctx, "token-classification", model, req, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Entity, len(dtos))
	for i, d := range dtos {
		out[i] = domain.Entity{Group: d.EntityGroup, Word: d.Word, Score: d.Score}
	}
	return out, nil
}

type generatedDTO struct {
	GeneratedText string `json:"generated_text"`
}

// GenParams are the decoding parameters for text2text generation.
type GenParams struct {
	MaxLength int  `json:"max_length"`
	NumBeams  int  `json:"num_beams"`
	DoSample  bool `json:"do_sample"`
}

// Generate runs text2text-generation and returns the candidate texts in
// rank order.
func (c *Client) Generate(ctx context.Context, model, text string, p GenParams) ([]string, error) {
	req := inferRequest{
		Inputs: text,
		Parameters: map[string]any{
			"max_length": p.MaxLength,
			"num_beams":  p.NumBeams,
			"do_sample":  p.DoSample,
		},
	}
	var dtos []generatedDTO
	if err := c.post(ctx, "text2text-generation", model, req, &dtos); err != nil {
		return nil, err
	}
	out := make([]string, len(dtos))
	for i, d := range dtos {
		out[i] = d.GeneratedText
	}
	return out, nil
}

// Warm issues a throwaway inference with wait_for_model so the hosted model
// is resident before real traffic arrives. Blocks for the full cold start.
func (c *Client) Warm(ctx context.Context, model string) error {
	req := inferRequest{
		Inputs:  "hello",
		Options: &options{UseCache: true, WaitForModel: true},
	}
	var raw json.RawMessage
	return c.post(ctx, "warmup", model, req, &raw)
}

// ---- Internals ----

var (
	ErrNotFound     = errors.New("hf: model not found")
	ErrUnauthorized = errors.New("hf: unauthorized")
	ErrForbidden    = errors.New("hf: forbidden")
	ErrModelLoading = errors.New("hf: model still loading")
)

// post sends one inference request with client-side rate limiting, retries,
// and JSON decode into out. Retries on 429 and transient 5xx; a 503 carrying
// an estimated_time hint (model cold start) waits that long before retrying.
func (c *Client) post(ctx context.Context, task, model string, body any, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := c.base + "/models/" + model

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "review-refiner/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			observability.ObserveInference(task, model, 0, time.Since(start))
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveInference(task, model, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// 503 while a model loads carries {"error":..., "estimated_time": N}.
			// Prefer that hint, then Retry-After, then exponential backoff.
			wait, loading := loadingWait(resp)
			if wait == 0 {
				wait = retryAfter(resp)
			}
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			if loading {
				lastErr = fmt.Errorf("%w: %s", ErrModelLoading, model)
			} else {
				lastErr = fmt.Errorf("hf: remote %d", resp.StatusCode)
			}
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("hf: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// loadingWait parses the model-loading body of a 503. The second return
// reports whether the response was a loading notice at all.
func loadingWait(resp *http.Response) (time.Duration, bool) {
	if resp.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}
	var body struct {
		Error         string  `json:"error"`
		EstimatedTime float64 `json:"estimated_time"`
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(b, &body); err != nil {
		return 0, false
	}
	if !strings.Contains(strings.ToLower(body.Error), "loading") {
		return 0, false
	}
	if body.EstimatedTime <= 0 {
		return 0, true
	}
	// Cap the wait so one giant estimate cannot eat the whole deadline.
	d := time.Duration(body.EstimatedTime * float64(time.Second))
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d, true
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
