// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"review_refiner/internal/app"
	"review_refiner/internal/domain"
)

// minWords is the presentation-layer precondition: reviews shorter than this
// never reach the pipeline.
const minWords = 10

type Handlers struct{ S *app.AnalysisService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.formPage)
	s.mux.Post("/", h.formSubmit)
	s.mux.Post("/v1/reviews/analyze", h.analyze)
}

type analyzeRequest struct {
	Text      string `json:"text"`
	HotelName string `json:"hotel_name"`
	TripType  string `json:"trip_type"`
	StayYear  string `json:"stay_year"`
}

type analyzeResponse struct {
	Rating      int            `json:"rating"`
	Stars       string         `json:"stars"`
	Topics      []domain.Topic `json:"topics"`
	RefinedText string         `json:"refined_text"`
	HotelName   string         `json:"hotel_name,omitempty"`
	TripType    string         `json:"trip_type,omitempty"`
	StayYear    string         `json:"stay_year,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func wordCount(s string) int { return len(strings.Fields(s)) }

// starsGlyph renders a rating as a five-glyph star string, e.g. "★★★★☆".
func starsGlyph(rating int) string {
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func (h *Handlers) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be JSON")
		return
	}
	if wordCount(req.Text) < minWords {
		writeProblem(w, http.StatusUnprocessableEntity, "Review Too Short", "review must contain at least 10 words")
		return
	}

	res, err := h.S.Analyze(r.Context(), domain.ReviewInput{
		Text:      req.Text,
		HotelName: req.HotelName,
		TripType:  req.TripType,
		StayYear:  req.StayYear,
	})
	if err != nil {
		log.Error().Err(err).Msg("analysis failed")
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrEmptyReview) {
			status = http.StatusUnprocessableEntity
		}
		writeProblem(w, status, "Analysis Failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(analyzeResponse{
		Rating:      res.Rating,
		Stars:       starsGlyph(res.Rating),
		Topics:      res.Topics,
		RefinedText: res.RefinedText,
		HotelName:   req.HotelName,
		TripType:    req.TripType,
		StayYear:    req.StayYear,
	}); err != nil {
		log.Error().Err(err).Msg("failed to write analyze body")
	}
}
