package app

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"review_refiner/internal/domain"
)

/********** aspect mapping (single source of truth) **********/

var aspectTopics = map[string]domain.Topic{
	"FOOD":     domain.TopicFoodBeverage,
	"BEVERAGE": domain.TopicFoodBeverage,
	"STAFF":    domain.TopicStaffService,
	"SERVICE":  domain.TopicStaffService,
	"LOCATION": domain.TopicLocationAmbience,
	"VIEW":     domain.TopicLocationAmbience,
	"AMBIENCE": domain.TopicLocationAmbience,
}

/********** normalizers **********/

// starRating turns a classifier label like "4 stars" into a rating by
// keeping its decimal digits. Digit-less labels fall back to 3; the result
// is always clamped to [1,5].
func starRating(label string) int {
	var digits strings.Builder
	for _, r := range label {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		log.Warn().Str("label", label).Msg("sentiment label has no digits, defaulting rating to 3")
		return 3
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		// more digits than fit an int; treat like a digit-less label
		log.Warn().Str("label", label).Msg("sentiment label digits unparseable, defaulting rating to 3")
		return 3
	}
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

// topicsFromEntities maps raw entity groups onto the closed topic set,
// dropping unknown groups, and returns the deduplicated topics in lexical
// order. The result may be empty; that means "no topics detected".
func topicsFromEntities(ents []domain.Entity) []domain.Topic {
	set := make(map[domain.Topic]struct{}, len(ents))
	for _, e := range ents {
		if t, ok := aspectTopics[e.Group]; ok {
			set[t] = struct{}{}
		}
	}
	out := make([]domain.Topic, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// refineText trims the surrounding whitespace generation tends to leave.
func refineText(generated string) string {
	return strings.TrimSpace(generated)
}
