package domain

// ReviewInput is one submitted hotel review. The pipeline only ever reads
// Text; the remaining fields are opaque display metadata echoed back to the
// presentation layer untouched.
type ReviewInput struct {
	Text      string
	HotelName string
	TripType  string
	StayYear  string
}

// Topic is a canonical user-facing category derived from raw entity groups.
type Topic string

const (
	TopicFoodBeverage     Topic = "Food & Beverage"
	TopicStaffService     Topic = "Staff & Service"
	TopicLocationAmbience Topic = "Location & Ambience"
)

// AnalysisResult is the combined output for exactly one ReviewInput.
// Rating is always within [1,5]; Topics is sorted lexically with no
// duplicates and may be empty. The result is all-or-nothing: it is never
// returned with only some fields populated.
type AnalysisResult struct {
	Rating      int
	Topics      []Topic
	RefinedText string
}
