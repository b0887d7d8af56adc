package httpserver

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"review_refiner/internal/domain"
)

// exampleReview pre-fills the form so a first-time user can see the output
// shape without writing anything.
const exampleReview = "The hotel was in a fantastic location near the city center. The staff were incredibly friendly " +
	"and helpful, and the breakfast buffet had a great variety of fresh food. " +
	"However, the room was a bit noisy at night."

type pageData struct {
	Text      string
	HotelName string
	TripType  string
	StayYear  string
	Warning   string
	Error     string
	Result    *pageResult

	TripTypes []string
	StayYears []string
}

var (
	tripTypes = []string{"Not specified", "Business", "Couples", "Family", "Friends", "Solo"}
	stayYears = []string{"Not specified", "2025", "2024", "2023", "2022", "2021"}
)

type pageResult struct {
	Stars       string
	Rating      int
	Topics      []domain.Topic
	RefinedText string
}

var page = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Hotel Review Refiner</title>
<style>
 body { font-family: sans-serif; background: #f5f7f9; margin: 2rem auto; max-width: 48rem; color: #222; }
 h1 { color: #00a680; }
 textarea { width: 100%; height: 10rem; }
 .card { background: #fff; border: 1px solid #e3e8ef; border-radius: 12px; padding: 1.4rem 1.6rem; margin-top: 1rem; }
 .stars { font-size: 1.8rem; color: #00a680; }
 .chip { display: inline-block; padding: .25rem .7rem; border-radius: 999px; background: #e5f5f0; color: #006f4e; font-size: .8rem; margin-right: .4rem; border: 1px solid #b5e1cf; }
 .refined { background: #f8fafc; border: 1px solid #e3e8ef; border-radius: 10px; padding: .9rem 1rem; margin-top: .4rem; }
 .warn { color: #a05000; }
 .err { color: #a00000; }
</style>
</head>
<body>
<h1>Hotel Review Refiner</h1>
<p>Draft a hotel review and get a star rating, detected topics, and a polished version of the text. Write at least 10 words.</p>
<form method="post" action="/">
  <p><input name="hotel_name" placeholder="Hotel name (optional)" value="{{.HotelName}}"></p>
  <p><textarea name="text" placeholder="Write at least 10 words describing your stay...">{{.Text}}</textarea></p>
  <p>
    <select name="trip_type">
      {{range $t := .TripTypes}}<option{{if eq $t $.TripType}} selected{{end}}>{{$t}}</option>{{end}}
    </select>
    <select name="stay_year">
      {{range $y := .StayYears}}<option{{if eq $y $.StayYear}} selected{{end}}>{{$y}}</option>{{end}}
    </select>
    <button type="submit">Refine review</button>
  </p>
</form>
{{if .Warning}}<p class="warn">{{.Warning}}</p>{{end}}
{{if .Error}}<p class="err">{{.Error}}</p>{{end}}
{{with .Result}}
<div class="card">
  {{if $.HotelName}}<h3>{{$.HotelName}}</h3>{{else}}<h3>Your stay</h3>{{end}}
  {{if ne $.TripType "Not specified"}}<p>Trip type: <b>{{$.TripType}}</b></p>{{end}}
  {{if ne $.StayYear "Not specified"}}<p>Stayed in: <b>{{$.StayYear}}</b></p>{{end}}
  <div class="stars">{{.Stars}}</div>
  <p>Predicted rating: <b>{{.Rating}}/5</b></p>
  {{if .Topics}}<p>{{range .Topics}}<span class="chip">{{.}}</span>{{end}}</p>{{else}}<p><i>No specific topics detected.</i></p>{{end}}
  <div class="refined">{{.RefinedText}}</div>
</div>
{{end}}
</body>
</html>`))

func (h *Handlers) formPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, pageData{Text: exampleReview, TripType: "Not specified", StayYear: "Not specified"})
}

func (h *Handlers) formSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Form", "could not parse form body")
		return
	}
	data := pageData{
		Text:      r.PostFormValue("text"),
		HotelName: r.PostFormValue("hotel_name"),
		TripType:  r.PostFormValue("trip_type"),
		StayYear:  r.PostFormValue("stay_year"),
	}
	if wordCount(data.Text) < minWords {
		data.Warning = "Please write at least 10 words."
		renderPage(w, data)
		return
	}

	res, err := h.S.Analyze(r.Context(), domain.ReviewInput{
		Text:      data.Text,
		HotelName: data.HotelName,
		TripType:  data.TripType,
		StayYear:  data.StayYear,
	})
	if err != nil {
		log.Error().Err(err).Msg("analysis failed")
		data.Error = "Analysis failed, please try again later."
		renderPage(w, data)
		return
	}
	data.Result = &pageResult{
		Stars:       starsGlyph(res.Rating),
		Rating:      res.Rating,
		Topics:      res.Topics,
		RefinedText: res.RefinedText,
	}
	renderPage(w, data)
}

func renderPage(w http.ResponseWriter, data pageData) {
	data.TripTypes = tripTypes
	data.StayYears = stayYears
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("failed to render page")
	}
}
