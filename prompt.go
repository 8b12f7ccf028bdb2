package wayfare

import (
	"strconv"
	"strings"
)

// PromptWordLimit is the itinerary length ceiling stated in every prompt.
const PromptWordLimit = 1000

// PromptInput is everything BuildPrompt needs.
type PromptInput struct {
	Request     TripRequest
	Attractions []string
	Weather     string
}

// BuildPrompt renders the itinerary generation prompt. It has no side effects
// and returns byte-identical output for identical input.
func BuildPrompt(in PromptInput) string {
	r := in.Request

	var b strings.Builder
	b.WriteString("You are a helpful tour planner.\n")
	b.WriteString("Please create a day-by-day itinerary, within ")
	b.WriteString(strconv.Itoa(PromptWordLimit))
	b.WriteString(" words or less,\n")
	b.WriteString("for a trip to " + r.Destination + ",\n")
	b.WriteString("from " + r.StartDate.Format(DateLayout) + " to " + r.EndDate.Format(DateLayout) + ",\n")
	b.WriteString("within a budget of £" + strconv.FormatFloat(r.Budget, 'f', -1, 64) + ", and\n")
	b.WriteString("with focus on the below interests " + strings.Join(r.Interests, ", ") + ".\n")
	if len(in.Attractions) > 0 {
		b.WriteString("Please also include places like " + strings.Join(in.Attractions, ", ") + " in the itinerary and\n")
	} else {
		b.WriteString("No specific attractions were found nearby, so suggest well-known places yourself, and\n")
	}
	weather := in.Weather
	if strings.TrimSpace(weather) == "" {
		weather = WeatherUnavailable
	}
	b.WriteString("factor the forecasted weather, like " + weather + " while building the itinerary.\n")
	return b.String()
}
