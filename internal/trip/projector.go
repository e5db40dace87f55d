package trip

import (
	"fmt"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

// Project orders samples by the snapshot they were produced from. Samples
// whose entry is not in the snapshot are dropped; arrival order never leaks.
func Project(snapshot []QueryEntry, samples []WeatherSample) []WeatherSample {
	byID := make(map[int]WeatherSample, len(samples))
	for _, s := range samples {
		byID[s.EntryID] = s
	}

	out := make([]WeatherSample, 0, len(samples))
	for _, e := range snapshot {
		if s, ok := byID[e.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Card is a display-ready result.
type Card struct {
	EntryID     int               `json:"entryId"`
	Heading     string            `json:"heading"`
	Subheading  string            `json:"subheading,omitempty"`
	TimeValue   string            `json:"timeValue"`
	TimeDisplay string            `json:"timeDisplay"`
	Temperature float64           `json:"temperature"`
	Condition   weather.Condition `json:"condition"`
	Humidity    float64           `json:"humidity"`
	WindSpeed   float64           `json:"windSpeed"`
}

// Cards maps samples to display cards for the given surface, keeping order.
// Map results are headed by pin number with the coordinates underneath.
func Cards(m Modality, samples []WeatherSample) []Card {
	cards := make([]Card, 0, len(samples))
	for _, s := range samples {
		c := Card{
			EntryID:     s.EntryID,
			Heading:     s.LocationLabel,
			TimeValue:   s.TimeValue,
			TimeDisplay: displayTime(s.TimeValue),
			Temperature: s.Temperature,
			Condition:   s.Condition,
			Humidity:    s.Humidity,
			WindSpeed:   s.WindSpeed,
		}
		if m == ModalityMap {
			c.Heading = fmt.Sprintf("Pin %d", s.EntryID)
			c.Subheading = s.LocationLabel
		}
		cards = append(cards, c)
	}
	return cards
}

func displayTime(v string) string {
	ts, err := weather.ParseLocalTime(v)
	if err != nil {
		return v
	}
	return ts.Format("1/2/2006, 3:04:05 PM")
}
