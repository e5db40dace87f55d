// Package trip holds the per-session batch orchestrator: the entry registry,
// validation gate, concurrent lookup dispatch and result projection shared by
// the text and map input surfaces.
package trip

import (
	"github.com/i474232898/road-trip-weather/internal/weather"
)

// Modality is the input surface an orchestrator serves.
type Modality string

const (
	// ModalityText entries carry a free-text place name.
	ModalityText Modality = "text"
	// ModalityMap entries carry the coordinates of a dropped pin.
	ModalityMap Modality = "map"
)

// Valid reports whether m is a known modality.
func (m Modality) Valid() bool {
	return m == ModalityText || m == ModalityMap
}

// Field names an editable entry field.
type Field string

const (
	FieldLocation Field = "location"
	FieldTime     Field = "time"
)

// QueryEntry is one (location, time) pair awaiting a weather lookup.
type QueryEntry struct {
	ID           int                  `json:"id"`
	LocationText string               `json:"locationText,omitempty"`
	Coordinates  *weather.Coordinates `json:"coordinates,omitempty"`
	TimeValue    string               `json:"timeValue"`
}

// LocationLabel is the display and lookup label of the entry.
func (e QueryEntry) LocationLabel() string {
	if e.Coordinates != nil {
		return e.Coordinates.Label()
	}
	return e.LocationText
}

// Query converts the entry into a gateway query.
func (e QueryEntry) Query() weather.Query {
	q := weather.Query{
		Label: e.LocationLabel(),
		Time:  e.TimeValue,
	}
	if e.Coordinates != nil {
		c := *e.Coordinates
		q.Coordinates = &c
	}
	return q
}

func (e QueryEntry) clone() QueryEntry {
	if e.Coordinates != nil {
		c := *e.Coordinates
		e.Coordinates = &c
	}
	return e
}

// EntryInput carries the initial fields of a new entry.
type EntryInput struct {
	LocationText string
	Coordinates  *weather.Coordinates
	TimeValue    string
}

// WeatherSample is the outcome of a successful lookup for one entry.
type WeatherSample struct {
	EntryID       int               `json:"entryId"`
	LocationLabel string            `json:"locationLabel"`
	TimeValue     string            `json:"timeValue"`
	Temperature   float64           `json:"temperature"`
	Condition     weather.Condition `json:"condition"`
	Humidity      float64           `json:"humidity"`
	WindSpeed     float64           `json:"windSpeed"`
}

func newSample(e QueryEntry, r weather.Report) WeatherSample {
	return WeatherSample{
		EntryID:       e.ID,
		LocationLabel: e.LocationLabel(),
		TimeValue:     e.TimeValue,
		Temperature:   r.Temperature,
		Condition:     r.Condition,
		Humidity:      r.Humidity,
		WindSpeed:     r.WindSpeed,
	}
}
