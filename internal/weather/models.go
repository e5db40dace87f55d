package weather

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionSunny        Condition = "Sunny"
	ConditionCloudy       Condition = "Cloudy"
	ConditionRainy        Condition = "Rainy"
	ConditionPartlyCloudy Condition = "Partly Cloudy"
)

// Conditions lists every condition a Report may carry.
var Conditions = []Condition{
	ConditionSunny,
	ConditionCloudy,
	ConditionRainy,
	ConditionPartlyCloudy,
}

// Coordinates is a point dropped on the map surface.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Label renders coordinates the way pins are labelled in the UI.
func (c Coordinates) Label() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lng)
}

// Query identifies one location+time lookup.
// Coordinates is set for map pins; Label is always set.
type Query struct {
	Label       string       `json:"label"`
	Time        string       `json:"time"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Report is the normalized weather view for a single query.
type Report struct {
	Temperature float64   `json:"temperatureF"`
	Condition   Condition `json:"condition"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeedMph"`

	// Providers contributing to this report.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

var (
	// ErrLookupFailed is wrapped by every LookupError.
	ErrLookupFailed = errors.New("weather lookup failed")
	// ErrInvalidTime is returned for time values that are not local date-times.
	ErrInvalidTime = errors.New("invalid local date-time")
)

// LookupError reports a failed lookup for one query along with the
// per-provider causes.
type LookupError struct {
	Query  Query
	Causes []error
}

func (e *LookupError) Error() string {
	if len(e.Causes) == 0 {
		return fmt.Sprintf("weather lookup failed for %q at %q", e.Query.Label, e.Query.Time)
	}
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("weather lookup failed for %q at %q: %s", e.Query.Label, e.Query.Time, strings.Join(msgs, "; "))
}

func (e *LookupError) Unwrap() []error {
	return append([]error{ErrLookupFailed}, e.Causes...)
}

var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// ParseLocalTime parses a local-naive date-time as entered by the user.
// The returned time carries the wall clock in UTC; no zone conversion happens.
func ParseLocalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}
