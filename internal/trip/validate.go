package trip

import "github.com/i474232898/road-trip-weather/internal/common"

// Eligible returns, in source order, the entries that have both a location
// and a time once whitespace is trimmed.
func Eligible(entries []QueryEntry) []QueryEntry {
	var out []QueryEntry
	for _, e := range entries {
		if common.Blank(e.LocationLabel()) || common.Blank(e.TimeValue) {
			continue
		}
		out = append(out, e.clone())
	}
	return out
}

// Validate returns the eligible entries, or a *ValidationError carrying the
// surface's notice when there are none.
func Validate(m Modality, entries []QueryEntry) ([]QueryEntry, error) {
	eligible := Eligible(entries)
	if len(eligible) == 0 {
		return nil, newValidationError(m)
	}
	return eligible, nil
}
