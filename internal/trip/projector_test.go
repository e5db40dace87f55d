package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

func TestProject_UsesSnapshotOrder(t *testing.T) {
	snapshot := []QueryEntry{{ID: 3}, {ID: 1}, {ID: 7}}
	arrived := []WeatherSample{{EntryID: 7}, {EntryID: 3}, {EntryID: 1}}

	got := Project(snapshot, arrived)

	require.Len(t, got, 3)
	assert.Equal(t, []int{3, 1, 7}, []int{got[0].EntryID, got[1].EntryID, got[2].EntryID})
}

func TestProject_DropsSamplesOutsideSnapshot(t *testing.T) {
	snapshot := []QueryEntry{{ID: 1}, {ID: 2}}
	arrived := []WeatherSample{{EntryID: 2}, {EntryID: 9}}

	got := Project(snapshot, arrived)

	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].EntryID)
}

func TestCards_TextSurface(t *testing.T) {
	samples := []WeatherSample{{
		EntryID:       1,
		LocationLabel: "New York, NY",
		TimeValue:     "2024-06-01T10:00",
		Temperature:   72,
		Condition:     weather.ConditionSunny,
		Humidity:      55,
		WindSpeed:     9,
	}}

	cards := Cards(ModalityText, samples)

	require.Len(t, cards, 1)
	assert.Equal(t, Card{
		EntryID:     1,
		Heading:     "New York, NY",
		TimeValue:   "2024-06-01T10:00",
		TimeDisplay: "6/1/2024, 10:00:00 AM",
		Temperature: 72,
		Condition:   weather.ConditionSunny,
		Humidity:    55,
		WindSpeed:   9,
	}, cards[0])
}

func TestCards_MapSurfaceHeadsByPin(t *testing.T) {
	samples := []WeatherSample{{EntryID: 4, LocationLabel: "39.8283, -98.5795", TimeValue: "2024-12-24T18:30"}}

	cards := Cards(ModalityMap, samples)

	require.Len(t, cards, 1)
	assert.Equal(t, "Pin 4", cards[0].Heading)
	assert.Equal(t, "39.8283, -98.5795", cards[0].Subheading)
	assert.Equal(t, "12/24/2024, 6:30:00 PM", cards[0].TimeDisplay)
}

func TestCards_UnparseableTimeShownRaw(t *testing.T) {
	cards := Cards(ModalityText, []WeatherSample{{EntryID: 1, TimeValue: "tomorrow noon"}})
	assert.Equal(t, "tomorrow noon", cards[0].TimeDisplay)
}
