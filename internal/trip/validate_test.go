package trip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

func TestEligible_TrimsAndKeepsOrder(t *testing.T) {
	entries := []QueryEntry{
		{ID: 1, LocationText: "Paris", TimeValue: "2024-06-01T10:00"},
		{ID: 2, LocationText: "   ", TimeValue: "2024-06-01T10:00"},
		{ID: 3, LocationText: "Lyon", TimeValue: " \t"},
		{ID: 4, LocationText: " Nice ", TimeValue: "2024-06-02T09:00"},
		{ID: 5},
	}

	got := Eligible(entries)

	assert.Equal(t, []int{1, 4}, ids(got))
	assert.Equal(t, " Nice ", got[1].LocationText, "labels are not rewritten")
}

func TestEligible_PinsOnlyNeedATime(t *testing.T) {
	entries := []QueryEntry{
		{ID: 1, Coordinates: &weather.Coordinates{Lat: 1, Lng: 2}},
		{ID: 2, Coordinates: &weather.Coordinates{Lat: 3, Lng: 4}, TimeValue: "2024-06-01T10:00"},
	}

	assert.Equal(t, []int{2}, ids(Eligible(entries)))
}

func TestValidate_EmptyReturnsSurfaceNotice(t *testing.T) {
	tests := []struct {
		modality Modality
		notice   string
	}{
		{ModalityText, "Please enter at least one location and time"},
		{ModalityMap, "Please add at least one pin and set its time"},
	}

	for _, tt := range tests {
		t.Run(string(tt.modality), func(t *testing.T) {
			got, err := Validate(tt.modality, []QueryEntry{{ID: 1}})
			assert.Nil(t, got)
			require.ErrorIs(t, err, ErrNoEligibleEntries)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.notice, verr.Message)
			assert.Equal(t, tt.modality, verr.Modality)
		})
	}
}
