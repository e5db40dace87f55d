package trip

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/road-trip-weather/internal/weather"
)

func ids(entries []QueryEntry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func mustAdd(t *testing.T, r *Registry, in EntryInput) QueryEntry {
	t.Helper()
	e, err := r.Add(in)
	require.NoError(t, err)
	return e
}

func TestRegistry_AddAssignsSequentialIDs(t *testing.T) {
	r := NewRegistry(ModalityText)

	assert.Equal(t, 1, mustAdd(t, r, EntryInput{}).ID)
	assert.Equal(t, 2, mustAdd(t, r, EntryInput{LocationText: "Paris"}).ID)
	assert.Equal(t, 3, mustAdd(t, r, EntryInput{}).ID)
	assert.Equal(t, []int{1, 2, 3}, ids(r.Entries()))
}

func TestRegistry_RemoveThenAddDoesNotReuseID(t *testing.T) {
	r := NewRegistry(ModalityText)
	for range 3 {
		mustAdd(t, r, EntryInput{})
	}

	require.NoError(t, r.Remove(2))
	e := mustAdd(t, r, EntryInput{})

	assert.Equal(t, 4, e.ID)
	assert.Equal(t, []int{1, 3, 4}, ids(r.Entries()))
}

func TestRegistry_RemovingTailDoesNotReuseID(t *testing.T) {
	r := NewRegistry(ModalityText)
	mustAdd(t, r, EntryInput{})
	mustAdd(t, r, EntryInput{})

	require.NoError(t, r.Remove(2))
	assert.Equal(t, 3, mustAdd(t, r, EntryInput{}).ID)

	require.NoError(t, r.Remove(1))
	require.NoError(t, r.Remove(3))
	assert.Zero(t, r.Len(), "registry allows removing down to zero")
	assert.Equal(t, 4, mustAdd(t, r, EntryInput{}).ID)
}

func TestRegistry_IDsStrictlyIncreaseUnderRandomMutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	r := NewRegistry(ModalityText)
	seen := make(map[int]bool)
	last := 0

	for range 500 {
		entries := r.Entries()
		if len(entries) > 0 && rng.IntN(3) == 0 {
			victim := entries[rng.IntN(len(entries))]
			require.NoError(t, r.Remove(victim.ID))
			continue
		}
		e := mustAdd(t, r, EntryInput{})
		assert.Greater(t, e.ID, last)
		assert.False(t, seen[e.ID], "id %d reused", e.ID)
		seen[e.ID] = true
		last = e.ID
	}
}

func TestRegistry_UpdateKeepsIDAndOrder(t *testing.T) {
	r := NewRegistry(ModalityText)
	mustAdd(t, r, EntryInput{})
	mustAdd(t, r, EntryInput{})

	e, err := r.Update(1, FieldLocation, "Lyon")
	require.NoError(t, err)
	assert.Equal(t, 1, e.ID)
	assert.Equal(t, "Lyon", e.LocationText)

	_, err = r.Update(1, FieldTime, "2024-06-01T10:00")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, ids(r.Entries()))
	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, QueryEntry{ID: 1, LocationText: "Lyon", TimeValue: "2024-06-01T10:00"}, got)
}

func TestRegistry_UpdateIsIdempotent(t *testing.T) {
	r := NewRegistry(ModalityText)
	mustAdd(t, r, EntryInput{})

	_, err := r.Update(1, FieldLocation, "Paris")
	require.NoError(t, err)
	once := r.Entries()

	_, err = r.Update(1, FieldLocation, "Paris")
	require.NoError(t, err)

	assert.Equal(t, once, r.Entries())
}

func TestRegistry_MissingIDIsNotFound(t *testing.T) {
	r := NewRegistry(ModalityText)
	mustAdd(t, r, EntryInput{LocationText: "Paris"})
	before := r.Entries()

	_, err := r.Update(9, FieldLocation, "x")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	assert.ErrorIs(t, r.Remove(9), ErrEntryNotFound)
	assert.Equal(t, before, r.Entries())
}

func TestRegistry_UnknownFieldIsRejected(t *testing.T) {
	r := NewRegistry(ModalityText)
	mustAdd(t, r, EntryInput{})

	_, err := r.Update(1, Field("humidity"), "x")
	assert.ErrorIs(t, err, ErrFieldNotEditable)
}

func TestRegistry_MapEntries(t *testing.T) {
	r := NewRegistry(ModalityMap)

	_, err := r.Add(EntryInput{LocationText: "Paris"})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	e := mustAdd(t, r, EntryInput{Coordinates: &weather.Coordinates{Lat: 48.856614, Lng: 2.3522219}})
	assert.Equal(t, 1, e.ID)
	assert.Equal(t, "48.8566, 2.3522", e.LocationLabel())
	assert.Empty(t, e.TimeValue)

	_, err = r.Update(1, FieldLocation, "Lyon")
	assert.ErrorIs(t, err, ErrFieldNotEditable)

	e, err = r.Update(1, FieldTime, "2024-06-01T10:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T10:00", e.TimeValue)
}

func TestRegistry_TextRejectsCoordinates(t *testing.T) {
	r := NewRegistry(ModalityText)
	_, err := r.Add(EntryInput{Coordinates: &weather.Coordinates{}})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Zero(t, r.Len())
}

func TestRegistry_RemoveClearsSelection(t *testing.T) {
	r := NewRegistry(ModalityMap)
	mustAdd(t, r, EntryInput{Coordinates: &weather.Coordinates{Lat: 1, Lng: 1}})
	mustAdd(t, r, EntryInput{Coordinates: &weather.Coordinates{Lat: 2, Lng: 2}})

	require.NoError(t, r.Select(2))
	require.NoError(t, r.Remove(1))
	sel, ok := r.Selected()
	assert.True(t, ok, "removing another pin keeps the selection")
	assert.Equal(t, 2, sel)

	require.NoError(t, r.Remove(2))
	_, ok = r.Selected()
	assert.False(t, ok)
}

func TestRegistry_SelectionOnlyOnMap(t *testing.T) {
	r := NewRegistry(ModalityText)
	mustAdd(t, r, EntryInput{})
	assert.ErrorIs(t, r.Select(1), ErrSelectionUnsupported)

	m := NewRegistry(ModalityMap)
	assert.ErrorIs(t, m.Select(1), ErrEntryNotFound)
}

func TestRegistry_EntriesAreCopies(t *testing.T) {
	r := NewRegistry(ModalityMap)
	mustAdd(t, r, EntryInput{Coordinates: &weather.Coordinates{Lat: 10, Lng: 20}})

	entries := r.Entries()
	entries[0].Coordinates.Lat = 99
	entries[0].TimeValue = "changed"

	got, _ := r.Get(1)
	assert.Equal(t, 10.0, got.Coordinates.Lat)
	assert.Empty(t, got.TimeValue)
}
