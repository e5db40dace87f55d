package trip

import (
	"fmt"
)

// Registry owns the ordered entry list of one surface. It is not safe for
// concurrent use; the Orchestrator serializes access to it.
type Registry struct {
	modality Modality
	entries  []QueryEntry
	// highest id ever assigned; ids are never reused
	lastID   int
	selected int
}

// NewRegistry returns an empty registry for the given surface.
func NewRegistry(m Modality) *Registry {
	return &Registry{modality: m}
}

func (r *Registry) Modality() Modality {
	return r.modality
}

// Add appends a new entry and returns it.
func (r *Registry) Add(in EntryInput) (QueryEntry, error) {
	switch r.modality {
	case ModalityText:
		if in.Coordinates != nil {
			return QueryEntry{}, fmt.Errorf("%w: text entries take a location name", ErrInvalidEntry)
		}
	case ModalityMap:
		if in.Coordinates == nil {
			return QueryEntry{}, fmt.Errorf("%w: pins need coordinates", ErrInvalidEntry)
		}
		if in.LocationText != "" {
			return QueryEntry{}, fmt.Errorf("%w: pins are labelled by their coordinates", ErrInvalidEntry)
		}
	}

	r.lastID++
	e := QueryEntry{
		ID:           r.lastID,
		LocationText: in.LocationText,
		TimeValue:    in.TimeValue,
	}
	if in.Coordinates != nil {
		c := *in.Coordinates
		e.Coordinates = &c
	}
	r.entries = append(r.entries, e)
	return e.clone(), nil
}

// Update replaces one field of the entry with the given id.
func (r *Registry) Update(id int, field Field, value string) (QueryEntry, error) {
	i := r.index(id)
	if i < 0 {
		return QueryEntry{}, fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}

	switch {
	case field == FieldTime:
		r.entries[i].TimeValue = value
	case field == FieldLocation && r.modality == ModalityText:
		r.entries[i].LocationText = value
	default:
		return QueryEntry{}, fmt.Errorf("%w: %q", ErrFieldNotEditable, field)
	}
	return r.entries[i].clone(), nil
}

// Remove deletes the entry with the given id, clearing the selection if it
// pointed at that entry. Surviving entries keep their ids and order.
func (r *Registry) Remove(id int) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	if r.selected == id {
		r.selected = 0
	}
	return nil
}

// Select marks a pin as selected.
func (r *Registry) Select(id int) error {
	if r.modality != ModalityMap {
		return ErrSelectionUnsupported
	}
	if r.index(id) < 0 {
		return fmt.Errorf("%w: %d", ErrEntryNotFound, id)
	}
	r.selected = id
	return nil
}

func (r *Registry) ClearSelection() {
	r.selected = 0
}

// Selected returns the selected entry id, if any.
func (r *Registry) Selected() (int, bool) {
	return r.selected, r.selected != 0
}

// Get returns a copy of the entry with the given id.
func (r *Registry) Get(id int) (QueryEntry, bool) {
	i := r.index(id)
	if i < 0 {
		return QueryEntry{}, false
	}
	return r.entries[i].clone(), true
}

// Entries returns a copy of the entries in display order.
func (r *Registry) Entries() []QueryEntry {
	out := make([]QueryEntry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.clone()
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) index(id int) int {
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
