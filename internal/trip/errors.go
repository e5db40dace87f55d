package trip

import "errors"

var (
	// ErrNoEligibleEntries is wrapped by every ValidationError.
	ErrNoEligibleEntries = errors.New("no entry has both a location and a time")
	// ErrEntryNotFound is returned when an id does not match a live entry.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrBatchInFlight rejects a submission while another batch is dispatching.
	ErrBatchInFlight = errors.New("a batch is already in flight")

	ErrFieldNotEditable     = errors.New("field is not editable on this surface")
	ErrInvalidEntry         = errors.New("entry does not match the surface modality")
	ErrSelectionUnsupported = errors.New("selection is only supported on the map surface")
	ErrClosed               = errors.New("orchestrator is closed")
)

var notices = map[Modality]string{
	ModalityText: "Please enter at least one location and time",
	ModalityMap:  "Please add at least one pin and set its time",
}

// ValidationError is returned when a submission has nothing to dispatch.
// Message is the notice shown to the user.
type ValidationError struct {
	Modality Modality
	Message  string
}

func newValidationError(m Modality) *ValidationError {
	return &ValidationError{Modality: m, Message: notices[m]}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrNoEligibleEntries
}
