package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/road-trip-weather/internal/store"
	"github.com/i474232898/road-trip-weather/internal/trip"
	"github.com/i474232898/road-trip-weather/internal/weather"
)

var validate = validator.New()

// OrchestratorFactory builds the orchestrator behind a new session.
type OrchestratorFactory func(trip.Modality) *trip.Orchestrator

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, sessions *store.MemoryStore, newOrchestrator OrchestratorFactory) {
	h := &handler{sessions: sessions, newOrchestrator: newOrchestrator}

	v1 := app.Group("/api/v1")

	v1.Post("/sessions", h.createSession)
	v1.Get("/sessions/:id", h.getSession)
	v1.Delete("/sessions/:id", h.deleteSession)

	v1.Post("/sessions/:id/entries", h.addEntry)
	v1.Patch("/sessions/:id/entries/:entryId", h.updateEntry)
	v1.Delete("/sessions/:id/entries/:entryId", h.removeEntry)

	v1.Put("/sessions/:id/selection", h.selectEntry)
	v1.Delete("/sessions/:id/selection", h.clearSelection)

	v1.Post("/sessions/:id/batches", h.submitBatch)
	v1.Get("/sessions/:id/results", h.getResults)
}

type handler struct {
	sessions        *store.MemoryStore
	newOrchestrator OrchestratorFactory
}

func (h *handler) createSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	m := trip.Modality(req.Mode)
	o := h.newOrchestrator(m)
	if m == trip.ModalityText {
		// The text form always starts with one empty row.
		if _, err := o.AddEntry(trip.EntryInput{}); err != nil {
			return toHTTPError(err)
		}
	}

	sess := h.sessions.Create(o)
	return c.Status(fiber.StatusCreated).JSON(newSessionView(sess))
}

func (h *handler) getSession(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(newSessionView(sess))
}

func (h *handler) deleteSession(c *fiber.Ctx) error {
	if err := h.sessions.Delete(c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) addEntry(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var req addEntryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lng must be provided together")
	}

	entry, err := sess.Orchestrator.AddEntry(req.toInput())
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *handler) updateEntry(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	id, err := entryID(c)
	if err != nil {
		return err
	}

	var req updateEntryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	entry, err := sess.Orchestrator.UpdateEntry(id, trip.Field(req.Field), *req.Value)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(entry)
}

func (h *handler) removeEntry(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	id, err := entryID(c)
	if err != nil {
		return err
	}

	o := sess.Orchestrator
	if o.Modality() == trip.ModalityText && len(o.Entries()) <= 1 {
		return fiber.NewError(fiber.StatusConflict, "at least one location row is required")
	}

	if err := o.RemoveEntry(id); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) selectEntry(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var req selectRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := sess.Orchestrator.SelectEntry(req.EntryID); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(newSessionView(sess))
}

func (h *handler) clearSelection(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	sess.Orchestrator.ClearSelection()
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) submitBatch(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	batch, err := sess.Orchestrator.Submit(c.UserContext())
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"batchId":   batch.ID,
		"startedAt": batch.StartedAt.UTC().Format(time.RFC3339),
		"entries":   batch.Entries(),
	})
}

func (h *handler) getResults(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	state := sess.Orchestrator.State()
	return c.JSON(fiber.Map{
		"batchId": state.BatchID,
		"loading": state.Loading,
		"results": trip.Cards(state.Modality, state.Results),
	})
}

func (h *handler) session(c *fiber.Ctx) (*store.Session, error) {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return nil, toHTTPError(err)
	}
	return sess, nil
}

func entryID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("entryId")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "entryId must be a positive integer")
	}
	return id, nil
}

func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func toHTTPError(err error) error {
	var verr *trip.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusUnprocessableEntity, verr.Message)
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	case errors.Is(err, trip.ErrEntryNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, trip.ErrBatchInFlight):
		return fiber.NewError(fiber.StatusConflict, "weather is already loading for this session")
	case errors.Is(err, trip.ErrClosed):
		return fiber.NewError(fiber.StatusGone, "session has ended")
	case errors.Is(err, trip.ErrFieldNotEditable),
		errors.Is(err, trip.ErrInvalidEntry),
		errors.Is(err, trip.ErrSelectionUnsupported):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

// createSessionRequest opens a session on one input surface.
type createSessionRequest struct {
	Mode string `json:"mode" validate:"required,oneof=text map"`
}

// addEntryRequest carries either a place name or pin coordinates.
type addEntryRequest struct {
	Location string   `json:"location"`
	Lat      *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng      *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
	Time     string   `json:"time"`
}

func (r addEntryRequest) toInput() trip.EntryInput {
	in := trip.EntryInput{
		LocationText: r.Location,
		TimeValue:    r.Time,
	}
	if r.Lat != nil && r.Lng != nil {
		in.Coordinates = &weather.Coordinates{Lat: *r.Lat, Lng: *r.Lng}
	}
	return in
}

type updateEntryRequest struct {
	Field string  `json:"field" validate:"required,oneof=location time"`
	Value *string `json:"value" validate:"required"`
}

type selectRequest struct {
	EntryID int `json:"entryId" validate:"required,gt=0"`
}

type sessionView struct {
	ID              string            `json:"id"`
	CreatedAt       time.Time         `json:"createdAt"`
	Modality        trip.Modality     `json:"modality"`
	Entries         []trip.QueryEntry `json:"entries"`
	Loading         bool              `json:"loading"`
	Phase           trip.Phase        `json:"phase"`
	SelectedEntryID *int              `json:"selectedEntryId"`
	BatchID         string            `json:"batchId,omitempty"`
	Results         []trip.Card       `json:"results"`
}

func newSessionView(sess *store.Session) sessionView {
	state := sess.Orchestrator.State()
	return sessionView{
		ID:              sess.ID,
		CreatedAt:       sess.CreatedAt,
		Modality:        state.Modality,
		Entries:         state.Entries,
		Loading:         state.Loading,
		Phase:           state.Phase,
		SelectedEntryID: state.SelectedEntryID,
		BatchID:         state.BatchID,
		Results:         trip.Cards(state.Modality, state.Results),
	}
}
