package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coop-transport-seating/internal/model"
	"github.com/iliyamo/coop-transport-seating/internal/seating"
)

type queueView struct {
	model.QueueEntry
	Position int `json:"position"`
}

// Enqueue handles POST /file-attente.
func (h *SeatingHandler) Enqueue(c echo.Context) error {
	var body struct {
		ClientName     string `json:"client_name"`
		ClientContact  string `json:"client_contact"`
		RequestedSeats int    `json:"requested_seats"`
		Tier           string `json:"tier"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, body.Tier)
	if err != nil {
		return h.fail(c, err)
	}
	entry, pos, err := eng.Enqueue(c.Request().Context(), seating.EnqueueRequest{
		ClientName:     body.ClientName,
		ClientContact:  body.ClientContact,
		RequestedSeats: body.RequestedSeats,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, queueView{QueueEntry: *entry, Position: pos})
}

// ListQueue handles GET /file-attente, oldest entry first.
func (h *SeatingHandler) ListQueue(c echo.Context) error {
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	entries, err := eng.Queue(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]queueView, len(entries))
	for i, en := range entries {
		out[i] = queueView{QueueEntry: en, Position: i + 1}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out, "total": len(out)})
}

// QueuePosition handles GET /file-attente/:id.
func (h *SeatingHandler) QueuePosition(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	entries, err := eng.Queue(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	for i, en := range entries {
		if en.ID == id {
			return c.JSON(http.StatusOK, queueView{QueueEntry: en, Position: i + 1})
		}
	}
	return h.fail(c, model.ErrNotFound)
}

// Promote handles POST /file-attente/:id/promote.  The entry leaves the
// queue only when the seats were reserved.
func (h *SeatingHandler) Promote(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	res, err := eng.Promote(c.Request().Context(), id, body.SeatIDs)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Withdraw handles DELETE /file-attente/:id.
func (h *SeatingHandler) Withdraw(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	if err := eng.Withdraw(c.Request().Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
