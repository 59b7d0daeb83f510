package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coop-transport-seating/internal/model"
	"github.com/iliyamo/coop-transport-seating/internal/projection"
	"github.com/iliyamo/coop-transport-seating/internal/seating"
)

type reserveRequest struct {
	SeatIDs       []uint64 `json:"seat_ids"`
	ClientName    string   `json:"client_name"`
	ClientContact string   `json:"client_contact"`
	Tier          string   `json:"tier"`
}

// Reserve handles POST /clients/attribuer-places.  All requested seats
// are assigned together or none is; on conflict the response lists the
// seats that were not free.
func (h *SeatingHandler) Reserve(c echo.Context) error {
	var body reserveRequest
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, body.Tier)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := eng.TryReserve(c.Request().Context(), seating.ReserveRequest{
		SeatIDs:       body.SeatIDs,
		ClientName:    body.ClientName,
		ClientContact: body.ClientContact,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Release handles POST /free-places.  The body names either seat ids or
// one reservation id, never both.
func (h *SeatingHandler) Release(c echo.Context) error {
	var body struct {
		SeatIDs       []uint64 `json:"seat_ids"`
		ReservationID uint64   `json:"reservation_id"`
		Tier          string   `json:"tier"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, body.Tier)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.Request().Context()
	switch {
	case len(body.SeatIDs) > 0 && body.ReservationID != 0:
		return h.fail(c, invalidArg("give either seat_ids or reservation_id"))
	case body.ReservationID != 0:
		rel, err := eng.ReleaseReservation(ctx, body.ReservationID)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"released": []model.SeatRelease{*rel}})
	case len(body.SeatIDs) > 0:
		rels, err := eng.ReleaseSeats(ctx, body.SeatIDs)
		if err != nil {
			return h.fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"released": rels})
	default:
		return h.fail(c, invalidArg("seat_ids or reservation_id is required"))
	}
}

// CancelAttribution handles DELETE /attributions/:id: every seat of the
// reservation goes back to FREE.
func (h *SeatingHandler) CancelAttribution(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	rel, err := eng.ReleaseReservation(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, rel)
}

// GetReservation handles GET /reservations/:id.
func (h *SeatingHandler) GetReservation(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	res, err := eng.Reservation(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ConfirmPayment handles POST /reservations/:id/confirm-payment.
// Confirming a paid reservation again succeeds without change.
func (h *SeatingHandler) ConfirmPayment(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	res, err := eng.ConfirmPayment(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// SearchReservations handles GET /reservations with the optional date,
// itinerary, contact, tier, page and page_size query parameters.
func (h *SeatingHandler) SearchReservations(c echo.Context) error {
	tier, err := h.readTier(c)
	if err != nil {
		return h.fail(c, err)
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	out, err := h.Projection.Search(c.Request().Context(), projection.Filter{
		Date:      c.QueryParam("date"),
		Itinerary: c.QueryParam("itinerary"),
		Contact:   c.QueryParam("contact"),
		Tier:      tier,
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
