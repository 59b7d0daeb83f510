package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

type createVehicleRequest struct {
	Itinerary   string    `json:"itinerary"`
	DepartureAt time.Time `json:"departure_at"`
	Capacity    int       `json:"capacity"`
	Tier        string    `json:"tier"`
}

// vehicleView adds the live FREE seat count to a vehicle.
type vehicleView struct {
	model.Vehicle
	AvailableSeats int `json:"available_seats"`
}

// CreateVehicle handles POST /voitures.
func (h *SeatingHandler) CreateVehicle(c echo.Context) error {
	var body createVehicleRequest
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, body.Tier)
	if err != nil {
		return h.fail(c, err)
	}
	v, err := eng.CreateVehicle(c.Request().Context(), model.NewVehicle{
		Itinerary:   body.Itinerary,
		DepartureAt: body.DepartureAt,
		Capacity:    body.Capacity,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, vehicleView{Vehicle: *v, AvailableSeats: v.Capacity})
}

// ListVehicles handles GET /voitures.  ?all=true includes departed
// vehicles.
func (h *SeatingHandler) ListVehicles(c echo.Context) error {
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	all, _ := strconv.ParseBool(c.QueryParam("all"))
	vehicles, err := eng.Vehicles(c.Request().Context(), all)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": vehicles})
}

// GetVehicle handles GET /voitures/:id.
func (h *SeatingHandler) GetVehicle(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	inv, err := eng.Inventory(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, vehicleView{Vehicle: inv.Vehicle, AvailableSeats: inv.Available()})
}

// ListSeats handles GET /voitures/:id/places: every seat ordered by
// position, with its occupant when held.
func (h *SeatingHandler) ListSeats(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	seats, err := eng.Seats(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"vehicle_id": id, "data": seats})
}

// GrowSeats handles POST /places.
func (h *SeatingHandler) GrowSeats(c echo.Context) error {
	var body struct {
		VehicleID uint64 `json:"vehicle_id"`
		Count     int    `json:"count"`
		Tier      string `json:"tier"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, body.Tier)
	if err != nil {
		return h.fail(c, err)
	}
	seats, err := eng.Grow(c.Request().Context(), body.VehicleID, body.Count)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"vehicle_id": body.VehicleID, "data": seats})
}

// DeleteSeat handles DELETE /places/:id.  Only a FREE seat of a vehicle
// that has not departed can be removed.
func (h *SeatingHandler) DeleteSeat(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, "")
	if err != nil {
		return h.fail(c, err)
	}
	seat, err := eng.RemoveSeat(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, seat)
}

// Depart handles POST /voyages.  The vehicle's seats are frozen and the
// cached history is dropped.
func (h *SeatingHandler) Depart(c echo.Context) error {
	var body struct {
		VehicleID uint64 `json:"vehicle_id"`
		Tier      string `json:"tier"`
	}
	if err := bind(c, &body); err != nil {
		return h.fail(c, err)
	}
	eng, err := h.engine(c, body.Tier)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.Request().Context()
	v, err := eng.Depart(ctx, body.VehicleID)
	if err != nil {
		return h.fail(c, err)
	}
	if h.HistoryCache != nil {
		if err := h.HistoryCache.Purge(ctx); err != nil {
			h.log.WithError(err).Warn("purge history cache failed")
		}
	}
	return c.JSON(http.StatusOK, vehicleView{Vehicle: *v})
}

// History handles GET /voitures-parties.  The standard route covers
// every tier unless ?tier= narrows it; the VIP route only lists VIP.
func (h *SeatingHandler) History(c echo.Context) error {
	tier, err := h.readTier(c)
	if err != nil {
		return h.fail(c, err)
	}
	hist, err := h.Projection.History(c.Request().Context(), tier)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": hist, "total": len(hist)})
}

// readTier resolves the tier scope of a cross-tier read.  An empty
// result means every tier.
func (h *SeatingHandler) readTier(c echo.Context) (model.Tier, error) {
	route := routeTier(c)
	raw := c.QueryParam("tier")
	if raw == "" {
		if route == model.TierStandard {
			return "", nil
		}
		return route, nil
	}
	t, err := model.ParseTier(raw)
	if err != nil {
		return "", err
	}
	if route != model.TierStandard && t != route {
		return "", invalidArg("tier %q does not match route tier %q", t, route)
	}
	return t, nil
}
