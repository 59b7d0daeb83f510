// Package handler exposes the seating engine over HTTP.  Every route is
// registered once per tier; the tier is bound to the request by WithTier
// so the same handler serves /voitures and /voitures-vip.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/coop-transport-seating/internal/model"
	"github.com/iliyamo/coop-transport-seating/internal/projection"
	"github.com/iliyamo/coop-transport-seating/internal/seating"
)

const tierKey = "tier"

// Purger drops cached read responses.  *middleware.ResponseCache
// implements it.
type Purger interface {
	Purge(ctx context.Context) error
}

// SeatingHandler bundles the per-tier engines and the cross-tier read
// projections.
type SeatingHandler struct {
	Tiers        *seating.Tiers
	Projection   *projection.Projector
	HistoryCache Purger // optional; purged after every departure

	log *logrus.Entry
}

// NewSeatingHandler panics if a required dependency is nil.
func NewSeatingHandler(tiers *seating.Tiers, proj *projection.Projector, history Purger, logger *logrus.Logger) *SeatingHandler {
	if tiers == nil || proj == nil || logger == nil {
		panic("nil dependency passed to NewSeatingHandler")
	}
	return &SeatingHandler{
		Tiers:        tiers,
		Projection:   proj,
		HistoryCache: history,
		log:          logger.WithField("component", "http"),
	}
}

// WithTier binds the routes of a group to one tier.
func WithTier(tier model.Tier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(tierKey, tier)
			return next(c)
		}
	}
}

func routeTier(c echo.Context) model.Tier {
	if t, ok := c.Get(tierKey).(model.Tier); ok {
		return t
	}
	return model.TierStandard
}

// engine resolves the engine of the route's tier.  A tier given in the
// request body must agree with the route.
func (h *SeatingHandler) engine(c echo.Context, bodyTier string) (*seating.Engine, error) {
	tier := routeTier(c)
	if strings.TrimSpace(bodyTier) != "" {
		t, err := model.ParseTier(bodyTier)
		if err != nil {
			return nil, err
		}
		if t != tier {
			return nil, invalidArg("tier %q does not match route tier %q", t, tier)
		}
	}
	return h.Tiers.For(tier)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error       string   `json:"error"`
	Message     string   `json:"message"`
	Unavailable []uint64 `json:"unavailable,omitempty"`

	EntryID       uint64 `json:"entry_id,omitempty"`
	ReservationID uint64 `json:"reservation_id,omitempty"`
}

// fail maps the seating error taxonomy to HTTP responses.  Anything else
// is an infrastructure fault and becomes an opaque 500.
func (h *SeatingHandler) fail(c echo.Context, err error) error {
	var perr *seating.PromotionError
	if errors.As(err, &perr) {
		h.log.WithError(err).Error("promotion left unreconciled")
		return c.JSON(http.StatusInternalServerError, errorBody{
			Error: "promotion_unreconciled", Message: err.Error(),
			EntryID: perr.EntryID, ReservationID: perr.ReservationID,
		})
	}
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid_argument", Message: err.Error()})
	case errors.Is(err, model.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Error: "not_found", Message: err.Error()})
	case errors.Is(err, model.ErrSeatConflict):
		unavailable := model.ConflictingSeats(err)
		if unavailable == nil {
			unavailable = []uint64{}
		}
		return c.JSON(http.StatusConflict, errorBody{Error: "seat_conflict", Message: err.Error(), Unavailable: unavailable})
	case errors.Is(err, model.ErrVehicleDeparted):
		return c.JSON(http.StatusGone, errorBody{Error: "vehicle_departed", Message: err.Error()})
	}
	h.log.WithError(err).WithFields(logrus.Fields{"method": c.Request().Method, "path": c.Request().URL.Path}).Error("request failed")
	return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal error"})
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", model.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, invalidArg("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}

func bind(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return invalidArg("invalid request body")
	}
	return nil
}
