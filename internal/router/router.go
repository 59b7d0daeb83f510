// Package router registers the HTTP routes of the seating API.
package router

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coop-transport-seating/internal/handler"
	"github.com/iliyamo/coop-transport-seating/internal/model"
)

// RegisterRoutes registers routes that are not tier-specific.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// Guards are the middlewares applied to specific route classes.  Nil
// entries are skipped.
type Guards struct {
	RateLimit echo.MiddlewareFunc // every mutating route
	Cache     echo.MiddlewareFunc // the departure history
}

type route struct {
	method string
	path   string
	handle func(h *handler.SeatingHandler) echo.HandlerFunc
	cached bool
}

var seatingRoutes = []route{
	{http.MethodPost, "/voitures", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.CreateVehicle }, false},
	{http.MethodGet, "/voitures", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.ListVehicles }, false},
	{http.MethodGet, "/voitures/:id", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.GetVehicle }, false},
	{http.MethodGet, "/voitures/:id/places", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.ListSeats }, false},
	{http.MethodPost, "/places", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.GrowSeats }, false},
	{http.MethodDelete, "/places/:id", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.DeleteSeat }, false},
	{http.MethodPost, "/clients/attribuer-places", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.Reserve }, false},
	{http.MethodPost, "/free-places", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.Release }, false},
	{http.MethodGet, "/reservations", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.SearchReservations }, false},
	{http.MethodGet, "/reservations/:id", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.GetReservation }, false},
	{http.MethodPost, "/reservations/:id/confirm-payment", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.ConfirmPayment }, false},
	{http.MethodDelete, "/attributions/:id", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.CancelAttribution }, false},
	{http.MethodPost, "/voyages", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.Depart }, false},
	{http.MethodGet, "/voitures-parties", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.History }, true},
	{http.MethodPost, "/file-attente", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.Enqueue }, false},
	{http.MethodGet, "/file-attente", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.ListQueue }, false},
	{http.MethodGet, "/file-attente/:id", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.QueuePosition }, false},
	{http.MethodPost, "/file-attente/:id/promote", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.Promote }, false},
	{http.MethodDelete, "/file-attente/:id", func(h *handler.SeatingHandler) echo.HandlerFunc { return h.Withdraw }, false},
}

// RegisterSeating registers every seating route once per tier.  Standard
// routes keep their path; the VIP mirror suffixes the first path segment
// with "-vip" (/voitures/:id/places becomes /voitures-vip/:id/places).
func RegisterSeating(e *echo.Echo, h *handler.SeatingHandler, g Guards) {
	for _, tier := range model.Tiers {
		for _, r := range seatingRoutes {
			mws := []echo.MiddlewareFunc{handler.WithTier(tier)}
			if g.RateLimit != nil && r.method != http.MethodGet {
				mws = append(mws, g.RateLimit)
			}
			if g.Cache != nil && r.cached {
				mws = append(mws, g.Cache)
			}
			e.Add(r.method, TierPath(tier, r.path), r.handle(h), mws...)
		}
	}
}

// TierPath returns the path under which tier serves path.
func TierPath(tier model.Tier, path string) string {
	if tier == model.TierStandard {
		return path
	}
	rest := strings.TrimPrefix(path, "/")
	first, tail, found := strings.Cut(rest, "/")
	if found {
		return "/" + first + "-" + string(tier) + "/" + tail
	}
	return "/" + first + "-" + string(tier)
}
