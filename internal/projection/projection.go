// Package projection builds the read-only Search and History views over
// the seating engines of every tier.  Each view is computed from one
// snapshot per tier, so a seat is never reported in two states within
// the same response.
package projection

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
	dateLayout      = "2006-01-02"
)

// SnapshotSource is implemented by *seating.Engine.
type SnapshotSource interface {
	Tier() model.Tier
	Snapshot(ctx context.Context) (*model.Snapshot, error)
}

// Filter narrows a reservation search.  Every non-empty field must match.
type Filter struct {
	Date      string     // departure day, YYYY-MM-DD (UTC)
	Itinerary string     // case-insensitive substring
	Contact   string     // case-insensitive substring of the client contact
	Tier      model.Tier // empty searches every tier
	Page      int
	PageSize  int
}

// Row is one reservation in search results.
type Row struct {
	Tier          model.Tier          `json:"tier"`
	ReservationID uint64              `json:"reservation_id"`
	VehicleID     uint64              `json:"vehicle_id"`
	Itinerary     string              `json:"itinerary"`
	DepartureAt   time.Time           `json:"departure_at"`
	Departed      bool                `json:"departed"`
	ClientName    string              `json:"client_name"`
	ClientContact string              `json:"client_contact"`
	SeatIDs       []uint64            `json:"seat_ids"`
	SeatPositions []int               `json:"seat_positions"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Page is one page of search results.
type Page struct {
	Data     []Row `json:"data"`
	Total    int   `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// Departure is one departed vehicle in the history.
type Departure struct {
	Tier           model.Tier `json:"tier"`
	VehicleID      uint64     `json:"vehicle_id"`
	Itinerary      string     `json:"itinerary"`
	DepartureAt    time.Time  `json:"departure_at"`
	DepartedAt     time.Time  `json:"departed_at"`
	Capacity       int        `json:"capacity"`
	Passengers     int        `json:"passengers"`
	AvailableSeats int        `json:"available_seats"`
}

// Projector answers Search and History across tiers.
type Projector struct {
	sources []SnapshotSource
}

// New returns a Projector reading from sources, typically one engine per
// tier.
func New(sources ...SnapshotSource) *Projector {
	return &Projector{sources: sources}
}

func (p *Projector) snapshots(ctx context.Context, tier model.Tier) ([]*model.Snapshot, error) {
	out := make([]*model.Snapshot, 0, len(p.sources))
	for _, src := range p.sources {
		if tier != "" && src.Tier() != tier {
			continue
		}
		snap, err := src.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", src.Tier(), err)
		}
		out = append(out, snap)
	}
	return out, nil
}

// Search lists live reservations matching f, oldest first.
func (p *Projector) Search(ctx context.Context, f Filter) (*Page, error) {
	var day time.Time
	if d := strings.TrimSpace(f.Date); d != "" {
		parsed, err := time.Parse(dateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", model.ErrInvalidArgument)
		}
		day = parsed
	}
	itinerary := strings.ToLower(strings.TrimSpace(f.Itinerary))
	contact := strings.ToLower(strings.TrimSpace(f.Contact))

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	snaps, err := p.snapshots(ctx, f.Tier)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0)
	for _, snap := range snaps {
		vehicles := make(map[uint64]model.Vehicle, len(snap.Vehicles))
		for _, v := range snap.Vehicles {
			vehicles[v.ID] = v
		}
		for _, r := range snap.Reservations {
			v, ok := vehicles[r.VehicleID]
			if !ok {
				continue
			}
			if !day.IsZero() && v.DepartureAt.UTC().Format(dateLayout) != day.Format(dateLayout) {
				continue
			}
			if itinerary != "" && !strings.Contains(strings.ToLower(v.Itinerary), itinerary) {
				continue
			}
			if contact != "" && !strings.Contains(strings.ToLower(r.ClientContact), contact) {
				continue
			}
			rows = append(rows, newRow(snap, v, r))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		if rows[i].Tier != rows[j].Tier {
			return rows[i].Tier < rows[j].Tier
		}
		return rows[i].ReservationID < rows[j].ReservationID
	})

	out := &Page{Total: len(rows), Page: page, PageSize: size, Data: []Row{}}
	if start := (page - 1) * size; start < len(rows) {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out.Data = rows[start:end]
	}
	return out, nil
}

func newRow(snap *model.Snapshot, v model.Vehicle, r model.Reservation) Row {
	positions := make(map[uint64]int, len(r.SeatIDs))
	for _, s := range snap.Seats[v.ID] {
		positions[s.ID] = s.Position
	}
	row := Row{
		Tier:          snap.Tier,
		ReservationID: r.ID,
		VehicleID:     v.ID,
		Itinerary:     v.Itinerary,
		DepartureAt:   v.DepartureAt,
		Departed:      v.Departed,
		ClientName:    r.ClientName,
		ClientContact: r.ClientContact,
		SeatIDs:       append([]uint64(nil), r.SeatIDs...),
		SeatPositions: make([]int, 0, len(r.SeatIDs)),
		PaymentStatus: r.PaymentStatus,
		CreatedAt:     r.CreatedAt,
	}
	for _, id := range r.SeatIDs {
		row.SeatPositions = append(row.SeatPositions, positions[id])
	}
	return row
}

// History lists departed vehicles, most recent departure first.  A
// departed vehicle always reports zero available seats.  An empty tier
// covers every tier.
func (p *Projector) History(ctx context.Context, tier model.Tier) ([]Departure, error) {
	snaps, err := p.snapshots(ctx, tier)
	if err != nil {
		return nil, err
	}
	out := make([]Departure, 0)
	for _, snap := range snaps {
		for _, v := range snap.Vehicles {
			if !v.Departed {
				continue
			}
			d := Departure{
				Tier:        snap.Tier,
				VehicleID:   v.ID,
				Itinerary:   v.Itinerary,
				DepartureAt: v.DepartureAt,
				Capacity:    len(snap.Seats[v.ID]),
			}
			if v.DepartedAt != nil {
				d.DepartedAt = *v.DepartedAt
			}
			for _, s := range snap.Seats[v.ID] {
				if s.Occupied() {
					d.Passengers++
				}
			}
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DepartedAt.Equal(out[j].DepartedAt) {
			return out[i].DepartedAt.After(out[j].DepartedAt)
		}
		return out[i].VehicleID > out[j].VehicleID
	})
	return out, nil
}
