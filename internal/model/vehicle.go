package model

import "time"

// Vehicle is one scheduled departure of the cooperative.  A vehicle's
// capacity is never stored separately: it is the number of seats that
// reference it.  Departed is a one-way flag; once set, the vehicle's
// seats are frozen and the vehicle moves to the history projection.
//
// Fields:
//
//	ID          – primary key identifier.
//	Tier        – service class (standard or vip).
//	Itinerary   – human readable route label (e.g. "Antananarivo - Toamasina").
//	DepartureAt – scheduled departure time (UTC).
//	Capacity    – derived seat count.
//	Departed    – whether the departure operation has run.
//	DepartedAt  – when the departure operation ran (nil until departed).
//	CreatedAt   – creation timestamp.
type Vehicle struct {
	ID          uint64     `json:"id"`
	Tier        Tier       `json:"tier"`
	Itinerary   string     `json:"itinerary"`
	DepartureAt time.Time  `json:"departure_at"`
	Capacity    int        `json:"capacity"`
	Departed    bool       `json:"departed"`
	DepartedAt  *time.Time `json:"departed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewVehicle carries the administrator input used to register a vehicle.
type NewVehicle struct {
	Itinerary   string
	DepartureAt time.Time
	Capacity    int
}
