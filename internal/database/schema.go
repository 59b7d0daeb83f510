package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

// Tables names the MySQL tables of one tier.  The standard tier uses the
// bare names; every other tier appends "_<tier>" so the two tiers never
// share a row.
type Tables struct {
	Vehicles     string
	Seats        string
	Reservations string
}

// TablesFor returns the table set of tier.
func TablesFor(tier model.Tier) Tables {
	suffix := ""
	if tier != model.TierStandard {
		suffix = "_" + string(tier)
	}
	return Tables{
		Vehicles:     "vehicles" + suffix,
		Seats:        "seats" + suffix,
		Reservations: "reservations" + suffix,
	}
}

// Expand substitutes {vehicles}, {seats} and {reservations} in query.
func (t Tables) Expand(query string) string {
	return strings.NewReplacer(
		"{vehicles}", t.Vehicles,
		"{seats}", t.Seats,
		"{reservations}", t.Reservations,
	).Replace(query)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS {vehicles} (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		itinerary    VARCHAR(255)    NOT NULL,
		departure_at DATETIME(6)     NOT NULL,
		departed     TINYINT(1)      NOT NULL DEFAULT 0,
		departed_at  DATETIME(6)     NULL,
		created_at   DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (id),
		KEY idx_departure (departure_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS {reservations} (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		vehicle_id     BIGINT UNSIGNED NOT NULL,
		client_name    VARCHAR(255)    NOT NULL,
		client_contact VARCHAR(255)    NOT NULL,
		payment_status ENUM('TO_COLLECT','PAID') NOT NULL DEFAULT 'TO_COLLECT',
		created_at     DATETIME(6)     NOT NULL,
		paid_at        DATETIME(6)     NULL,
		PRIMARY KEY (id),
		KEY idx_vehicle (vehicle_id),
		CONSTRAINT fk_{reservations}_vehicle FOREIGN KEY (vehicle_id) REFERENCES {vehicles} (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS {seats} (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		vehicle_id     BIGINT UNSIGNED NOT NULL,
		position       INT UNSIGNED    NOT NULL,
		status         ENUM('FREE','PENDING_PAYMENT','PAID') NOT NULL DEFAULT 'FREE',
		reservation_id BIGINT UNSIGNED NULL,
		version        INT UNSIGNED    NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		KEY idx_vehicle_position (vehicle_id, position),
		KEY idx_reservation (reservation_id),
		CONSTRAINT fk_{seats}_vehicle FOREIGN KEY (vehicle_id) REFERENCES {vehicles} (id),
		CONSTRAINT fk_{seats}_reservation FOREIGN KEY (reservation_id) REFERENCES {reservations} (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables of tier when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB, tier model.Tier) error {
	t := TablesFor(tier)
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, t.Expand(stmt)); err != nil {
			return fmt.Errorf("migrate %s: %w", tier, err)
		}
	}
	return nil
}
