// Package repository implements the storage behind the seating engine:
// a MySQL seat store, an in-memory seat store, a Redis waiting queue and
// an in-memory waiting queue.  Every implementation reports failures
// with the sentinels of package model so handlers can map them without
// knowing which backend is active.
package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/coop-transport-seating/internal/model"
)

// MySQL server error numbers treated as lock contention.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
	mysqlLockNowait      = 3572
)

// isLockContention reports whether err means another transaction holds
// the rows we need.  Seat reservation never waits on such locks; the
// caller reports a seat conflict instead.
func isLockContention(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	switch me.Number {
	case mysqlLockWaitTimeout, mysqlDeadlock, mysqlLockNowait:
		return true
	}
	return false
}

// notFound maps sql.ErrNoRows to model.ErrNotFound for the named entity.
func notFound(err error, what string, id uint64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %d", model.ErrNotFound, what, id)
	}
	return err
}
