package db_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrc/retreats/internal/db"
	"github.com/dmrc/retreats/internal/models"
)

func openTemp(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "retreats.db") +
		"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
}

// TestWALMode verifies the DSN parameters enable WAL journal mode.
func TestWALMode(t *testing.T) {
	gdb, err := db.Open(db.DriverSQLite, openTemp(t))
	require.NoError(t, err)

	var mode string
	gdb.Raw("PRAGMA journal_mode").Scan(&mode)
	assert.Equal(t, "wal", mode)
}

func TestOpen_CreatesIndexes(t *testing.T) {
	gdb, err := db.Open(db.DriverSQLite, openTemp(t))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	found := indexNames(t, sqlDB, "retreat_bookings")
	for _, want := range []string{"idx_booking_retreat_created", "idx_booking_retreat_status"} {
		assert.True(t, found[want], "index %q missing; found: %v", want, found)
	}
}

func TestOpen_TicketCodeUnique(t *testing.T) {
	gdb, err := db.Open(db.DriverSQLite, openTemp(t))
	require.NoError(t, err)

	r := models.Retreat{Slug: "r", Title: "R", Status: models.RetreatOpen}
	require.NoError(t, gdb.Create(&r).Error)

	code := "DMRC-ABCDEFGH"
	first := models.RetreatBooking{RetreatID: r.ID, RetreatTitle: "R", FullName: "A", Email: "a@x.com", Phone: "12345", TicketCode: &code}
	require.NoError(t, gdb.Create(&first).Error)

	// NULL ticket codes do not collide with each other.
	for i := 0; i < 2; i++ {
		b := models.RetreatBooking{RetreatID: r.ID, RetreatTitle: "R", FullName: "N", Email: "n@x.com", Phone: "12345"}
		require.NoError(t, gdb.Create(&b).Error)
	}

	dup := models.RetreatBooking{RetreatID: r.ID, RetreatTitle: "R", FullName: "B", Email: "b@x.com", Phone: "12345", TicketCode: &code}
	assert.Error(t, gdb.Create(&dup).Error)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := db.Open("oracle", "whatever")
	assert.Error(t, err)
}

func indexNames(t *testing.T, sqlDB *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := sqlDB.Query("PRAGMA index_list(" + table + ")")
	require.NoError(t, err)
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var seq int
		var name string
		var unique bool
		var origin, partial string
		require.NoError(t, rows.Scan(&seq, &name, &unique, &origin, &partial))
		out[name] = true
	}
	return out
}
