package database

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist. Timestamps are
// unix seconds; booleans are 0/1.
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS devices (
			id INTEGER PRIMARY KEY,
			account_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			imei TEXT NOT NULL,
			group_title TEXT,
			plate_number TEXT,
			deleted INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_devices_account ON devices(account_id)`,

		`CREATE TABLE IF NOT EXISTS positions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id INTEGER NOT NULL REFERENCES devices(id),
			timestamp INTEGER NOT NULL,
			speed REAL NOT NULL DEFAULT 0,
			ignition INTEGER NOT NULL DEFAULT 0,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			distance REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_device_time ON positions(device_id, timestamp)`,

		`CREATE TABLE IF NOT EXISTS geofences (
			id INTEGER PRIMARY KEY,
			account_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			coordinates TEXT,
			center_lat REAL,
			center_lng REAL,
			radius_m REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_geofences_account ON geofences(account_id)`,

		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id INTEGER NOT NULL REFERENCES devices(id),
			type TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			speed REAL NOT NULL DEFAULT 0,
			latitude REAL NOT NULL DEFAULT 0,
			longitude REAL NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_device_time ON events(device_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
