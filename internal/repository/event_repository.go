package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EventRow is one event joined with its device, as listed in event
// reports.
type EventRow struct {
	EventID    int64
	DeviceName string
	Group      string
	IMEI       string
	Speed      float64
	Message    string
	Latitude   float64
	Longitude  float64
	CreatedAt  time.Time
}

// EventRepository handles database operations for device events
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventsByAccount retrieves an account's raw events in [start, end],
// newest first. Classification happens client-side on the messages.
func (r *EventRepository) EventsByAccount(ctx context.Context, accountID int64, start, end time.Time) ([]EventRow, error) {
	query := `SELECT e.id, d.name, COALESCE(d.group_title, ''), d.imei,
			e.speed, e.message, e.latitude, e.longitude, e.created_at
		FROM events e
		JOIN devices d ON e.device_id = d.id
		WHERE d.account_id = ? AND d.deleted = 0 AND e.deleted = 0
			AND e.created_at >= ? AND e.created_at <= ?
		ORDER BY e.created_at DESC`

	return r.queryEvents(ctx, query, accountID, start.Unix(), end.Unix())
}

// OverspeedEvents retrieves overspeed events, optionally restricted to
// one vehicle group (BUS, HEAVY, LIGHT). An empty group matches all.
func (r *EventRepository) OverspeedEvents(ctx context.Context, accountID int64, start, end time.Time, group string) ([]EventRow, error) {
	query := `SELECT e.id, d.name, COALESCE(d.group_title, ''), d.imei,
			e.speed, e.message, e.latitude, e.longitude, e.created_at
		FROM events e
		JOIN devices d ON e.device_id = d.id
		WHERE d.account_id = ? AND d.deleted = 0 AND e.deleted = 0
			AND e.type LIKE '%speed%'
			AND e.created_at >= ? AND e.created_at <= ?`
	args := []interface{}{accountID, start.Unix(), end.Unix()}

	if group != "" {
		query += ` AND UPPER(d.group_title) = ?`
		args = append(args, group)
	}
	query += ` ORDER BY e.created_at DESC`

	return r.queryEvents(ctx, query, args...)
}

// MessagesByDevice returns the raw event messages for a set of
// devices over a window, keyed by device. Devices without events map
// to no entry.
func (r *EventRepository) MessagesByDevice(ctx context.Context, deviceIDs []int64, start, end time.Time) (map[int64][]string, error) {
	messages := make(map[int64][]string)
	if len(deviceIDs) == 0 {
		return messages, nil
	}

	query := `SELECT device_id, message FROM events
		WHERE deleted = 0 AND created_at >= ? AND created_at <= ?
			AND device_id IN (` + placeholders(len(deviceIDs)) + `)`
	args := []interface{}{start.Unix(), end.Unix()}
	for _, id := range deviceIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var deviceID int64
		var message string
		if err := rows.Scan(&deviceID, &message); err != nil {
			return nil, fmt.Errorf("failed to scan event message: %w", err)
		}
		messages[deviceID] = append(messages[deviceID], message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event messages: %w", err)
	}

	return messages, nil
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]EventRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		var ts int64
		if err := rows.Scan(&e.EventID, &e.DeviceName, &e.Group, &e.IMEI,
			&e.Speed, &e.Message, &e.Latitude, &e.Longitude, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.CreatedAt = time.Unix(ts, 0).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return events, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := "?"
	for i := 1; i < n; i++ {
		out += ", ?"
	}
	return out
}
