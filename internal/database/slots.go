package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"barberbot/internal/models"
)

func (db *DB) CreateSlot(ctx context.Context, date, timeStr string) (*models.Slot, error) {
	result, err := db.db.ExecContext(ctx,
		`INSERT INTO slots (date, time, is_booked) VALUES (?, ?, 0)`, date, timeStr)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotExists
		}
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &models.Slot{ID: id, Date: date, Time: timeStr}, nil
}

func (db *DB) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	var slot models.Slot
	var booked int
	err := db.db.QueryRowContext(ctx,
		`SELECT id, date, time, is_booked FROM slots WHERE id = ?`, id).
		Scan(&slot.ID, &slot.Date, &slot.Time, &booked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	slot.Booked = booked != 0
	return &slot, nil
}

func (db *DB) GetSlotByDateTime(ctx context.Context, date, timeStr string) (*models.Slot, error) {
	var slot models.Slot
	var booked int
	err := db.db.QueryRowContext(ctx,
		`SELECT id, date, time, is_booked FROM slots WHERE date = ? AND time = ?`, date, timeStr).
		Scan(&slot.ID, &slot.Date, &slot.Time, &booked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot by date/time: %w", err)
	}
	slot.Booked = booked != 0
	return &slot, nil
}

func (db *DB) DeleteSlot(ctx context.Context, id int64) error {
	result, err := db.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (db *DB) querySlots(ctx context.Context, query string, args ...interface{}) ([]*models.Slot, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		var slot models.Slot
		var booked int
		if err := rows.Scan(&slot.ID, &slot.Date, &slot.Time, &booked); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slot.Booked = booked != 0
		slots = append(slots, &slot)
	}
	return slots, rows.Err()
}

func (db *DB) ListFreeSlots(ctx context.Context, fromDate string) ([]*models.Slot, error) {
	return db.querySlots(ctx,
		`SELECT id, date, time, is_booked FROM slots
         WHERE is_booked = 0 AND date >= ? ORDER BY date, time`, fromDate)
}

func (db *DB) ListFreeSlotsByDate(ctx context.Context, date string) ([]*models.Slot, error) {
	return db.querySlots(ctx,
		`SELECT id, date, time, is_booked FROM slots
         WHERE is_booked = 0 AND date = ? ORDER BY time`, date)
}

func (db *DB) ListSlotsByDate(ctx context.Context, date string) ([]*models.Slot, error) {
	return db.querySlots(ctx,
		`SELECT id, date, time, is_booked FROM slots WHERE date = ? ORDER BY time`, date)
}

func (db *DB) ListAllSlots(ctx context.Context) ([]*models.Slot, error) {
	return db.querySlots(ctx,
		`SELECT id, date, time, is_booked FROM slots ORDER BY date, time`)
}

func (db *DB) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (db *DB) ListDatesWithFreeSlots(ctx context.Context, fromDate string) ([]string, error) {
	return db.queryStrings(ctx,
		`SELECT DISTINCT date FROM slots WHERE is_booked = 0 AND date >= ? ORDER BY date`, fromDate)
}

func (db *DB) ListSlotDates(ctx context.Context) ([]string, error) {
	return db.queryStrings(ctx, `SELECT DISTINCT date FROM slots ORDER BY date`)
}

func (db *DB) ListSlotTimes(ctx context.Context, date string) ([]string, error) {
	return db.queryStrings(ctx, `SELECT time FROM slots WHERE date = ? ORDER BY time`, date)
}

func (db *DB) CountFreeSlots(ctx context.Context) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots WHERE is_booked = 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count free slots: %w", err)
	}
	return count, nil
}
