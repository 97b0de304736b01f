package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barberbot/internal/models"
)

// ReserveSlot бронирует слот и создаёт запись в одной транзакции.
// Условный UPDATE по is_booked = 0 гарантирует, что из конкурентных
// попыток пройдёт ровно одна.
func (db *DB) ReserveSlot(ctx context.Context, slotID int64, booking *models.Booking) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE slots SET is_booked = 1 WHERE id = ? AND is_booked = 0`, slotID)
	if err != nil {
		return fmt.Errorf("failed to book slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM slots WHERE id = ?`, slotID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check slot: %w", err)
		}
		if exists == 0 {
			return ErrSlotNotFound
		}
		return ErrSlotTaken
	}

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	booking.SlotID = slotID
	booking.Status = models.StatusConfirmed

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (slot_id, user_id, username, full_name, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		booking.SlotID, booking.UserID, booking.Username, booking.FullName,
		booking.Status, booking.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get booking id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	db.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("slot_id", slotID).
		Int64("user_id", booking.UserID).
		Msg("Слот забронирован")
	return nil
}

// CancelBooking отменяет активную запись и освобождает слот. Без
// override запись должна принадлежать userID. Условный UPDATE по
// status = confirmed делает повторную отмену безопасной.
func (db *DB) CancelBooking(ctx context.Context, bookingID, userID int64, override bool) (*models.Booking, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT b.id, b.slot_id, b.user_id, b.username, b.full_name,
                     b.status, b.created_at, b.reminded_at, s.date, s.time
              FROM bookings b JOIN slots s ON s.id = b.slot_id
              WHERE b.id = ? AND b.status = ?`
	args := []interface{}{bookingID, models.StatusConfirmed}
	if !override {
		query += ` AND b.user_id = ?`
		args = append(args, userID)
	}

	var booking models.Booking
	err = tx.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID, &booking.SlotID, &booking.UserID, &booking.Username,
		&booking.FullName, &booking.Status, &booking.CreatedAt,
		&booking.RemindedAt, &booking.Date, &booking.Time)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = ?`,
		models.StatusCancelled, bookingID, models.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrBookingNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE slots SET is_booked = 0 WHERE id = ?`, booking.SlotID); err != nil {
		return nil, fmt.Errorf("failed to free slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	booking.Status = models.StatusCancelled
	db.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("slot_id", booking.SlotID).
		Bool("override", override).
		Msg("Запись отменена")
	return &booking, nil
}

const bookingColumns = `b.id, b.slot_id, b.user_id, b.username, b.full_name,
       b.status, b.created_at, b.reminded_at, s.date, s.time`

func scanBooking(row interface{ Scan(...interface{}) error }) (*models.Booking, error) {
	var booking models.Booking
	err := row.Scan(
		&booking.ID, &booking.SlotID, &booking.UserID, &booking.Username,
		&booking.FullName, &booking.Status, &booking.CreatedAt,
		&booking.RemindedAt, &booking.Date, &booking.Time)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := scanBooking(db.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings b JOIN slots s ON s.id = b.slot_id
         WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings b JOIN slots s ON s.id = b.slot_id
         WHERE b.user_id = ? AND b.status = ?
         ORDER BY s.date, s.time`, userID, models.StatusConfirmed)
}

func (db *DB) GetBookingsByDateRange(ctx context.Context, fromDate, toDate string) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings b JOIN slots s ON s.id = b.slot_id
         WHERE b.status = ? AND s.date >= ? AND s.date <= ?
         ORDER BY s.date, s.time`, models.StatusConfirmed, fromDate, toDate)
}

func (db *DB) GetDistinctBookingUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM bookings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) CountDistinctUsers(ctx context.Context) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM bookings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (db *DB) CountActiveBookings(ctx context.Context) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE status = ?`, models.StatusConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// GetUnremindedBookings возвращает активные записи без напоминания,
// чей слот попадает в окно [from, to]. Окно может пересекать полночь,
// тогда условие разбивается на границы и промежуточные даты. Строковое
// сравнение date/time корректно за счёт формата YYYY-MM-DD / HH:MM.
func (db *DB) GetUnremindedBookings(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	fromDate, fromTime := from.Format("2006-01-02"), from.Format("15:04")
	toDate, toTime := to.Format("2006-01-02"), to.Format("15:04")

	base := `SELECT ` + bookingColumns + ` FROM bookings b JOIN slots s ON s.id = b.slot_id
             WHERE b.status = ? AND b.reminded_at IS NULL AND `

	if fromDate == toDate {
		return db.queryBookings(ctx,
			base+`s.date = ? AND s.time >= ? AND s.time <= ? ORDER BY s.date, s.time`,
			models.StatusConfirmed, fromDate, fromTime, toTime)
	}
	return db.queryBookings(ctx,
		base+`((s.date = ? AND s.time >= ?) OR (s.date > ? AND s.date < ?) OR (s.date = ? AND s.time <= ?))
         ORDER BY s.date, s.time`,
		models.StatusConfirmed, fromDate, fromTime, fromDate, toDate, toDate, toTime)
}

func (db *DB) MarkReminded(ctx context.Context, bookingID int64, at time.Time) error {
	result, err := db.db.ExecContext(ctx,
		`UPDATE bookings SET reminded_at = ? WHERE id = ?`, at, bookingID)
	if err != nil {
		return fmt.Errorf("failed to mark booking reminded: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}
