package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barberbot/internal/models"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PostgresDB - PostgreSQL-реализация domain.Repository. Даты и время
// хранятся нативными типами DATE/TIME, наружу нормализуются через
// to_char в те же строки YYYY-MM-DD и HH:MM, что и в SQLite.
type PostgresDB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewPostgresDB(cfg PostgresConfig, logger *zerolog.Logger) (*PostgresDB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := createPostgresTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("host", cfg.Host).Str("dbname", cfg.DBName).
		Msg("База данных PostgreSQL инициализирована")
	return &PostgresDB{db: db, logger: logger}, nil
}

func createPostgresTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS slots (
            id BIGSERIAL PRIMARY KEY,
            date DATE NOT NULL,
            time TIME NOT NULL,
            is_booked BOOLEAN NOT NULL DEFAULT FALSE,
            UNIQUE(date, time)
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id BIGSERIAL PRIMARY KEY,
            slot_id BIGINT NOT NULL REFERENCES slots(id),
            user_id BIGINT NOT NULL,
            username TEXT,
            full_name TEXT,
            status TEXT NOT NULL DEFAULT 'confirmed',
            created_at TIMESTAMPTZ NOT NULL,
            reminded_at TIMESTAMPTZ
        )`,

		`CREATE INDEX IF NOT EXISTS idx_slots_date ON slots(date)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_booked ON slots(is_booked)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_slot_id ON bookings(slot_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func isPqUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

const pgSlotColumns = `id, to_char(date, 'YYYY-MM-DD'), to_char(time, 'HH24:MI'), is_booked`

func (db *PostgresDB) CreateSlot(ctx context.Context, date, timeStr string) (*models.Slot, error) {
	var id int64
	err := db.db.QueryRowContext(ctx,
		`INSERT INTO slots (date, time, is_booked) VALUES ($1, $2, FALSE) RETURNING id`,
		date, timeStr).Scan(&id)
	if err != nil {
		if isPqUniqueViolation(err) {
			return nil, ErrSlotExists
		}
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}
	return &models.Slot{ID: id, Date: date, Time: timeStr}, nil
}

func (db *PostgresDB) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	var slot models.Slot
	err := db.db.QueryRowContext(ctx,
		`SELECT `+pgSlotColumns+` FROM slots WHERE id = $1`, id).
		Scan(&slot.ID, &slot.Date, &slot.Time, &slot.Booked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return &slot, nil
}

func (db *PostgresDB) GetSlotByDateTime(ctx context.Context, date, timeStr string) (*models.Slot, error) {
	var slot models.Slot
	err := db.db.QueryRowContext(ctx,
		`SELECT `+pgSlotColumns+` FROM slots WHERE date = $1 AND time = $2`, date, timeStr).
		Scan(&slot.ID, &slot.Date, &slot.Time, &slot.Booked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot by date/time: %w", err)
	}
	return &slot, nil
}

func (db *PostgresDB) DeleteSlot(ctx context.Context, id int64) error {
	result, err := db.db.ExecContext(ctx, `DELETE FROM slots WHERE id = $1`, id)
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

func (db *PostgresDB) querySlots(ctx context.Context, query string, args ...interface{}) ([]*models.Slot, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		var slot models.Slot
		if err := rows.Scan(&slot.ID, &slot.Date, &slot.Time, &slot.Booked); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}
	return slots, rows.Err()
}

func (db *PostgresDB) ListFreeSlots(ctx context.Context, fromDate string) ([]*models.Slot, error) {
	return db.querySlots(ctx,
		`SELECT `+pgSlotColumns+` FROM slots
         WHERE NOT is_booked AND date >= $1 ORDER BY date, time`, fromDate)
}

func (db *PostgresDB) ListFreeSlotsByDate(ctx context.Context, date string) ([]*models.Slot, error) {
	return db.querySlots(ctx,
		`SELECT `+pgSlotColumns+` FROM slots
         WHERE NOT is_booked AND date = $1 ORDER BY time`, date)
}

func (db *PostgresDB) ListSlotsByDate(ctx context.Context, date string) ([]*models.Slot, error) {
	return db.querySlots(ctx,
		`SELECT `+pgSlotColumns+` FROM slots WHERE date = $1 ORDER BY time`, date)
}

func (db *PostgresDB) ListAllSlots(ctx context.Context) ([]*models.Slot, error) {
	return db.querySlots(ctx,
		`SELECT `+pgSlotColumns+` FROM slots ORDER BY date, time`)
}

func (db *PostgresDB) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
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

func (db *PostgresDB) ListDatesWithFreeSlots(ctx context.Context, fromDate string) ([]string, error) {
	return db.queryStrings(ctx,
		`SELECT DISTINCT to_char(date, 'YYYY-MM-DD') FROM slots
         WHERE NOT is_booked AND date >= $1 ORDER BY 1`, fromDate)
}

func (db *PostgresDB) ListSlotDates(ctx context.Context) ([]string, error) {
	return db.queryStrings(ctx,
		`SELECT DISTINCT to_char(date, 'YYYY-MM-DD') FROM slots ORDER BY 1`)
}

func (db *PostgresDB) ListSlotTimes(ctx context.Context, date string) ([]string, error) {
	return db.queryStrings(ctx,
		`SELECT to_char(time, 'HH24:MI') FROM slots WHERE date = $1 ORDER BY time`, date)
}

func (db *PostgresDB) CountFreeSlots(ctx context.Context) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM slots WHERE NOT is_booked`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count free slots: %w", err)
	}
	return count, nil
}

func (db *PostgresDB) ReserveSlot(ctx context.Context, slotID int64, booking *models.Booking) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE slots SET is_booked = TRUE WHERE id = $1 AND NOT is_booked`, slotID)
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
			`SELECT COUNT(*) FROM slots WHERE id = $1`, slotID).Scan(&exists); err != nil {
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

	err = tx.QueryRowContext(ctx,
		`INSERT INTO bookings (slot_id, user_id, username, full_name, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		booking.SlotID, booking.UserID, booking.Username, booking.FullName,
		booking.Status, booking.CreatedAt).Scan(&booking.ID)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
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

const pgBookingColumns = `b.id, b.slot_id, b.user_id, b.username, b.full_name,
       b.status, b.created_at, b.reminded_at,
       to_char(s.date, 'YYYY-MM-DD'), to_char(s.time, 'HH24:MI')`

func (db *PostgresDB) CancelBooking(ctx context.Context, bookingID, userID int64, override bool) (*models.Booking, error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + pgBookingColumns + `
              FROM bookings b JOIN slots s ON s.id = b.slot_id
              WHERE b.id = $1 AND b.status = $2`
	args := []interface{}{bookingID, models.StatusConfirmed}
	if !override {
		query += ` AND b.user_id = $3`
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
		`UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`,
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
		`UPDATE slots SET is_booked = FALSE WHERE id = $1`, booking.SlotID); err != nil {
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

func (db *PostgresDB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := scanBooking(db.db.QueryRowContext(ctx,
		`SELECT `+pgBookingColumns+` FROM bookings b JOIN slots s ON s.id = b.slot_id
         WHERE b.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (db *PostgresDB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
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

func (db *PostgresDB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+pgBookingColumns+` FROM bookings b JOIN slots s ON s.id = b.slot_id
         WHERE b.user_id = $1 AND b.status = $2
         ORDER BY s.date, s.time`, userID, models.StatusConfirmed)
}

func (db *PostgresDB) GetBookingsByDateRange(ctx context.Context, fromDate, toDate string) ([]*models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+pgBookingColumns+` FROM bookings b JOIN slots s ON s.id = b.slot_id
         WHERE b.status = $1 AND s.date >= $2 AND s.date <= $3
         ORDER BY s.date, s.time`, models.StatusConfirmed, fromDate, toDate)
}

func (db *PostgresDB) GetDistinctBookingUserIDs(ctx context.Context) ([]int64, error) {
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

func (db *PostgresDB) CountDistinctUsers(ctx context.Context) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM bookings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (db *PostgresDB) CountActiveBookings(ctx context.Context) (int, error) {
	var count int
	err := db.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE status = $1`, models.StatusConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (db *PostgresDB) GetUnremindedBookings(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	fromDate, fromTime := from.Format("2006-01-02"), from.Format("15:04")
	toDate, toTime := to.Format("2006-01-02"), to.Format("15:04")

	base := `SELECT ` + pgBookingColumns + ` FROM bookings b JOIN slots s ON s.id = b.slot_id
             WHERE b.status = $1 AND b.reminded_at IS NULL AND `

	if fromDate == toDate {
		return db.queryBookings(ctx,
			base+`s.date = $2 AND s.time >= $3 AND s.time <= $4 ORDER BY s.date, s.time`,
			models.StatusConfirmed, fromDate, fromTime, toTime)
	}
	return db.queryBookings(ctx,
		base+`((s.date = $2 AND s.time >= $3) OR (s.date > $4 AND s.date < $5) OR (s.date = $6 AND s.time <= $7))
         ORDER BY s.date, s.time`,
		models.StatusConfirmed, fromDate, fromTime, fromDate, toDate, toDate, toTime)
}

func (db *PostgresDB) MarkReminded(ctx context.Context, bookingID int64, at time.Time) error {
	result, err := db.db.ExecContext(ctx,
		`UPDATE bookings SET reminded_at = $1 WHERE id = $2`, at, bookingID)
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

func (db *PostgresDB) Close() error {
	return db.db.Close()
}
