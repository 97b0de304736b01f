package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB - SQLite-реализация domain.Repository. Дата и время хранятся
// текстом (YYYY-MM-DD и HH:MM), is_booked - как 0/1.
type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite переносит только одну пишущую транзакцию за раз
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("База данных инициализирована")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS slots (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            is_booked INTEGER NOT NULL DEFAULT 0,
            UNIQUE(date, time)
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            slot_id INTEGER NOT NULL REFERENCES slots(id),
            user_id INTEGER NOT NULL,
            username TEXT,
            full_name TEXT,
            status TEXT NOT NULL DEFAULT 'confirmed',
            created_at DATETIME NOT NULL,
            reminded_at DATETIME
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

// SeedSlots наполняет пустую базу слотами на ближайшие дни (локальная
// разработка). На непустой базе ничего не делает.
func (db *DB) SeedSlots(ctx context.Context, days, fromHour, toHour int) (int, error) {
	var count int
	if err := db.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM slots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	added := 0
	today := time.Now()
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i).Format("2006-01-02")
		for hour := fromHour; hour <= toHour; hour++ {
			timeStr := fmt.Sprintf("%02d:00", hour)
			if _, err := db.db.ExecContext(ctx,
				`INSERT OR IGNORE INTO slots (date, time, is_booked) VALUES (?, ?, 0)`,
				date, timeStr); err != nil {
				return added, fmt.Errorf("failed to seed slot %s %s: %w", date, timeStr, err)
			}
			added++
		}
	}

	db.logger.Info().Int("slots", added).Msg("Добавлены стартовые слоты")
	return added, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

func (db *DB) Close() error {
	return db.db.Close()
}
