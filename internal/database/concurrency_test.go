package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentReserve(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	dbPath := filepath.Join(t.TempDir(), "concurrency.db")
	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	slot, err := db.CreateSlot(ctx, "2025-06-01", "10:00")
	require.NoError(t, err)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			results <- db.ReserveSlot(ctx, slot.ID, testBooking(int64(id)))
		}(i)
	}

	wg.Wait()
	close(results)

	successCount := 0
	takenCount := 0
	for err := range results {
		switch {
		case err == nil:
			successCount++
		case errors.Is(err, ErrSlotTaken):
			takenCount++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	// Слот один, пройти должна ровно одна бронь
	assert.Equal(t, 1, successCount, "exactly one reservation should succeed")
	assert.Equal(t, numGoroutines-1, takenCount)

	active, err := db.CountActiveBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active)

	got, err := db.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, got.Booked)
}
