package repository

import (
	"context"
	"testing"
	"time"

	"barberbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(30 * time.Minute)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.UserState{
			UserID:      1,
			CurrentStep: models.StateBookingSelectDate,
			TempData:    map[string]interface{}{"date": "2025-06-01"},
		}

		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StateBookingSelectDate, got.CurrentStep)
	})

	t.Run("GetNonExistentState", func(t *testing.T) {
		got, err := repo.GetState(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("StateExpires", func(t *testing.T) {
		short := NewMemoryStateRepository(time.Millisecond)
		state := &models.UserState{UserID: 2, CurrentStep: models.StateBroadcastEnterText}
		require.NoError(t, short.SetState(ctx, state))

		time.Sleep(5 * time.Millisecond)

		got, err := short.GetState(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		state := &models.UserState{UserID: 3, CurrentStep: models.StateMainMenu}
		require.NoError(t, repo.SetState(ctx, state))
		require.NoError(t, repo.ClearState(ctx, 3))

		got, err := repo.GetState(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		userID := int64(4)

		allowed, err := repo.CheckRateLimit(ctx, userID, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, 2, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("RateLimitWindowResets", func(t *testing.T) {
		userID := int64(5)

		allowed, err := repo.CheckRateLimit(ctx, userID, 1, time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, userID, 1, time.Millisecond)
		require.NoError(t, err)
		assert.False(t, allowed)

		time.Sleep(5 * time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, userID, 1, time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
