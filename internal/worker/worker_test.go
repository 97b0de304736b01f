package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"barberbot/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTelegram считает отправки, первые failFirst вызовов падают.
type fakeTelegram struct {
	domain.TelegramService

	mu        sync.Mutex
	sent      []int64
	failFirst int
	calls     int
}

func (f *fakeTelegram) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFirst {
		return tgbotapi.Message{}, errors.New("telegram unavailable")
	}
	f.sent = append(f.sent, chatID)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	// Клиппинг по MaxDelay
	assert.Equal(t, 10*time.Second, policy.NextDelay(10))
	// Нулевой attempt трактуется как первый
	assert.Equal(t, time.Second, policy.NextDelay(0))
}

func TestNotifyWorkerDelivers(t *testing.T) {
	logger := zerolog.New(io.Discard)
	telegram := &fakeTelegram{}
	w := NewNotifyWorker(telegram, RetryPolicy{}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	require.NoError(t, w.Enqueue(100, "привет"))
	require.NoError(t, w.Enqueue(200, "привет"))

	assert.Eventually(t, func() bool {
		return telegram.sentCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	w.Wait()
	assert.Equal(t, []int64{100, 200}, telegram.sent)
}

func TestNotifyWorkerRetries(t *testing.T) {
	logger := zerolog.New(io.Discard)
	telegram := &fakeTelegram{failFirst: 2}
	w := NewNotifyWorker(telegram, RetryPolicy{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, w.Enqueue(100, "напоминание"))

	assert.Eventually(t, func() bool {
		return telegram.sentCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNotifyWorkerQueueFull(t *testing.T) {
	logger := zerolog.New(io.Discard)
	telegram := &fakeTelegram{}
	w := NewNotifyWorker(telegram, RetryPolicy{}, &logger)
	w.queue = make(chan notification, 1)

	// Воркер не запущен, очередь не разгребается
	require.NoError(t, w.Enqueue(1, "x"))
	err := w.Enqueue(2, "y")
	assert.ErrorIs(t, err, ErrQueueFull)
}
