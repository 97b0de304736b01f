package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"barberbot/internal/domain"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var ErrQueueFull = errors.New("notification queue is full")

// notification - одно исходящее сообщение.
type notification struct {
	ChatID int64
	Text   string
}

// NotifyWorker отправляет уведомления из очереди, выравнивая темп под
// лимиты Telegram. Сбой доставки одному получателю не трогает
// остальных: сообщение ретраится с бэкоффом и затем отбрасывается.
type NotifyWorker struct {
	telegram    domain.TelegramService
	queue       chan notification
	limiter     *rate.Limiter
	retryPolicy RetryPolicy
	logger      *zerolog.Logger
	wg          sync.WaitGroup
}

func NewNotifyWorker(telegram domain.TelegramService, retry RetryPolicy, logger *zerolog.Logger) *NotifyWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &NotifyWorker{
		telegram: telegram,
		queue:    make(chan notification, models.NotifyQueueSize),
		// ~25 сообщений в секунду, чуть ниже лимита Telegram
		limiter:     rate.NewLimiter(rate.Limit(25), 5),
		retryPolicy: retry,
		logger:      logger,
	}
}

// Enqueue ставит сообщение в очередь. Полная очередь - ошибка, а не
// блокировка: вызывающий поток обрабатывает апдейты и ждать не может.
func (w *NotifyWorker) Enqueue(chatID int64, text string) error {
	select {
	case w.queue <- notification{ChatID: chatID, Text: text}:
		return nil
	default:
		w.logger.Warn().Int64("chat_id", chatID).Msg("Очередь уведомлений переполнена, сообщение отброшено")
		return ErrQueueFull
	}
}

// Start запускает цикл доставки до отмены контекста.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-w.queue:
				if err := w.limiter.Wait(ctx); err != nil {
					return
				}
				w.deliver(ctx, n)
			}
		}
	}()
}

// Wait блокируется до завершения цикла доставки.
func (w *NotifyWorker) Wait() {
	w.wg.Wait()
}

func (w *NotifyWorker) deliver(ctx context.Context, n notification) {
	var err error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		_, err = w.telegram.SendMessage(n.ChatID, n.Text)
		if err == nil {
			return
		}

		if attempt < w.retryPolicy.MaxRetries {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.retryPolicy.NextDelay(attempt)):
			}
		}
	}

	w.logger.Error().Err(err).Int64("chat_id", n.ChatID).Msg("Не удалось доставить уведомление")
}
