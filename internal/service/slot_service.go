package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"barberbot/internal/database"
	"barberbot/internal/domain"
	"barberbot/internal/events"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
)

// timeRe принимает только строгий формат HH:MM в диапазоне 00:00-23:59.
var timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ErrInvalidTimes возвращается с перечнем отвергнутых токенов.
type ErrInvalidTimes struct {
	Tokens []string
}

func (e *ErrInvalidTimes) Error() string {
	return fmt.Sprintf("invalid time tokens: %s", strings.Join(e.Tokens, ", "))
}

type SlotService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewSlotService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *SlotService {
	return &SlotService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// ParseTimes разбирает пользовательский ввод со временами через пробел
// или запятую. Любой невалидный токен отвергает весь ввод, чтобы админ
// не получил частично добавленный день молча. Повторы схлопываются.
func ParseTimes(input string) ([]string, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, &ErrInvalidTimes{}
	}

	var invalid []string
	seen := make(map[string]bool)
	var times []string
	for _, f := range fields {
		if !timeRe.MatchString(f) {
			invalid = append(invalid, f)
			continue
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		times = append(times, f)
	}

	if len(invalid) > 0 {
		return nil, &ErrInvalidTimes{Tokens: invalid}
	}
	return times, nil
}

// AddSlots создаёт слоты на дату и возвращает отдельно добавленные и
// уже существовавшие времена. Существующий слот не ошибка, админ
// просто видит его в отчёте.
func (s *SlotService) AddSlots(ctx context.Context, date string, times []string) (added, existing []string, err error) {
	for _, timeStr := range times {
		_, createErr := s.repo.CreateSlot(ctx, date, timeStr)
		switch {
		case createErr == nil:
			added = append(added, timeStr)
		case errors.Is(createErr, database.ErrSlotExists):
			existing = append(existing, timeStr)
		default:
			return added, existing, createErr
		}
	}

	if len(added) > 0 {
		s.logger.Info().Str("date", date).Strs("times", added).Msg("Добавлены слоты")
		s.publishSlotEvent(events.EventSlotsAdded, events.SlotEventPayload{Date: date, Times: added})
	}
	return added, existing, nil
}

// RemoveSlot удаляет свободный слот. Занятый слот не удаляется:
// сначала отменяется запись, потом удаляется слот.
func (s *SlotService) RemoveSlot(ctx context.Context, slotID int64) (*models.Slot, error) {
	slot, err := s.repo.GetSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.Booked {
		return nil, database.ErrSlotBooked
	}

	if err := s.repo.DeleteSlot(ctx, slotID); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("slot_id", slotID).Str("date", slot.Date).Str("time", slot.Time).Msg("Слот удалён")
	s.publishSlotEvent(events.EventSlotDeleted, events.SlotEventPayload{
		SlotID: slot.ID,
		Date:   slot.Date,
		Time:   slot.Time,
	})
	return slot, nil
}

func (s *SlotService) RemoveSlotByDateTime(ctx context.Context, date, timeStr string) (*models.Slot, error) {
	slot, err := s.repo.GetSlotByDateTime(ctx, date, timeStr)
	if err != nil {
		return nil, err
	}
	return s.RemoveSlot(ctx, slot.ID)
}

func (s *SlotService) FreeSlots(ctx context.Context, fromDate string) ([]*models.Slot, error) {
	return s.repo.ListFreeSlots(ctx, fromDate)
}

func (s *SlotService) FreeSlotsByDate(ctx context.Context, date string) ([]*models.Slot, error) {
	return s.repo.ListFreeSlotsByDate(ctx, date)
}

func (s *SlotService) SlotsByDate(ctx context.Context, date string) ([]*models.Slot, error) {
	return s.repo.ListSlotsByDate(ctx, date)
}

func (s *SlotService) AllSlots(ctx context.Context) ([]*models.Slot, error) {
	return s.repo.ListAllSlots(ctx)
}

func (s *SlotService) DatesWithFreeSlots(ctx context.Context, fromDate string) ([]string, error) {
	return s.repo.ListDatesWithFreeSlots(ctx, fromDate)
}

func (s *SlotService) SlotDates(ctx context.Context) ([]string, error) {
	return s.repo.ListSlotDates(ctx)
}

func (s *SlotService) SlotTimes(ctx context.Context, date string) ([]string, error) {
	return s.repo.ListSlotTimes(ctx, date)
}

func (s *SlotService) publishSlotEvent(eventType string, payload events.SlotEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
