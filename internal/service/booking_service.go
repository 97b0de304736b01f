package service

import (
	"context"

	"barberbot/internal/domain"
	"barberbot/internal/events"
	"barberbot/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Reserve бронирует слот по дате и времени. Гонка двух клиентов
// решается в хранилище: проигравший получает database.ErrSlotTaken.
func (s *BookingService) Reserve(ctx context.Context, date, timeStr string, userID int64, username, fullName string) (*models.Booking, error) {
	slot, err := s.repo.GetSlotByDateTime(ctx, date, timeStr)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:   userID,
		Username: username,
		FullName: fullName,
	}
	if err := s.repo.ReserveSlot(ctx, slot.ID, booking); err != nil {
		return nil, err
	}
	booking.Date = slot.Date
	booking.Time = slot.Time

	s.publishEvent(events.EventBookingCreated, booking, 0)
	return booking, nil
}

// Cancel отменяет запись. admin=true снимает проверку владельца,
// фактический инициатор попадает в событие.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID int64, admin bool) (*models.Booking, error) {
	booking, err := s.repo.CancelBooking(ctx, bookingID, userID, admin)
	if err != nil {
		return nil, err
	}

	var cancelledBy int64
	if admin {
		cancelledBy = userID
	}
	s.publishEvent(events.EventBookingCancelled, booking, cancelledBy)
	return booking, nil
}

func (s *BookingService) UserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return s.repo.GetUserBookings(ctx, userID)
}

func (s *BookingService) BookingsByDateRange(ctx context.Context, fromDate, toDate string) ([]*models.Booking, error) {
	return s.repo.GetBookingsByDateRange(ctx, fromDate, toDate)
}

// BroadcastAudience - все пользователи, когда-либо делавшие запись.
func (s *BookingService) BroadcastAudience(ctx context.Context) ([]int64, error) {
	return s.repo.GetDistinctBookingUserIDs(ctx)
}

func (s *BookingService) Stats(ctx context.Context) (*models.Stats, error) {
	users, err := s.repo.CountDistinctUsers(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.CountActiveBookings(ctx)
	if err != nil {
		return nil, err
	}
	free, err := s.repo.CountFreeSlots(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Stats{
		DistinctUsers:  users,
		ActiveBookings: active,
		FreeSlots:      free,
	}, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, cancelledBy int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		SlotID:      booking.SlotID,
		UserID:      booking.UserID,
		Username:    booking.Username,
		FullName:    booking.FullName,
		Date:        booking.Date,
		Time:        booking.Time,
		Status:      booking.Status,
		CancelledBy: cancelledBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
