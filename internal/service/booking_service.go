package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bengkel-bot/internal/models"
	"bengkel-bot/internal/repository"
	"bengkel-bot/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSchedulingExhausted = errors.New("no free booking slot within horizon")
	ErrBookingUnavailable  = errors.New("booking store unavailable")
	// ErrBookingReloadFailed means the job card was committed but could not
	// be read back. Retrying the booking would store it a second time.
	ErrBookingReloadFailed = errors.New("job card stored but not reloaded")
)

// BookingReloadError carries the id of a committed job card whose re-read
// failed.
type BookingReloadError struct {
	ID  uuid.UUID
	Err error
}

func (e *BookingReloadError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrBookingReloadFailed, e.ID, e.Err)
}

func (e *BookingReloadError) Is(target error) bool { return target == ErrBookingReloadFailed }

func (e *BookingReloadError) Unwrap() error { return e.Err }

const (
	DefaultDailyCapacity = 5
	DefaultHorizonDays   = 365
)

type JobCardStore interface {
	WithScheduleLock(ctx context.Context, fn func(repository.JobCardTx) error) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JobCard, error)
	ListByDate(ctx context.Context, date time.Time) ([]*models.JobCard, error)
}

type dayCounter interface {
	CountByDate(ctx context.Context, date time.Time) (int, error)
}

type BookingConfig struct {
	DailyCapacity int
	HorizonDays   int
}

type BookingRequest struct {
	SenderName string
	CarBrand   string
	CarModel   string
	Plate      string
	Complaint  string
}

// BookingService assigns job cards to the first day with spare capacity,
// starting tomorrow.
type BookingService struct {
	store   JobCardStore
	cfg     BookingConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewBookingService(store JobCardStore, cfg BookingConfig, m *metrics.Metrics, logger *zap.Logger) *BookingService {
	if cfg.DailyCapacity <= 0 {
		cfg.DailyCapacity = DefaultDailyCapacity
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultHorizonDays
	}
	return &BookingService{
		store:   store,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// calendarDay returns the date of t, in t's location, as midnight UTC.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ScheduleNext finds the first date from tomorrow on that has fewer than the
// daily capacity of bookings and returns it with the next queue position.
func (s *BookingService) ScheduleNext(ctx context.Context, counter dayCounter, now time.Time) (time.Time, int, error) {
	candidate := calendarDay(now).AddDate(0, 0, 1)
	for i := 0; i < s.cfg.HorizonDays; i++ {
		count, err := counter.CountByDate(ctx, candidate)
		if err != nil {
			return time.Time{}, 0, err
		}
		if count < s.cfg.DailyCapacity {
			return candidate, count + 1, nil
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
	return time.Time{}, 0, ErrSchedulingExhausted
}

// Book schedules and stores a job card, then returns the row as persisted.
func (s *BookingService) Book(ctx context.Context, req BookingRequest) (*models.JobCard, error) {
	if s.store == nil {
		s.metrics.ObserveBooking("unavailable")
		return nil, ErrBookingUnavailable
	}

	now := s.now()
	card := &models.JobCard{
		ID:         uuid.New(),
		SenderName: sanitizeText(req.SenderName),
		CarBrand:   sanitizeText(req.CarBrand),
		CarModel:   sanitizeText(req.CarModel),
		Plate:      sanitizeText(req.Plate),
		Complaint:  sanitizeText(req.Complaint),
		CreatedAt:  now,
		Status:     models.JobCardStatusWaiting,
	}

	err := s.store.WithScheduleLock(ctx, func(tx repository.JobCardTx) error {
		date, position, err := s.ScheduleNext(ctx, tx, now)
		if err != nil {
			return err
		}
		card.ScheduledDate = date
		card.QueuePosition = position
		return tx.Insert(ctx, card)
	})
	if err != nil {
		if errors.Is(err, ErrSchedulingExhausted) {
			s.metrics.ObserveBooking("exhausted")
			return nil, err
		}
		s.metrics.ObserveBooking("failed")
		return nil, fmt.Errorf("%w: %v", ErrBookingUnavailable, err)
	}

	stored, err := s.store.GetByID(ctx, card.ID)
	if err != nil {
		s.metrics.ObserveBooking("reload_failed")
		s.logger.Error("Job card committed but reload failed",
			zap.String("id", card.ID.String()), zap.Error(err))
		return nil, &BookingReloadError{ID: card.ID, Err: err}
	}

	s.metrics.ObserveBooking("booked")
	s.logger.Info("Job card booked",
		zap.String("id", stored.ID.String()),
		zap.String("scheduled_date", stored.ScheduledDate.Format(models.DateLayout)),
		zap.Int("queue_position", stored.QueuePosition))
	return stored, nil
}

func (s *BookingService) ListByDate(ctx context.Context, date time.Time) ([]*models.JobCard, error) {
	if s.store == nil {
		return nil, ErrBookingUnavailable
	}
	return s.store.ListByDate(ctx, calendarDay(date))
}

func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*models.JobCard, error) {
	if s.store == nil {
		return nil, ErrBookingUnavailable
	}
	return s.store.GetByID(ctx, id)
}
