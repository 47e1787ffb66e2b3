package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bengkel-bot/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var ErrJobCardNotFound = errors.New("job card not found")

// scheduleLockKey identifies the advisory lock that serialises every
// count-then-insert booking sequence.
const scheduleLockKey int64 = 0x62656e676b656c

var jobCardColumns = []string{
	"id::text", "sender_name", "car_brand", "car_model", "plate", "complaint",
	"created_at", "scheduled_date", "queue_position", "status",
}

// JobCardTx is the view of the job card table available while the schedule
// lock is held.
type JobCardTx interface {
	CountByDate(ctx context.Context, date time.Time) (int, error)
	Insert(ctx context.Context, card *models.JobCard) error
}

type JobCardRepository struct {
	db     DB
	logger *zap.Logger
}

func NewJobCardRepository(db DB, logger *zap.Logger) *JobCardRepository {
	return &JobCardRepository{
		db:     db,
		logger: logger,
	}
}

// WithScheduleLock runs fn inside a transaction holding the booking advisory
// lock. The transaction commits only if fn returns nil.
func (r *JobCardRepository) WithScheduleLock(ctx context.Context, fn func(JobCardTx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", scheduleLockKey); err != nil {
		return fmt.Errorf("acquire schedule lock: %w", err)
	}

	if err := fn(jobCardTx{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

func (r *JobCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JobCard, error) {
	query := squirrel.Select(jobCardColumns...).
		From("job_cards").
		Where(squirrel.Eq{"id": id.String()}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	card, err := scanJobCard(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return card, nil
}

// ListByDate returns the queue for one day in queue order.
func (r *JobCardRepository) ListByDate(ctx context.Context, date time.Time) ([]*models.JobCard, error) {
	query := squirrel.Select(jobCardColumns...).
		From("job_cards").
		Where(squirrel.Eq{"scheduled_date": date.Format(models.DateLayout)}).
		OrderBy("queue_position ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*models.JobCard
	for rows.Next() {
		card, err := scanJobCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

type jobCardTx struct {
	q querier
}

func (t jobCardTx) CountByDate(ctx context.Context, date time.Time) (int, error) {
	sql, args, err := squirrel.Select("COUNT(*)").
		From("job_cards").
		Where(squirrel.Eq{"scheduled_date": date.Format(models.DateLayout)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := t.q.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

func (t jobCardTx) Insert(ctx context.Context, card *models.JobCard) error {
	sql, args, err := squirrel.Insert("job_cards").
		Columns("id", "sender_name", "car_brand", "car_model", "plate", "complaint",
			"created_at", "scheduled_date", "queue_position", "status").
		Values(card.ID.String(), card.SenderName, card.CarBrand, card.CarModel, card.Plate, card.Complaint,
			card.CreatedAt, card.ScheduledDate.Format(models.DateLayout), card.QueuePosition, string(card.Status)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := t.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert job card: %w", err)
	}
	return nil
}

func scanJobCard(row pgx.Row) (*models.JobCard, error) {
	var (
		card   models.JobCard
		id     string
		status string
	)
	if err := row.Scan(
		&id, &card.SenderName, &card.CarBrand, &card.CarModel, &card.Plate, &card.Complaint,
		&card.CreatedAt, &card.ScheduledDate, &card.QueuePosition, &status,
	); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse job card id: %w", err)
	}
	card.ID = parsed
	card.Status = models.JobCardStatus(status)
	return &card, nil
}
