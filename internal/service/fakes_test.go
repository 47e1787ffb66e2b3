package service

import (
	"context"
	"sync"
	"time"

	"bengkel-bot/internal/models"
	"bengkel-bot/internal/repository"

	"github.com/google/uuid"
)

type stubExtractor struct {
	mu       sync.Mutex
	answer   string
	err      error
	block    bool
	calls    int
	passages []string
}

func (s *stubExtractor) Extract(ctx context.Context, _ string, passage string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.passages = append(s.passages, passage)
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.answer, s.err
}

func (s *stubExtractor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type captureRecorder struct {
	mu      sync.Mutex
	records []models.Interaction
}

func (c *captureRecorder) Record(_ context.Context, in *models.Interaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, *in)
}

func (c *captureRecorder) last() models.Interaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.records[len(c.records)-1]
}

// memJobCards mimics the advisory-locked transaction of the job card
// repository: fn runs under one mutex and its inserts are kept only when it
// succeeds.
type memJobCards struct {
	mu        sync.Mutex
	cards     map[uuid.UUID]models.JobCard
	insertErr error
	getErr    error
}

func newMemJobCards() *memJobCards {
	return &memJobCards{cards: make(map[uuid.UUID]models.JobCard)}
}

type memTx struct {
	store  *memJobCards
	staged []models.JobCard
}

func (t *memTx) CountByDate(_ context.Context, date time.Time) (int, error) {
	n := 0
	day := date.Format(models.DateLayout)
	for _, c := range t.store.cards {
		if c.ScheduledDate.Format(models.DateLayout) == day {
			n++
		}
	}
	for _, c := range t.staged {
		if c.ScheduledDate.Format(models.DateLayout) == day {
			n++
		}
	}
	return n, nil
}

func (t *memTx) Insert(_ context.Context, card *models.JobCard) error {
	if t.store.insertErr != nil {
		return t.store.insertErr
	}
	t.staged = append(t.staged, *card)
	return nil
}

func (m *memJobCards) WithScheduleLock(ctx context.Context, fn func(repository.JobCardTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{store: m}
	if err := fn(tx); err != nil {
		return err
	}
	for _, c := range tx.staged {
		m.cards[c.ID] = c
	}
	return nil
}

func (m *memJobCards) GetByID(_ context.Context, id uuid.UUID) (*models.JobCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.cards[id]
	if !ok {
		return nil, repository.ErrJobCardNotFound
	}
	return &c, nil
}

func (m *memJobCards) ListByDate(_ context.Context, date time.Time) ([]*models.JobCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.JobCard
	for _, c := range m.cards {
		c := c
		if c.ScheduledDate.Equal(date) {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memJobCards) seed(date time.Time, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 1; i <= n; i++ {
		id := uuid.New()
		m.cards[id] = models.JobCard{ID: id, ScheduledDate: date, QueuePosition: i, Status: models.JobCardStatusWaiting}
	}
}

// positionsByDate groups stored queue positions per scheduled date.
func (m *memJobCards) positionsByDate() map[string][]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]int)
	for _, c := range m.cards {
		day := c.ScheduledDate.Format(models.DateLayout)
		out[day] = append(out[day], c.QueuePosition)
	}
	return out
}
