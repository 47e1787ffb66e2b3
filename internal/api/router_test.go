package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"bengkel-bot/internal/api/handlers"
	"bengkel-bot/internal/dto"
	"bengkel-bot/internal/models"
	"bengkel-bot/internal/repository"
	"bengkel-bot/internal/service"
	"bengkel-bot/internal/worker"
	"bengkel-bot/pkg/auth"
	"bengkel-bot/pkg/telegram"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const webhookSecret = "s3cret"

type fakeChat struct {
	err error
}

func (f *fakeChat) Handle(_ context.Context, in service.Inbound) ([]service.Reply, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []service.Reply{{
		ChatID:   in.ChatID,
		Text:     "echo:" + in.Text,
		Keyboard: [][]service.Button{{{Text: "1. Layanan", Data: "mode_1"}}},
	}}, nil
}

type fakeQueue struct {
	mu      sync.Mutex
	updates []telegram.Update
	err     error
}

func (q *fakeQueue) Submit(u telegram.Update) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.updates = append(q.updates, u)
	return nil
}

type fakeJobCards struct {
	cards map[uuid.UUID]*models.JobCard
	err   error
	asked time.Time
}

func (f *fakeJobCards) ListByDate(_ context.Context, date time.Time) ([]*models.JobCard, error) {
	f.asked = date
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.JobCard
	for _, c := range f.cards {
		if c.ScheduledDate.Format(models.DateLayout) == date.Format(models.DateLayout) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeJobCards) Get(_ context.Context, id uuid.UUID) (*models.JobCard, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.cards[id]
	if !ok {
		return nil, repository.ErrJobCardNotFound
	}
	return c, nil
}

type fixture struct {
	app      *fiber.App
	jwt      *auth.JWTManager
	chat     *fakeChat
	queue    *fakeQueue
	jobCards *fakeJobCards
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := auth.HashPassword("rahasia")
	require.NoError(t, err)

	log := zap.NewNop()
	f := &fixture{
		jwt:      auth.NewJWTManager("test-secret", time.Hour),
		chat:     &fakeChat{},
		queue:    &fakeQueue{},
		jobCards: &fakeJobCards{cards: map[uuid.UUID]*models.JobCard{}},
	}
	authService := service.NewAuthService("admin", hash, f.jwt, log)
	f.app = SetupRouter(Handlers{
		Auth:     handlers.NewAuthHandler(authService, log),
		Message:  handlers.NewMessageHandler(f.chat, f.queue, webhookSecret, false, log),
		JobCards: handlers.NewJobCardHandler(f.jobCards, log),
	}, f.jwt, log)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (f *fixture) bearer(t *testing.T) map[string]string {
	t.Helper()
	token, err := f.jwt.GenerateToken("admin")
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestWebhook_QueuesUpdate(t *testing.T) {
	f := newFixture(t)
	update := `{"update_id":10,"message":{"message_id":1,"chat":{"id":42},"text":"/start"}}`

	resp, _ := f.do(t, http.MethodPost, "/webhook/telegram", update,
		map[string]string{handlers.SecretTokenHeader: webhookSecret})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, f.queue.updates, 1)
	assert.Equal(t, int64(42), f.queue.updates[0].Message.Chat.ID)
	assert.Equal(t, "/start", f.queue.updates[0].Message.Text)
}

func TestWebhook_RejectsBadSecret(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/webhook/telegram", `{"update_id":1}`,
		map[string]string{handlers.SecretTokenHeader: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, f.queue.updates)
}

func TestWebhook_WithoutSecret(t *testing.T) {
	for _, tt := range []struct {
		name          string
		allowUnsigned bool
		status        int
		queued        int
	}{
		{"refused by default", false, http.StatusForbidden, 0},
		{"accepted when allowed", true, http.StatusOK, 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			log := zap.NewNop()
			f.app = SetupRouter(Handlers{
				Auth:     handlers.NewAuthHandler(service.NewAuthService("admin", "", f.jwt, log), log),
				Message:  handlers.NewMessageHandler(f.chat, f.queue, "", tt.allowUnsigned, log),
				JobCards: handlers.NewJobCardHandler(f.jobCards, log),
			}, f.jwt, log)

			resp, _ := f.do(t, http.MethodPost, "/webhook/telegram",
				`{"update_id":1,"message":{"message_id":1,"chat":{"id":5},"text":"2"}}`, nil)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Len(t, f.queue.updates, tt.queued)
		})
	}
}

func TestWebhook_QueueFullIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.queue.err = worker.ErrQueueFull

	resp, _ := f.do(t, http.MethodPost, "/webhook/telegram", `{"update_id":1}`,
		map[string]string{handlers.SecretTokenHeader: webhookSecret})

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMessages_RequiresToken(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/v1/messages", `{"chat_id":1,"text":"halo"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMessages_ReturnsReplies(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/v1/messages", `{"chat_id":7,"text":"halo"}`, f.bearer(t))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.MessageResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Replies, 1)
	assert.Equal(t, int64(7), out.Replies[0].ChatID)
	assert.Equal(t, "echo:halo", out.Replies[0].Text)
	assert.Equal(t, "mode_1", out.Replies[0].Keyboard[0][0].CallbackData)
}

func TestMessages_HandlerErrorBecomesServerErrorReply(t *testing.T) {
	f := newFixture(t)
	f.chat.err = errors.New("session store down")

	resp, body := f.do(t, http.MethodPost, "/api/v1/messages", `{"chat_id":7,"text":"halo"}`, f.bearer(t))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.MessageResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Replies, 1)
	assert.Equal(t, service.MsgServerError, out.Replies[0].Text)
}

func TestMessages_MissingChatID(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/v1/messages", `{"text":"halo"}`, f.bearer(t))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOperatorLogin(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/operator/auth/login", `{"username":"admin","password":"rahasia"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.AuthResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, "admin", out.Operator)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/jobcards?date=2024-03-02", "",
		map[string]string{"Authorization": "Bearer " + out.AccessToken})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/operator/auth/login", `{"username":"admin","password":"salah"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/operator/auth/login", `{"username":"admin"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJobCards_ListByDate(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	card := &models.JobCard{
		ID:            uuid.New(),
		SenderName:    "Budi",
		CarBrand:      "Toyota",
		CarModel:      "Avanza",
		Plate:         "B 1234 CD",
		Complaint:     "Rem bunyi",
		CreatedAt:     day.Add(-10 * time.Hour),
		ScheduledDate: day,
		QueuePosition: 1,
		Status:        models.JobCardStatusWaiting,
	}
	f.jobCards.cards[card.ID] = card

	resp, body := f.do(t, http.MethodGet, "/api/v1/jobcards?date=2024-03-02", "", f.bearer(t))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.JobCardListResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "2024-03-02", out.Date)
	require.Len(t, out.JobCards, 1)
	assert.Equal(t, card.ID.String(), out.JobCards[0].ID)
	assert.Equal(t, "2024-03-02", out.JobCards[0].ScheduledDate)
	assert.Equal(t, "Menunggu", out.JobCards[0].Status)
}

func TestJobCards_EmptyDayIsEmptyArray(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/v1/jobcards?date=2030-01-01", "", f.bearer(t))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"job_cards":[]`)
}

func TestJobCards_BadDate(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/api/v1/jobcards?date=02-03-2024", "", f.bearer(t))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJobCards_StorageUnavailable(t *testing.T) {
	f := newFixture(t)
	f.jobCards.err = service.ErrBookingUnavailable

	resp, _ := f.do(t, http.MethodGet, "/api/v1/jobcards", "", f.bearer(t))

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestJobCards_Get(t *testing.T) {
	f := newFixture(t)
	card := &models.JobCard{ID: uuid.New(), Plate: "B 1 AA", Status: models.JobCardStatusWaiting}
	f.jobCards.cards[card.ID] = card

	resp, body := f.do(t, http.MethodGet, "/api/v1/jobcards/"+card.ID.String(), "", f.bearer(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.JobCardResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "B 1 AA", out.Plate)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/jobcards/"+uuid.NewString(), "", f.bearer(t))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/v1/jobcards/not-a-uuid", "", f.bearer(t))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
