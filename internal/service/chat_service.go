package service

import (
	"context"
	"errors"
	"strings"

	"bengkel-bot/internal/models"
	"bengkel-bot/internal/session"
	"bengkel-bot/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Answerer interface {
	Answer(ctx context.Context, mode models.Mode, question string) (string, error)
}

type Booker interface {
	Book(ctx context.Context, req BookingRequest) (*models.JobCard, error)
}

// Inbound is one user event: a typed message or a menu button press.
type Inbound struct {
	ChatID       int64
	Text         string
	CallbackData string
}

type Button struct {
	Text string `json:"text"`
	Data string `json:"callback_data"`
}

// Reply is an outbound message. ChatID may differ from the inbound chat for
// operator notifications.
type Reply struct {
	ChatID   int64      `json:"chat_id"`
	Text     string     `json:"text"`
	Markdown bool       `json:"markdown,omitempty"`
	Keyboard [][]Button `json:"keyboard,omitempty"`
}

// ChatService is the per-chat conversation state machine: menu selection,
// question answering modes and the complaint booking flow.
type ChatService struct {
	sessions       session.Store
	locks          *session.KeyedMutex
	qa             Answerer
	booker         Booker
	operatorChatID int64
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

func NewChatService(
	sessions session.Store,
	qa Answerer,
	booker Booker,
	operatorChatID int64,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		sessions:       sessions,
		locks:          session.NewKeyedMutex(),
		qa:             qa,
		booker:         booker,
		operatorChatID: operatorChatID,
		metrics:        m,
		logger:         logger,
	}
}

// Handle processes one inbound event. Messages of the same chat are handled
// one at a time. A returned error means the session store failed; no reply
// has been produced in that case.
func (s *ChatService) Handle(ctx context.Context, in Inbound) ([]Reply, error) {
	unlock := s.locks.Lock(in.ChatID)
	defer unlock()

	if in.CallbackData != "" {
		s.metrics.ObserveInbound("callback")
		if item, ok := menuByCallback(in.CallbackData); ok {
			return s.selectMode(ctx, in.ChatID, item)
		}
		return s.reply(in.ChatID, msgFallback), nil
	}

	s.metrics.ObserveInbound("message")
	text := strings.TrimSpace(in.Text)

	if isStartCommand(text) {
		return []Reply{{ChatID: in.ChatID, Text: msgWelcome, Keyboard: menuKeyboard()}}, nil
	}
	if item, ok := menuByDigit(text); ok {
		return s.selectMode(ctx, in.ChatID, item)
	}

	sess, err := s.sessions.Get(ctx, in.ChatID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return s.reply(in.ChatID, msgFallback), nil
	}
	if err != nil {
		return nil, err
	}

	switch sess.Mode {
	case models.ModeService, models.ModeOilPrice, models.ModeCarPrice, models.ModeTruckPrice:
		answer, err := s.qa.Answer(ctx, sess.Mode, text)
		if err != nil {
			return nil, err
		}
		return s.reply(in.ChatID, answer), nil
	case models.ModeComplaint:
		return s.handleComplaint(ctx, sess, text)
	default:
		return s.reply(in.ChatID, msgFallback), nil
	}
}

func isStartCommand(text string) bool {
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd == "/start"
}

func (s *ChatService) selectMode(ctx context.Context, chatID int64, item menuItem) ([]Reply, error) {
	if err := s.sessions.Put(ctx, models.NewSession(chatID, item.mode)); err != nil {
		return nil, err
	}
	return []Reply{{ChatID: chatID, Text: item.intro, Markdown: item.markdown}}, nil
}

func (s *ChatService) handleComplaint(ctx context.Context, sess *models.Session, text string) ([]Reply, error) {
	switch sess.Step() {
	case models.StepAwaitingConfirmation:
		return s.confirmComplaint(ctx, sess, text)

	case models.StepAwaitingPlate:
		if text == "" {
			return s.reply(sess.ChatID, msgAskPlate), nil
		}
		sess.Fields[models.FieldPlate] = text
		sess.AwaitingPlate = false
		sess.AwaitingConfirmation = true
		if err := s.sessions.Put(ctx, sess); err != nil {
			return nil, err
		}
		return s.reply(sess.ChatID, msgAskConfirm), nil

	default:
		fields, err := parseComplaintTemplate(text)
		if err != nil {
			return s.reply(sess.ChatID, msgBadFormat), nil
		}
		for k, v := range fields {
			sess.Fields[k] = v
		}
		sess.AwaitingPlate = true
		if err := s.sessions.Put(ctx, sess); err != nil {
			return nil, err
		}
		return s.reply(sess.ChatID, msgAskPlate), nil
	}
}

func (s *ChatService) confirmComplaint(ctx context.Context, sess *models.Session, text string) ([]Reply, error) {
	if isCancellation(text) {
		if err := s.sessions.Delete(ctx, sess.ChatID); err != nil {
			return nil, err
		}
		return s.reply(sess.ChatID, msgCancelled), nil
	}
	if !isConfirmation(text) {
		return []Reply{{ChatID: sess.ChatID, Text: msgReconfirm, Markdown: true}}, nil
	}

	card, err := s.booker.Book(ctx, BookingRequest{
		SenderName: sess.Fields[models.FieldName],
		CarBrand:   sess.Fields[models.FieldBrand],
		CarModel:   sess.Fields[models.FieldModel],
		Plate:      sess.Fields[models.FieldPlate],
		Complaint:  sess.Fields[models.FieldComplaint],
	})
	if err != nil {
		s.logger.Error("Booking failed", zap.Int64("chat_id", sess.ChatID), zap.Error(err))
		var reloadErr *BookingReloadError
		switch {
		case errors.As(err, &reloadErr):
			return s.bookedWithoutDetails(ctx, sess, reloadErr.ID), nil
		case errors.Is(err, ErrSchedulingExhausted):
			return []Reply{{ChatID: sess.ChatID, Text: msgBookingFull}}, nil
		}
		return []Reply{{ChatID: sess.ChatID, Text: msgBookingFailed, Markdown: true}}, nil
	}

	if err := s.sessions.Delete(ctx, sess.ChatID); err != nil {
		// The card is already stored, so the confirmation still goes out.
		s.logger.Warn("Failed to clear session after booking", zap.Int64("chat_id", sess.ChatID), zap.Error(err))
	}

	replies := []Reply{{ChatID: sess.ChatID, Text: bookingConfirmation(card), Markdown: true}}
	if s.operatorChatID != 0 {
		replies = append(replies, Reply{ChatID: s.operatorChatID, Text: operatorInvoice(card)})
	}
	return replies, nil
}

// bookedWithoutDetails finishes a booking whose row is stored but could not
// be read back. The session is cleared so a repeated confirmation cannot
// book twice.
func (s *ChatService) bookedWithoutDetails(ctx context.Context, sess *models.Session, id uuid.UUID) []Reply {
	if err := s.sessions.Delete(ctx, sess.ChatID); err != nil {
		s.logger.Warn("Failed to clear session after booking", zap.Int64("chat_id", sess.ChatID), zap.Error(err))
	}
	replies := []Reply{{ChatID: sess.ChatID, Text: bookingRecorded(id)}}
	if s.operatorChatID != 0 {
		replies = append(replies, Reply{ChatID: s.operatorChatID, Text: operatorReloadNotice(id, sess)})
	}
	return replies
}

func (s *ChatService) reply(chatID int64, text string) []Reply {
	return []Reply{{ChatID: chatID, Text: text}}
}
