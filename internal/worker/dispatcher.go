package worker

import (
	"context"
	"errors"
	"sync"

	"bengkel-bot/internal/service"
	"bengkel-bot/pkg/telegram"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrQueueFull = errors.New("dispatcher queue full")
	ErrClosed    = errors.New("dispatcher closed")
)

type Handler interface {
	Handle(ctx context.Context, in service.Inbound) ([]service.Reply, error)
}

// Messenger delivers replies back to the chat transport.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts telegram.SendOptions) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// Dispatcher queues webhook updates onto ordered lanes and handles each lane
// on its own goroutine. A chat always maps to the same lane, so its updates
// are handled in arrival order while different chats proceed in parallel.
type Dispatcher struct {
	handler   Handler
	messenger Messenger
	lanes     []chan telegram.Update
	logger    *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewDispatcher creates concurrency lanes, each buffering up to laneSize
// updates.
func NewDispatcher(handler Handler, messenger Messenger, concurrency, laneSize int, logger *zap.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	if laneSize <= 0 {
		laneSize = 16
	}
	lanes := make([]chan telegram.Update, concurrency)
	for i := range lanes {
		lanes[i] = make(chan telegram.Update, laneSize)
	}
	return &Dispatcher{
		handler:   handler,
		messenger: messenger,
		lanes:     lanes,
		logger:    logger,
	}
}

func (d *Dispatcher) laneFor(update telegram.Update) chan telegram.Update {
	in, _ := ToInbound(update)
	return d.lanes[uint64(in.ChatID)%uint64(len(d.lanes))]
}

// Submit enqueues update without blocking.
func (d *Dispatcher) Submit(update telegram.Update) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.laneFor(update) <- update:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting updates. Run returns once every lane is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		for _, lane := range d.lanes {
			close(lane)
		}
	}
}

// Run consumes the lanes until Close is called. Handlers run detached from
// ctx cancellation so in-flight conversations finish during shutdown.
func (d *Dispatcher) Run(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(len(d.lanes))
	handlerCtx := context.WithoutCancel(ctx)

	for _, lane := range d.lanes {
		lane := lane
		g.Go(func() error {
			for update := range lane {
				d.Process(handlerCtx, update)
			}
			return nil
		})
	}
	return g.Wait()
}

// Process handles a single update synchronously and sends every reply.
func (d *Dispatcher) Process(ctx context.Context, update telegram.Update) {
	// Callbacks are answered even when they cannot be routed.
	if cb := update.CallbackQuery; cb != nil {
		if err := d.messenger.AnswerCallbackQuery(ctx, cb.ID); err != nil {
			d.logger.Warn("Failed to answer callback query", zap.String("callback_id", cb.ID), zap.Error(err))
		}
	}

	in, ok := ToInbound(update)
	if !ok {
		d.logger.Debug("Ignoring update without message or callback", zap.Int64("update_id", update.UpdateID))
		return
	}

	replies, err := d.handler.Handle(ctx, in)
	if err != nil {
		d.logger.Error("Failed to handle update",
			zap.Int64("update_id", update.UpdateID),
			zap.Int64("chat_id", in.ChatID),
			zap.Error(err))
		replies = []service.Reply{{ChatID: in.ChatID, Text: service.MsgServerError}}
	}

	for _, r := range replies {
		if err := d.messenger.SendMessage(ctx, r.ChatID, r.Text, sendOptions(r)); err != nil {
			d.logger.Error("Failed to send reply", zap.Int64("chat_id", r.ChatID), zap.Error(err))
		}
	}
}

// ToInbound extracts the chat event from a Bot API update.
func ToInbound(update telegram.Update) (service.Inbound, bool) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return service.Inbound{
			ChatID:       update.CallbackQuery.Message.Chat.ID,
			CallbackData: update.CallbackQuery.Data,
		}, true
	case update.Message != nil:
		return service.Inbound{
			ChatID: update.Message.Chat.ID,
			Text:   update.Message.Text,
		}, true
	}
	return service.Inbound{}, false
}

func sendOptions(r service.Reply) telegram.SendOptions {
	var opts telegram.SendOptions
	if r.Markdown {
		opts.ParseMode = "Markdown"
	}
	if len(r.Keyboard) > 0 {
		markup := &telegram.InlineKeyboardMarkup{}
		for _, row := range r.Keyboard {
			buttons := make([]telegram.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, telegram.InlineKeyboardButton{Text: b.Text, CallbackData: b.Data})
			}
			markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
		}
		opts.ReplyMarkup = markup
	}
	return opts
}
