package handlers

import (
	"context"
	"crypto/subtle"
	"errors"

	"bengkel-bot/internal/dto"
	"bengkel-bot/internal/service"
	"bengkel-bot/internal/worker"
	"bengkel-bot/pkg/telegram"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

type ChatHandler interface {
	Handle(ctx context.Context, in service.Inbound) ([]service.Reply, error)
}

type UpdateQueue interface {
	Submit(update telegram.Update) error
}

type MessageHandler struct {
	chat          ChatHandler
	queue         UpdateQueue
	webhookSecret string
	allowUnsigned bool
	logger        *zap.Logger
}

// NewMessageHandler builds the chat endpoints. With an empty webhookSecret the
// webhook refuses every update unless allowUnsigned is set.
func NewMessageHandler(chat ChatHandler, queue UpdateQueue, webhookSecret string, allowUnsigned bool, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		chat:          chat,
		queue:         queue,
		webhookSecret: webhookSecret,
		allowUnsigned: allowUnsigned,
		logger:        logger,
	}
}

// Webhook godoc
// @Summary Telegram webhook
// @Description Accepts a Bot API update and queues it for processing
// @Tags chat
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /webhook/telegram [post]
func (h *MessageHandler) Webhook(c *fiber.Ctx) error {
	if h.webhookSecret == "" && !h.allowUnsigned {
		h.logger.Warn("Webhook call refused, no secret token configured", zap.String("ip", c.IP()))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Webhook secret not configured",
		})
	}
	if h.webhookSecret != "" && subtle.ConstantTimeCompare([]byte(c.Get(SecretTokenHeader)), []byte(h.webhookSecret)) != 1 {
		h.logger.Warn("Webhook call with bad secret token", zap.String("ip", c.IP()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid secret token",
		})
	}

	var update telegram.Update
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid update body",
		})
	}

	if err := h.queue.Submit(update); err != nil {
		if errors.Is(err, worker.ErrQueueFull) || errors.Is(err, worker.ErrClosed) {
			h.logger.Warn("Rejecting update", zap.Int64("update_id", update.UpdateID), zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Busy, retry later",
			})
		}
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}

// SendMessage godoc
// @Summary Synchronous chat turn
// @Description Runs one inbound event through the conversation and returns the replies
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.MessageRequest true "Inbound event"
// @Security Bearer
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/messages [post]
func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ChatID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "chat_id is required",
		})
	}

	in := service.Inbound{ChatID: req.ChatID, Text: req.Text, CallbackData: req.CallbackData}
	replies, err := h.chat.Handle(c.UserContext(), in)
	if err != nil {
		h.logger.Error("Failed to handle message", zap.Int64("chat_id", req.ChatID), zap.Error(err))
		replies = []service.Reply{{ChatID: req.ChatID, Text: service.MsgServerError}}
	}

	return c.JSON(toMessageResponse(replies))
}

func toMessageResponse(replies []service.Reply) dto.MessageResponse {
	resp := dto.MessageResponse{Replies: make([]dto.ReplyResponse, 0, len(replies))}
	for _, r := range replies {
		out := dto.ReplyResponse{ChatID: r.ChatID, Text: r.Text, Markdown: r.Markdown}
		for _, row := range r.Keyboard {
			buttons := make([]dto.ButtonResponse, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, dto.ButtonResponse{Text: b.Text, CallbackData: b.Data})
			}
			out.Keyboard = append(out.Keyboard, buttons)
		}
		resp.Replies = append(resp.Replies, out)
	}
	return resp
}
