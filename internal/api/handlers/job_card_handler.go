package handlers

import (
	"context"
	"errors"
	"time"

	"bengkel-bot/internal/dto"
	"bengkel-bot/internal/models"
	"bengkel-bot/internal/repository"
	"bengkel-bot/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobCardReader interface {
	ListByDate(ctx context.Context, date time.Time) ([]*models.JobCard, error)
	Get(ctx context.Context, id uuid.UUID) (*models.JobCard, error)
}

type JobCardHandler struct {
	jobCards JobCardReader
	now      func() time.Time
	logger   *zap.Logger
}

func NewJobCardHandler(jobCards JobCardReader, logger *zap.Logger) *JobCardHandler {
	return &JobCardHandler{
		jobCards: jobCards,
		now:      time.Now,
		logger:   logger,
	}
}

// ListJobCards godoc
// @Summary List job cards of a day
// @Description Job cards scheduled on the given date (default today), in queue order
// @Tags jobcards
// @Produce json
// @Param date query string false "Date, YYYY-MM-DD"
// @Security Bearer
// @Success 200 {object} dto.JobCardListResponse
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/jobcards [get]
func (h *JobCardHandler) ListJobCards(c *fiber.Ctx) error {
	date := h.now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "date must be YYYY-MM-DD",
			})
		}
		date = parsed
	}

	cards, err := h.jobCards.ListByDate(c.UserContext(), date)
	if err != nil {
		return h.fail(c, err, "Failed to list job cards")
	}

	resp := dto.JobCardListResponse{
		Date:     date.Format(models.DateLayout),
		JobCards: make([]dto.JobCardResponse, 0, len(cards)),
	}
	for _, card := range cards {
		resp.JobCards = append(resp.JobCards, toJobCardResponse(card))
	}
	return c.JSON(resp)
}

// GetJobCard godoc
// @Summary Get a job card
// @Tags jobcards
// @Produce json
// @Param id path string true "Job card ID"
// @Security Bearer
// @Success 200 {object} dto.JobCardResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/jobcards/{id} [get]
func (h *JobCardHandler) GetJobCard(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job card ID",
		})
	}

	card, err := h.jobCards.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrJobCardNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job card not found",
			})
		}
		return h.fail(c, err, "Failed to get job card")
	}
	return c.JSON(toJobCardResponse(card))
}

func (h *JobCardHandler) fail(c *fiber.Ctx, err error, msg string) error {
	if errors.Is(err, service.ErrBookingUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Job card storage is unavailable",
		})
	}
	h.logger.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}

func toJobCardResponse(card *models.JobCard) dto.JobCardResponse {
	return dto.JobCardResponse{
		ID:            card.ID.String(),
		SenderName:    card.SenderName,
		CarBrand:      card.CarBrand,
		CarModel:      card.CarModel,
		Plate:         card.Plate,
		Complaint:     card.Complaint,
		CreatedAt:     card.CreatedAt.Format(time.RFC3339),
		ScheduledDate: card.ScheduledDate.Format(models.DateLayout),
		QueuePosition: card.QueuePosition,
		Status:        string(card.Status),
	}
}
