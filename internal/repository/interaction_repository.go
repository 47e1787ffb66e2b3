package repository

import (
	"context"

	"bengkel-bot/internal/models"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

type InteractionRepository struct {
	db     DB
	logger *zap.Logger
}

func NewInteractionRepository(db DB, logger *zap.Logger) *InteractionRepository {
	return &InteractionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *InteractionRepository) Insert(ctx context.Context, in *models.Interaction) error {
	query := squirrel.Insert("interaction_logs").
		Columns("mode", "question", "prediction", "keyword", "tfidf_score", "tfidf_threshold", "best_index", "context_used", "created_at").
		Values(string(in.Mode), in.Question, in.Prediction, in.Keyword, in.Score, in.Threshold, in.BestIndex, in.ContextUsed, in.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
