package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"bengkel-bot/internal/models"
	"bengkel-bot/pkg/logger"

	"go.uber.org/zap"
)

// interactionFiles names the per-mode JSONL files read by the offline
// evaluator.
var interactionFiles = map[models.Mode]string{
	models.ModeService:    "chat_log_service.txt",
	models.ModeOilPrice:   "chat_log_oli.txt",
	models.ModeCarPrice:   "chat_log_umum_mobil.txt",
	models.ModeTruckPrice: "chat_log_bis_truk.txt",
}

type InteractionRecorder interface {
	Record(ctx context.Context, in *models.Interaction)
}

type interactionStore interface {
	Insert(ctx context.Context, in *models.Interaction) error
}

// InteractionLog appends every Q&A turn to its mode's JSONL file and mirrors
// it into the database when a store is configured. Failures are logged and
// never reach the user.
type InteractionLog struct {
	writers map[models.Mode]*zap.Logger
	store   interactionStore
	logger  *zap.Logger
}

func NewInteractionLog(dir string, store interactionStore, log *zap.Logger) (*InteractionLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create interaction log dir: %w", err)
	}

	l := &InteractionLog{
		writers: make(map[models.Mode]*zap.Logger, len(interactionFiles)),
		store:   store,
		logger:  log,
	}
	for mode, name := range interactionFiles {
		w, err := logger.NewRecordWriter(filepath.Join(dir, name))
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("open interaction log %s: %w", name, err)
		}
		l.writers[mode] = w
	}
	return l, nil
}

func (l *InteractionLog) Record(ctx context.Context, in *models.Interaction) {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	in.Score = math.Round(in.Score*1000) / 1000

	if w, ok := l.writers[in.Mode]; ok {
		w.Info("",
			zap.String("mode", string(in.Mode)),
			zap.String("question", in.Question),
			zap.String("prediction", in.Prediction),
			zap.String("keyword", in.Keyword),
			zap.Float64("tfidf_score", in.Score),
			zap.Float64("tfidf_threshold", in.Threshold),
			zap.Int("best_index", in.BestIndex),
			zap.Stringp("context_used", in.ContextUsed),
		)
	} else {
		l.logger.Warn("No interaction log for mode", zap.String("mode", string(in.Mode)))
	}

	if l.store != nil {
		if err := l.store.Insert(ctx, in); err != nil {
			l.logger.Warn("Failed to store interaction", zap.Error(err))
		}
	}
}

func (l *InteractionLog) Close() {
	for _, w := range l.writers {
		_ = w.Sync()
	}
}
