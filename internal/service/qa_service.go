package service

import (
	"context"
	"fmt"
	"time"

	"bengkel-bot/internal/models"
	"bengkel-bot/internal/pricing"
	"bengkel-bot/internal/retrieval"
	"bengkel-bot/pkg/metrics"

	"go.uber.org/zap"
)

// Prediction recorded for turns that never reached extraction.
const unansweredPrediction = "— Tidak dijawab (skor di bawah threshold) —"

const (
	outcomeBelowThreshold = "below_threshold"
	outcomeExtractFailed  = "extraction_failed"
	outcomeEmpty          = "empty"
	outcomeAnswered       = "answered"
)

type QAConfig struct {
	Threshold float64
	Timeout   time.Duration
}

// QAService runs the retrieval, gate, extraction and rendering pipeline for
// the question-answering modes.
type QAService struct {
	rankers   map[models.Domain]*retrieval.Ranker
	extractor Extractor
	renderer  *pricing.Renderer
	recorder  InteractionRecorder
	metrics   *metrics.Metrics
	cfg       QAConfig
	logger    *zap.Logger
}

func NewQAService(
	corpora map[models.Domain][]models.KnowledgeEntry,
	extractor Extractor,
	renderer *pricing.Renderer,
	recorder InteractionRecorder,
	m *metrics.Metrics,
	cfg QAConfig,
	logger *zap.Logger,
) *QAService {
	rankers := make(map[models.Domain]*retrieval.Ranker, len(models.Domains()))
	for _, d := range models.Domains() {
		rankers[d] = retrieval.NewRanker(corpora[d])
	}
	return &QAService{
		rankers:   rankers,
		extractor: extractor,
		renderer:  renderer,
		recorder:  recorder,
		metrics:   m,
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer produces the reply for one question asked in mode. Errors are
// returned only for modes that do not answer questions; every pipeline
// failure is turned into a user-facing reply.
func (s *QAService) Answer(ctx context.Context, mode models.Mode, question string) (string, error) {
	domain, ok := mode.Domain()
	if !ok {
		return "", fmt.Errorf("mode %q does not answer questions", mode)
	}
	question = sanitizeText(question)

	match := s.rankers[domain].Best(question)
	rec := &models.Interaction{
		Mode:      mode,
		Question:  question,
		Keyword:   match.Keyword,
		Score:     match.Score,
		Threshold: s.cfg.Threshold,
		BestIndex: match.Index,
	}

	if !match.Answerable(s.cfg.Threshold) {
		rec.Prediction = unansweredPrediction
		s.finish(ctx, rec, outcomeBelowThreshold)
		return msgNotUnderstood, nil
	}

	passage := fmt.Sprintf("Keyword terkait: %s. %s", match.Keyword, match.Entry.Context)
	rec.ContextUsed = &passage

	answer, err := s.extract(ctx, question, passage)
	if err != nil {
		s.logger.Warn("Answer extraction failed",
			zap.String("mode", string(mode)),
			zap.Int("best_index", match.Index),
			zap.Error(err))
		s.finish(ctx, rec, outcomeExtractFailed)
		return msgNotUnderstood, nil
	}

	answer = s.renderer.Render(domain, answer)
	rec.Prediction = answer
	if answer == "" {
		s.finish(ctx, rec, outcomeEmpty)
		return msgNoAnswer, nil
	}

	s.finish(ctx, rec, outcomeAnswered)
	return "💬 " + answer, nil
}

func (s *QAService) extract(ctx context.Context, question, passage string) (string, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := s.extractor.Extract(ctx, question, passage)
	s.metrics.ObserveExtraction(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return answer, nil
}

func (s *QAService) finish(ctx context.Context, rec *models.Interaction, outcome string) {
	s.metrics.ObserveAnswer(string(rec.Mode), outcome)
	if s.recorder != nil {
		s.recorder.Record(ctx, rec)
	}
}

// CorpusSize reports how many entries back the ranker of domain.
func (s *QAService) CorpusSize(domain models.Domain) int {
	if r, ok := s.rankers[domain]; ok {
		return r.Len()
	}
	return 0
}
