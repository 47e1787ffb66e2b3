package repository

import (
	"context"
	"fmt"

	"bengkel-bot/internal/models"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

type KnowledgeRepository struct {
	db     DB
	logger *zap.Logger
}

func NewKnowledgeRepository(db DB, logger *zap.Logger) *KnowledgeRepository {
	return &KnowledgeRepository{
		db:     db,
		logger: logger,
	}
}

// ListByDomain returns every row of the domain table in id order. The order
// is the corpus position used by retrieval.
func (r *KnowledgeRepository) ListByDomain(ctx context.Context, domain models.Domain) ([]models.KnowledgeEntry, error) {
	if !domain.Valid() {
		return nil, fmt.Errorf("unknown domain %q", domain)
	}

	query := squirrel.Select(
		"id",
		"COALESCE(origin_id, '')",
		"COALESCE(category, '')",
		"COALESCE(question, '')",
		"COALESCE(answer, '')",
		"COALESCE(context, '')",
		"COALESCE(keyword, '')",
	).
		From(string(domain)).
		OrderBy("id ASC").
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

	var entries []models.KnowledgeEntry
	for rows.Next() {
		e := models.KnowledgeEntry{Domain: domain}
		if err := rows.Scan(&e.ID, &e.OriginID, &e.Category, &e.Question, &e.Answer, &e.Context, &e.Keyword); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ReplaceDomain swaps the whole domain table for entries in one transaction.
func (r *KnowledgeRepository) ReplaceDomain(ctx context.Context, domain models.Domain, entries []models.KnowledgeEntry) error {
	if !domain.Valid() {
		return fmt.Errorf("unknown domain %q", domain)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	del, args, err := squirrel.Delete(string(domain)).PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, del, args...); err != nil {
		return fmt.Errorf("clear %s: %w", domain, err)
	}

	for _, e := range entries {
		sql, args, err := squirrel.Insert(string(domain)).
			Columns("origin_id", "category", "question", "answer", "context", "keyword").
			Values(e.OriginID, e.Category, e.Question, e.Answer, e.Context, e.Keyword).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", domain, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("Domain corpus replaced",
		zap.String("domain", string(domain)),
		zap.Int("entries", len(entries)))
	return nil
}
