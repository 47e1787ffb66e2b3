package repository

import (
	"context"

	"bengkel-bot/internal/models"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

type PriceRepository struct {
	db     DB
	logger *zap.Logger
}

func NewPriceRepository(db DB, logger *zap.Logger) *PriceRepository {
	return &PriceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PriceRepository) List(ctx context.Context) ([]models.PriceEntry, error) {
	query := squirrel.Select("placeholder", "COALESCE(harga, '')").
		From("harga_data").
		OrderBy("placeholder ASC").
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

	var prices []models.PriceEntry
	for rows.Next() {
		var p models.PriceEntry
		if err := rows.Scan(&p.Placeholder, &p.Price); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// Upsert writes price rows, overwriting the price of existing placeholders.
func (r *PriceRepository) Upsert(ctx context.Context, prices []models.PriceEntry) error {
	if len(prices) == 0 {
		return nil
	}

	query := squirrel.Insert("harga_data").
		Columns("placeholder", "harga").
		Suffix("ON CONFLICT (placeholder) DO UPDATE SET harga = EXCLUDED.harga").
		PlaceholderFormat(squirrel.Dollar)
	for _, p := range prices {
		query = query.Values(p.Placeholder, p.Price)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
