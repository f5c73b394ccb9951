package db

import (
	"context"
	"database/sql"
	"log/slog"
	"stock-reorder-service/app/domain"
)

// stockLevelRepository reads a snapshot of stock levels owned by the
// inventory system. It never writes.
type stockLevelRepository struct {
	conn *sql.DB
}

func NewStockLevelRepository(db *sql.DB) domain.StockLevelSource {
	return &stockLevelRepository{db}
}

func (r *stockLevelRepository) ListStockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	query := `SELECT ps.product_name, ps.quantity
	FROM product_stock ps
	ORDER BY ps.product_name`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		slog.ErrorContext(ctx, "[stockLevelRepository] ListStockLevels", "queryContext", err)
		return nil, err
	}
	defer rows.Close()

	var levels []domain.StockLevel
	for rows.Next() {
		var level domain.StockLevel
		if err := rows.Scan(&level.Product, &level.CurrentStock); err != nil {
			slog.ErrorContext(ctx, "[stockLevelRepository] ListStockLevels", "scan", err)
			return nil, err
		}
		levels = append(levels, level)
	}

	if err := rows.Err(); err != nil {
		slog.ErrorContext(ctx, "[stockLevelRepository] ListStockLevels", "rowError", err)
		return nil, err
	}

	slog.InfoContext(ctx, "[stockLevelRepository] ListStockLevels", "count", len(levels))
	return levels, nil
}
