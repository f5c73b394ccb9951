package static

import (
	"context"
	"fmt"
	"stock-reorder-service/app/domain"
	"strconv"
	"strings"
)

// DefaultStockLevels is the simulated stock drop used when no levels are given.
var DefaultStockLevels = []domain.StockLevel{
	{Product: "Laptop", CurrentStock: 5},
	{Product: "Mouse", CurrentStock: 25},
	{Product: "Keyboard", CurrentStock: 8},
}

type stockLevelSource struct {
	levels []domain.StockLevel
}

// NewArgsStockLevelSource parses "product=stock" pairs in the given order.
func NewArgsStockLevelSource(args []string) (domain.StockLevelSource, error) {
	if len(args) == 0 {
		return &stockLevelSource{levels: DefaultStockLevels}, nil
	}

	levels := make([]domain.StockLevel, 0, len(args))
	for _, arg := range args {
		product, stock, ok := strings.Cut(arg, "=")
		product = strings.TrimSpace(product)
		if !ok || product == "" {
			return nil, fmt.Errorf("%w: expected product=stock, got %q", domain.ErrBadRequest, arg)
		}

		n, err := strconv.ParseInt(strings.TrimSpace(stock), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: stock for %q: %v", domain.ErrBadRequest, product, err)
		}
		levels = append(levels, domain.StockLevel{Product: product, CurrentStock: n})
	}
	return &stockLevelSource{levels: levels}, nil
}

func (s *stockLevelSource) ListStockLevels(context.Context) ([]domain.StockLevel, error) {
	return s.levels, nil
}
