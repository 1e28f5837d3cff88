package catalog

import (
	"context"
	"fmt"

	"github.com/angelmondragon/atelier-bot/internal/repo"
	"gorm.io/gorm"
)

const productsTable = "products"

// SQLSource reads catalog rows from the products table.
type SQLSource struct {
	base repo.Base
}

func NewSQLSource(db *gorm.DB) (*SQLSource, error) {
	base, err := repo.NewBase(db)
	if err != nil {
		return nil, err
	}
	return &SQLSource{base: base}, nil
}

func (s *SQLSource) Rows(ctx context.Context) ([]Row, error) {
	var records []map[string]any
	if err := s.base.Table(ctx, productsTable).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row(rec)
	}
	return rows, nil
}
