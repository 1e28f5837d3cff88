package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/atelier-bot/internal/repo"
	"github.com/angelmondragon/atelier-bot/pkg/db"
	pkgerrors "github.com/angelmondragon/atelier-bot/pkg/errors"
	"gorm.io/gorm"
)

// Store is the durable, append-only order sink.
type Store interface {
	Append(ctx context.Context, order Order) error
}

type orderRecord struct {
	OrderID    int64     `gorm:"column:order_id;primaryKey;autoIncrement:false"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	SessionID  int64     `gorm:"column:session_id"`
	Name       string    `gorm:"column:name"`
	Phone      string    `gorm:"column:phone"`
	Address    string    `gorm:"column:address"`
	ItemsJSON  string    `gorm:"column:items_json"`
	TotalCents int64     `gorm:"column:total_cents"`
	Status     string    `gorm:"column:status"`
}

func (orderRecord) TableName() string { return "orders" }

// SQLStore appends orders to the orders table.
type SQLStore struct {
	repo.Base
}

func NewSQLStore(conn *gorm.DB) (*SQLStore, error) {
	base, err := repo.NewBase(conn)
	if err != nil {
		return nil, err
	}
	return &SQLStore{Base: base}, nil
}

func (s *SQLStore) Append(ctx context.Context, order Order) error {
	items, err := order.ItemsJSON()
	if err != nil {
		return err
	}
	rec := orderRecord{
		OrderID:    order.ID,
		CreatedAt:  order.CreatedAt.UTC(),
		SessionID:  order.SessionID,
		Name:       order.Name,
		Phone:      order.Phone,
		Address:    order.Address,
		ItemsJSON:  items,
		TotalCents: order.TotalCents,
		Status:     order.Status,
	}
	if err := s.DB(ctx).Create(&rec).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order id already used")
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}
