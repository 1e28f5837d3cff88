// Package repo holds the gorm plumbing shared by the SQL-backed order store and catalog source.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Base binds a gorm connection to the caller's context.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) (Base, error) {
	if db == nil {
		return Base{}, fmt.Errorf("db required")
	}
	return Base{db: db}, nil
}

// DB returns the connection bound to ctx, or the raw connection when ctx is nil.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Table scopes a context-bound query to one table.
func (b Base) Table(ctx context.Context, name string) *gorm.DB {
	return b.DB(ctx).Table(name)
}
