// Package option provides composable query modifiers for gorm statements.
package option

import (
	"gorm.io/gorm"

	"github.com/casaantigua/anticuario/pkg/db/pagination"
)

// Option mutates a gorm statement before execution.
type Option func(*gorm.DB) *gorm.DB

// Apply runs the option against the statement.
func (o Option) Apply(stmt *gorm.DB) *gorm.DB {
	if o == nil {
		return stmt
	}
	return o(stmt)
}

// Options chains several options in order.
type Options []Option

// Apply runs every option against the statement.
func (os Options) Apply(stmt *gorm.DB) *gorm.DB {
	for _, o := range os {
		stmt = o.Apply(stmt)
	}
	return stmt
}

// ApplyPagination applies cursor pagination: one extra row is fetched so the
// caller can tell whether another page exists.
func ApplyPagination(page pagination.Pagination) Option {
	return func(stmt *gorm.DB) *gorm.DB {
		if page.PageToken != "" {
			if cur, err := pagination.DecodeCursor(page.PageToken); err == nil {
				stmt = stmt.Where(
					"(created_at, id) < (?, ?)",
					cur.CreatedAt, cur.ID,
				)
			}
		}
		return stmt.Limit(page.Limit() + 1)
	}
}
