// Package repo holds the plumbing shared by the per-domain gorm repositories.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by every domain repository. The zero value is unusable.
type Base struct {
	conn *gorm.DB
}

func NewBase(db *gorm.DB) Base { return Base{conn: db} }

// DB scopes the connection to ctx so cancellation reaches the driver.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}

// Bind re-targets the base at tx; services use it to run several repositories
// inside one transaction. A nil tx leaves the base unchanged.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx != nil {
		b.conn = tx
	}
	return b
}

// OneRow turns a targeted UPDATE or DELETE that matched nothing into
// gorm.ErrRecordNotFound, so services map both lookups and writes the same way.
func OneRow(result *gorm.DB) error {
	switch {
	case result.Error != nil:
		return result.Error
	case result.RowsAffected == 0:
		return gorm.ErrRecordNotFound
	default:
		return nil
	}
}
