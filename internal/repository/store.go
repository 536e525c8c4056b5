package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the settlement repositories over one gorm handle so a whole
// settlement path can run inside a single transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a Store bound to a database transaction. The
// transaction is the unit of atomicity for every settlement path.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
