package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// TxRunner is the transaction boundary for multi-step writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

// InTx commits when fn returns nil and rolls back otherwise; fn's error is
// returned unchanged so callers can still match on it.
func (r *gormTxRunner) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return errors.New("tx runner: nil db")
	}
	return r.db.WithContext(ctx).Transaction(fn)
}
