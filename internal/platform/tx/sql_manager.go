package tx

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// SQLManager runs fn inside one database transaction. The transaction rides
// the context so every store touched by the same Within call shares it.
// Nested Within calls join the outer transaction.
type SQLManager struct {
	db *sql.DB
}

func NewSQLManager(db *sql.DB) SQLManager {
	return SQLManager{db: db}
}

func (m SQLManager) Within(ctx context.Context, fn func(context.Context) error) error {
	if From(ctx) != nil {
		return fn(ctx)
	}
	txn, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, txn)); err != nil {
		_ = txn.Rollback()
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// From returns the transaction carried by ctx, or nil outside Within.
func From(ctx context.Context) *sql.Tx {
	txn, _ := ctx.Value(txKey{}).(*sql.Tx)
	return txn
}
