package duckdb

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTransaction carries tx on the context so store writes within one
// detection run commit or roll back together.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTransaction returns the transaction carried by ctx, or nil.
func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
