package completion

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"docstream-backend/internal/shared/storage/db"
)

const (
	txOverallTimeout = 30 * time.Second
	txAcquireTimeout = 5 * time.Second
)

// TxRunner runs a function inside one unit of work. Everything the
// function writes through the provided DBTX commits together or not at
// all.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx db.DBTX) error) error
}

// SQLRunner runs units of work as database transactions. Acquiring a
// connection is bounded separately from the transaction itself so a
// saturated pool fails fast instead of eating the whole budget.
type SQLRunner struct {
	DB *sql.DB
}

// RunInTx begins a transaction, runs fn, and commits. Any error from fn
// rolls back and is returned unchanged so callers can classify it.
func (r *SQLRunner) RunInTx(ctx context.Context, fn func(tx db.DBTX) error) error {
	txCtx, cancel := context.WithTimeout(ctx, txOverallTimeout)
	defer cancel()

	acquireCtx, acquireCancel := context.WithTimeout(txCtx, txAcquireTimeout)
	defer acquireCancel()

	conn, err := r.DB.Conn(acquireCtx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// MemoryRunner runs units of work without transactional scope, for the
// in-memory repositories. Repos enforce their own uniqueness, so the
// duplicate-key checks still hold; multi-write atomicity does not.
type MemoryRunner struct{}

// RunInTx runs fn with a nil unit of work.
func (MemoryRunner) RunInTx(ctx context.Context, fn func(tx db.DBTX) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(nil)
}

var (
	_ TxRunner = (*SQLRunner)(nil)
	_ TxRunner = MemoryRunner{}
)
