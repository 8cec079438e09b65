package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

// UnitOfWork runs check-then-act operations in a single transaction holding
// advisory locks on every entity they touch.
type UnitOfWork struct {
	db *sqlx.DB
}

// NewUnitOfWork constructs the unit of work.
func NewUnitOfWork(db *sqlx.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Run begins a transaction, takes pg_advisory_xact_lock for each key in sorted
// order and calls fn. The transaction commits when fn returns nil and rolls back otherwise.
func (u *UnitOfWork) Run(ctx context.Context, keys []string, fn func(exec sqlx.ExtContext) error) (err error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, key := range LockOrder(keys) {
		if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
	}

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit unit of work: %w", err)
	}
	return nil
}

// LockOrder sorts and de-duplicates lock keys so concurrent units never wait on each other in a cycle.
func LockOrder(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	ordered := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ordered = append(ordered, key)
	}
	sort.Strings(ordered)
	return ordered
}
