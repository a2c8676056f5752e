package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"powerauthserver/database"
	"powerauthserver/logger"
)

// Tx *sql.Tx 래퍼. 커밋 후 실행할 훅을 모은다
type Tx struct {
	tx          *sql.Tx
	dialect     database.Dialect
	afterCommit []func()
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *Tx) Dialect() database.Dialect {
	return t.dialect
}

// AfterCommit 커밋 성공 후에만 실행된다 (알림, 감사 로그)
func (t *Tx) AfterCommit(fn func()) {
	t.afterCommit = append(t.afterCommit, fn)
}

func (t *Tx) commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	for _, fn := range t.afterCommit {
		fn()
	}
	return nil
}

func (t *Tx) rollback() {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Warn("transaction rollback failed: %v", err)
	}
}

// runInTx fn 을 트랜잭션으로 실행한다.
// Persisted 가 설정된 ServiceError 는 커밋 후 그대로 반환하고 그 외 에러는 롤백한다.
func runInTx(ctx context.Context, db SQLExecutor, fn func(tx *Tx) error) error {
	_, err := runInTxResult(ctx, db, func(tx *Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

// runInTxResult 결과값을 반환하는 runInTx
func runInTxResult[T any](ctx context.Context, db SQLExecutor, fn func(tx *Tx) (T, error)) (T, error) {
	var zero T
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("begin transaction: %w", err)
	}

	result, err := fn(tx)
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) && svcErr.Persisted {
			if cerr := tx.commit(); cerr != nil {
				return zero, fmt.Errorf("commit transaction: %w", cerr)
			}
			return zero, err
		}
		tx.rollback()
		return zero, err
	}

	if err := tx.commit(); err != nil {
		return zero, fmt.Errorf("commit transaction: %w", err)
	}
	return result, nil
}

// afterCommit 트랜잭션이면 커밋 후로 미루고 아니면 즉시 실행
func afterCommit(q Querier, fn func()) {
	if tx, ok := q.(*Tx); ok {
		tx.AfterCommit(fn)
		return
	}
	fn()
}
