package tr

import (
	"context"

	"github.com/DRSN-tech/pos-backend/pkg/e"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type txKey struct{}

// Executor — общий набор методов pgx.Tx и *pgxpool.Pool, которым пользуются репозитории.
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx кладёт транзакцию в контекст
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}

// ExecutorFromCtx возвращает транзакцию из контекста, а если её нет — fallback (обычно пул).
func ExecutorFromCtx(ctx context.Context, fallback Executor) Executor {
	if tx, err := TxFromCtx(ctx); err == nil {
		return tx
	}
	return fallback
}

// Runner выполняет функцию в рамках одной транзакции PostgreSQL.
type Runner struct {
	db transaction.Transactional
}

func NewRunner(db transaction.Transactional) *Runner {
	return &Runner{db: db}
}

// WithinTx открывает транзакцию, передаёт её в fn через контекст и коммитит при успехе.
// Любая ошибка fn (или коммита) приводит к Rollback.
func (r *Runner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "Runner.WithinTx"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, r.db)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		err = e.Wrap(op, e.ErrTransactionNotFound)
		return err
	}

	if err = fn(WithTx(ctx, pgxTx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
