package storage

import (
	"context"
	"database/sql"
)

// MaxBatchRows bounds the rows of one multi-row INSERT. At ten columns this stays
// far below SQLite's 32766 and Postgres's 65535 bind-variable limits.
const MaxBatchRows = 500

// Execer runs a statement. InTx hands one bound to the open transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type txExecer struct {
	tx      *sql.Tx
	dialect Dialect
}

func (e txExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return e.tx.ExecContext(ctx, e.dialect.Rebind(query), args...)
}

// InTx runs fn inside one transaction on db and commits only when fn returns nil.
// Statements issued through the Execer are rebound for db's dialect.
func InTx(ctx context.Context, db SQLDB, fn func(Execer) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(txExecer{tx: tx, dialect: dialectOf(db)}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func dialectOf(db SQLDB) Dialect {
	if d, ok := db.(interface{ Dialect() Dialect }); ok {
		return d.Dialect()
	}
	return DialectSQLite
}

// InsertBatched runs head + VALUES groups + tail once per MaxBatchRows rows, all in one transaction.
// PRE: len(args) is a multiple of cols
// POST: returns the total rows affected; on error the transaction is rolled back and nothing is written
func InsertBatched(ctx context.Context, db SQLDB, head, tail string, cols int, args []any) (int, error) {
	rows := len(args) / cols
	if rows == 0 {
		return 0, nil
	}
	total := 0
	err := InTx(ctx, db, func(ex Execer) error {
		for start := 0; start < rows; start += MaxBatchRows {
			end := min(start+MaxBatchRows, rows)
			res, err := ex.ExecContext(ctx, head+" VALUES "+Placeholders(end-start, cols)+" "+tail, args[start*cols:end*cols]...)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			total += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
