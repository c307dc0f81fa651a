package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kkkkikiki/dealswipe/internal/model"
	"github.com/kkkkikiki/dealswipe/internal/normalize"
)

// DBExecutor interface for database operations (can be *sqlx.DB or *sqlx.Tx)
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
}

// PostgreSQL error codes
const (
	pgUndefinedFunction = "42883"
	pgUndefinedTable    = "42P01"
	pgUniqueViolation   = "23505"
	pgForeignKey        = "23503"
	pgCheckViolation    = "23514"
)

// classify maps driver errors onto the model sentinels. A missing table means
// the store is not provisioned; a missing function means the enhanced
// tracking procedure is not deployed.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUndefinedFunction:
			return fmt.Errorf("%w: %s", model.ErrProcedureUnavailable, pqErr.Message)
		case pgUndefinedTable:
			return fmt.Errorf("%w: %s", model.ErrStoreUnavailable, pqErr.Message)
		case pgUniqueViolation:
			return &model.ValidationError{Field: pqErr.Column, Reason: "already exists"}
		case pgForeignKey:
			return &model.ValidationError{Field: "firm_id", Reason: "references an unknown firm"}
		case pgCheckViolation:
			return &model.ValidationError{Field: pqErr.Constraint, Reason: "violates " + pqErr.Message}
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return err
}

// queryRecords runs query and returns each row keyed by column name
func queryRecords(ctx context.Context, db DBExecutor, query string, args ...interface{}) ([]normalize.Record, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var records []normalize.Record
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, normalize.Record(row))
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return records, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(i int) interface{} {
	if i == 0 {
		return nil
	}
	return i
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// expectOneRow turns an update that matched nothing into ErrNotFound
func expectOneRow(result sql.Result, entity, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, model.ErrNotFound)
	}
	return nil
}
