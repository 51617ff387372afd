package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor позволяет методам репозиториев работать как с *sql.DB, так и
// с *sql.Tx — транзакции финализации собираются на уровне сервиса.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// isForeignKeyViolation проверяет, что ошибка — нарушение конкретного FK.
func isForeignKeyViolation(err error, constraint string) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		return pqErr.Code == "23503" && pqErr.Constraint == constraint
	}
	return false
}
