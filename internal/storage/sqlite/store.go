package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"

	"taskboard/internal/apperr"
	"taskboard/internal/service"
)

var _ service.Repository = (*Store)(nil)

// Store wraps access to the SQLite database and implements the service
// repository.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes a new SQLite store and applies pending migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for maintenance tasks and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// queryer is satisfied by both *sql.DB and *sql.Tx. With a single pooled
// connection, code running inside a transaction must only use the tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", slog.String("error", rbErr.Error()))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// classify turns constraint violations into conflict errors and wraps
// everything else with the operation name.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		switch serr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintTrigger:
			return &apperr.Error{Kind: apperr.KindConflict, Code: apperr.CodeInUse, Message: "the record is referenced by other records", Err: err}
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &apperr.Error{Kind: apperr.KindConflict, Code: apperr.CodeDuplicate, Message: "the record already exists", Err: err}
		case sqlite3.ErrConstraintCheck, sqlite3.ErrConstraintNotNull:
			return &apperr.Error{Kind: apperr.KindValidation, Code: apperr.CodeInvalidInput, Message: "the given data was invalid", Err: err}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// notFound maps sql.ErrNoRows to a not found error for entity.
func notFound(entity, op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(entity)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// expectAffected fails with a not found error when nothing was changed.
func expectAffected(res sql.Result, entity string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound(entity)
	}
	return nil
}

// likePattern builds a LIKE pattern matching term as a literal substring.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// placeholders returns "?, ?, ..." with n markers and the ids as args.
func placeholders(ids []int64) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}

// where accumulates AND-ed conditions with their arguments.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
