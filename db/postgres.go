package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"portfoliosync/apperrors"
	"portfoliosync/logger"
)

// Connection pool defaults.
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
)

const createDocumentsTable = `
	CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		collection TEXT NOT NULL,
		data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS documents_collection_data_idx ON documents USING GIN (data);
	CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection, updated_at DESC)
`

// PostgresStore implements Store on a single JSONB documents table.
type PostgresStore struct {
	dsn string
	now func() time.Time

	mu   sync.Mutex
	conn *sqlx.DB
	// Prepared statements cache
	stmtCache struct {
		sync.RWMutex
		statements map[string]*sqlx.Stmt
	}
}

// NewPostgresStore creates a store for dsn without connecting.
func NewPostgresStore(dsn string) *PostgresStore {
	s := &PostgresStore{
		dsn: dsn,
		now: func() time.Time { return time.Now().UTC() },
	}
	s.stmtCache.statements = make(map[string]*sqlx.Stmt)
	return s
}

func (s *PostgresStore) Connect(ctx context.Context) error {
	_, err := s.database(ctx)
	return err
}

func (s *PostgresStore) database(ctx context.Context) (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}

	logger.Info("Connecting to database", zap.String("dsn", redact(s.dsn)))
	conn, err := sqlx.ConnectContext(ctx, "postgres", s.dsn)
	if err != nil {
		return nil, apperrors.Persistence("connect", fmt.Errorf("%w: %v", ErrDatabaseConnection, err))
	}

	conn.SetMaxOpenConns(defaultMaxOpenConns)
	conn.SetMaxIdleConns(defaultMaxIdleConns)
	conn.SetConnMaxLifetime(defaultConnMaxLifetime)

	if _, err := conn.ExecContext(ctx, createDocumentsTable); err != nil {
		conn.Close()
		return nil, apperrors.Persistence("migrate", fmt.Errorf("failed to create documents table: %w", err))
	}

	s.conn = conn
	logger.Info("Database connection established",
		zap.Int("max_open_conns", defaultMaxOpenConns),
		zap.Int("max_idle_conns", defaultMaxIdleConns),
		zap.Duration("conn_max_lifetime", defaultConnMaxLifetime))
	return s.conn, nil
}

// getStmt returns a prepared statement from cache or creates a new one
func (s *PostgresStore) getStmt(ctx context.Context, conn *sqlx.DB, query string) (*sqlx.Stmt, error) {
	s.stmtCache.RLock()
	stmt, exists := s.stmtCache.statements[query]
	s.stmtCache.RUnlock()

	if exists {
		return stmt, nil
	}

	s.stmtCache.Lock()
	defer s.stmtCache.Unlock()

	// Double-check after acquiring write lock
	if stmt, exists = s.stmtCache.statements[query]; exists {
		return stmt, nil
	}

	stmt, err := conn.PreparexContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	s.stmtCache.statements[query] = stmt
	return stmt, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, collection string, filter Filter, doc any) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	conn, err := s.database(ctx)
	if err != nil {
		return err
	}

	filterJSON, err := json.Marshal(filterOrEmpty(filter))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	now := s.now()
	setJSON, err := documentJSON(doc, now)
	if err != nil {
		return apperrors.Persistence("upsert", err)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.Persistence("upsert", fmt.Errorf("%w: %v", ErrTransactionFailed, err))
	}
	defer tx.Rollback()

	var id int64
	err = tx.GetContext(ctx, &id, `
		SELECT id FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY updated_at DESC
		LIMIT 1
		FOR UPDATE
	`, collection, string(filterJSON))

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO documents (collection, data, updated_at)
			VALUES ($1, $2::jsonb || $3::jsonb, $4)
		`, collection, string(filterJSON), string(setJSON), now)
	case err == nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE documents SET data = data || $1::jsonb, updated_at = $2
			WHERE id = $3
		`, string(setJSON), now, id)
	}
	if err != nil {
		return apperrors.Persistence("upsert", fmt.Errorf("failed to upsert into %s: %w", collection, err))
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Persistence("upsert", fmt.Errorf("%w: failed to commit transaction: %v", ErrTransactionFailed, err))
	}

	logger.Debug("Upserted document", zap.String("collection", collection))
	return nil
}

func (s *PostgresStore) FindOne(ctx context.Context, collection string, filter Filter, opts *FindOptions, out any) error {
	one := FindOptions{Limit: 1}
	if opts != nil {
		one.SortField, one.SortDesc = opts.SortField, opts.SortDesc
	}

	raws, err := s.query(ctx, collection, filter, &one)
	if err != nil {
		return err
	}
	if len(raws) == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, collection)
	}
	if err := json.Unmarshal([]byte(raws[0]), out); err != nil {
		return apperrors.Shape(collection, err)
	}
	return nil
}

func (s *PostgresStore) FindMany(ctx context.Context, collection string, filter Filter, opts *FindOptions, out any) error {
	if rv := reflect.ValueOf(out); rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("%w: FindMany needs a pointer to a slice", ErrInvalidInput)
	}

	raws, err := s.query(ctx, collection, filter, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte("["+strings.Join(raws, ",")+"]"), out); err != nil {
		return apperrors.Shape(collection, err)
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, collection string, filter Filter, opts *FindOptions) ([]string, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	query, err := selectQuery(opts)
	if err != nil {
		return nil, err
	}
	filterJSON, err := json.Marshal(filterOrEmpty(filter))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	conn, err := s.database(ctx)
	if err != nil {
		return nil, err
	}
	stmt, err := s.getStmt(ctx, conn, query)
	if err != nil {
		return nil, apperrors.Persistence("find", err)
	}

	var raws []string
	if err := stmt.SelectContext(ctx, &raws, collection, string(filterJSON)); err != nil {
		return nil, apperrors.Persistence("find", fmt.Errorf("failed to query %s: %w", collection, err))
	}
	return raws, nil
}

func selectQuery(opts *FindOptions) (string, error) {
	var b strings.Builder
	b.WriteString("SELECT data FROM documents WHERE collection = $1 AND data @> $2::jsonb")

	if opts != nil && opts.SortField != "" {
		if err := validateFieldName(opts.SortField); err != nil {
			return "", err
		}
		dir := "ASC"
		if opts.SortDesc {
			dir = "DESC"
		}
		switch {
		case opts.SortField == "updatedAt":
			fmt.Fprintf(&b, " ORDER BY updated_at %s", dir)
		case strings.HasSuffix(opts.SortField, "At"):
			// Timestamps are stored as RFC 3339 strings with trimmed fractions,
			// which do not sort correctly as text.
			fmt.Fprintf(&b, " ORDER BY (data->>'%s')::timestamptz %s", opts.SortField, dir)
		default:
			fmt.Fprintf(&b, " ORDER BY data->>'%s' %s", opts.SortField, dir)
		}
	} else {
		b.WriteString(" ORDER BY id ASC")
	}
	if opts != nil && opts.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", opts.Limit)
	}
	return b.String(), nil
}

func (s *PostgresStore) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	if err := validateCollection(collection); err != nil {
		return 0, err
	}
	conn, err := s.database(ctx)
	if err != nil {
		return 0, err
	}
	filterJSON, err := json.Marshal(filterOrEmpty(filter))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	res, err := conn.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND data @> $2::jsonb`,
		collection, string(filterJSON))
	if err != nil {
		return 0, apperrors.Persistence("delete", fmt.Errorf("failed to delete from %s: %w", collection, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Persistence("delete", err)
	}
	return n, nil
}

func (s *PostgresStore) InsertMany(ctx context.Context, collection string, docs []any) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	if err := validateCollection(collection); err != nil {
		return 0, err
	}
	conn, err := s.database(ctx)
	if err != nil {
		return 0, err
	}

	safeLogInfo("Starting batch insertion of documents", zap.String("collection", collection), zap.Int("count", len(docs)))
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperrors.Persistence("insert", fmt.Errorf("%w: %v", ErrTransactionFailed, err))
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO documents (collection, data, updated_at) VALUES ($1, $2::jsonb, $3)`)
	if err != nil {
		return 0, apperrors.Persistence("insert", fmt.Errorf("failed to prepare insert statement: %w", err))
	}
	defer stmt.Close()

	now := s.now()
	for i, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return 0, apperrors.Persistence("insert", fmt.Errorf("failed to encode document %d: %w", i, err))
		}
		if _, err := stmt.ExecContext(ctx, collection, string(raw), now); err != nil {
			return 0, apperrors.Persistence("insert", fmt.Errorf("failed to insert document %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.Persistence("insert", fmt.Errorf("%w: failed to commit transaction: %v", ErrTransactionFailed, err))
	}
	return len(docs), nil
}

// Close closes cached statements and the connection pool.
func (s *PostgresStore) Close() error {
	s.stmtCache.Lock()
	for query, stmt := range s.stmtCache.statements {
		stmt.Close()
		delete(s.stmtCache.statements, query)
	}
	s.stmtCache.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func filterOrEmpty(filter Filter) Filter {
	if filter == nil {
		return Filter{}
	}
	return filter
}

// documentJSON encodes doc as a JSON object with updatedAt set to now.
func documentJSON(doc any, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	fields["updatedAt"] = now
	return json.Marshal(fields)
}

// safeLogInfo safely logs info messages, falling back to standard log if logger is not initialized
func safeLogInfo(msg string, fields ...zap.Field) {
	if logger.GetLogger() != nil {
		logger.Info(msg, fields...)
	}
}
