// Package db is the document store adapter: a small upsert/find API over
// MongoDB or a PostgreSQL JSONB table.
package db

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"portfoliosync/apperrors"
)

// Filter matches documents whose top-level fields equal the given values.
type Filter map[string]any

// FindOptions controls ordering and size of a find.
type FindOptions struct {
	SortField string
	SortDesc  bool
	Limit     int64
}

// Latest returns options selecting the most recent document by field.
func Latest(field string) *FindOptions {
	return &FindOptions{SortField: field, SortDesc: true, Limit: 1}
}

// ByUsername is the identity filter every collection is keyed by.
func ByUsername(username string) Filter {
	return Filter{"username": username}
}

// Store is the document store used by the pipeline and the read API.
// Connect is idempotent; every other method connects lazily on first use.
type Store interface {
	Connect(ctx context.Context) error
	// Upsert sets the top-level fields of doc on the document matching filter,
	// inserting filter+doc when none matches, and stamps updatedAt.
	Upsert(ctx context.Context, collection string, filter Filter, doc any) error
	// FindOne decodes the first match into out or returns ErrNotFound.
	FindOne(ctx context.Context, collection string, filter Filter, opts *FindOptions, out any) error
	// FindMany decodes all matches into out, which must point to a slice.
	FindMany(ctx context.Context, collection string, filter Filter, opts *FindOptions, out any) error
	DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error)
	InsertMany(ctx context.Context, collection string, docs []any) (int, error)
	Close() error
}

// NewStore picks a backend from the connection string scheme.
func NewStore(uri string) (Store, error) {
	switch {
	case uri == "":
		return nil, apperrors.Config("MONGODB_URI")
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return NewMongoStore(uri)
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return NewPostgresStore(uri), nil
	}
	return nil, apperrors.Configf("MONGODB_URI", "%w: %s", ErrUnsupportedStore, redact(uri))
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateFieldName(field string) error {
	if !fieldNamePattern.MatchString(field) {
		return fmt.Errorf("%w: invalid field name %q", ErrInvalidInput, field)
	}
	return nil
}

func validateCollection(collection string) error {
	if collection == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidInput)
	}
	return nil
}

// redact drops credentials from a connection string before it is logged.
func redact(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return "<invalid>"
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}
