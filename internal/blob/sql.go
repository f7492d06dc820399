package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQL keeps blob bytes in the blobs table.
type SQL struct {
	db      *sqlx.DB
	baseURL string
}

// NewSQL returns a Store backed by db that serves URLs under baseURL.
func NewSQL(db *sqlx.DB, baseURL string) *SQL {
	return &SQL{db: db, baseURL: baseURL}
}

type blobRow struct {
	Path        string `db:"path"`
	ContentType string `db:"content_type"`
	Data        []byte `db:"data"`
	CreatedAt   int64  `db:"created_at"`
}

func (s *SQL) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	_, err := s.db.ExecContext(ctx, `INSERT INTO blobs (path, content_type, data, created_at) VALUES ($1, $2, $3, $4)
        ON CONFLICT (path) DO UPDATE SET content_type = excluded.content_type, data = excluded.data, created_at = excluded.created_at`,
		path, contentType, data, time.Now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return URL(s.baseURL, path), nil
}

func (s *SQL) Open(ctx context.Context, path string) (Object, error) {
	var row blobRow
	err := s.db.GetContext(ctx, &row, `SELECT path, content_type, data, created_at FROM blobs WHERE path = $1`, path)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, ErrNotFound
	}
	if err != nil {
		return Object{}, fmt.Errorf("open %s: %w", path, err)
	}
	return Object{Path: row.Path, ContentType: row.ContentType, Data: row.Data, CreatedAt: time.UnixMilli(row.CreatedAt).UTC()}, nil
}

func (s *SQL) Delete(ctx context.Context, path string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE path = $1`, path)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
