package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/wavehaus/transcode/internal/domain"
	"github.com/wavehaus/transcode/internal/port"
)

type ContentStore struct {
	db *sql.DB
}

func NewContentStore(store *Store) *ContentStore {
	return &ContentStore{db: store.db}
}

func (s *ContentStore) SaveContent(ctx context.Context, c *domain.Content) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contents (id, kind, title, source_url, source_ext, video_status,
			manifest_url, thumb_url, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Kind, c.Title, c.SourceURL, c.SourceExt, c.VideoStatus,
		c.ManifestURL, c.ThumbURL, c.ErrorMessage, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *ContentStore) GetContent(ctx context.Context, id string) (*domain.Content, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, title, source_url, source_ext, video_status,
			manifest_url, thumb_url, error_message, created_at, updated_at
		FROM contents WHERE id = ?`, id)

	var c domain.Content
	err := row.Scan(&c.ID, &c.Kind, &c.Title, &c.SourceURL, &c.SourceExt,
		&c.VideoStatus, &c.ManifestURL, &c.ThumbURL, &c.ErrorMessage,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ContentStore) UpdateVideo(ctx context.Context, id string, status domain.VideoStatus, manifestURL, thumbURL, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE contents
		SET video_status = ?, manifest_url = ?, thumb_url = ?, error_message = ?, updated_at = ?
		WHERE id = ?`,
		status, manifestURL, thumbURL, errMsg, time.Now(), id)
	if err != nil {
		return err
	}
	return oneRow(res)
}

var _ port.ContentStore = (*ContentStore)(nil)
