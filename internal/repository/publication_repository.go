package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Alexis-Lijeron/redes/internal/models"
)

// StatusUpdate carries the optional fields of an UpdateStatus call.
// Metadata is merged into the stored extra_data, new keys winning.
type StatusUpdate struct {
	ErrorMessage string
	Metadata     models.ExtraData
}

type PublicationRepository interface {
	Create(ctx context.Context, postID int64, network models.SocialNetwork, adaptedContent string) (*models.Publication, error)
	GetByID(ctx context.Context, id int64) (*models.Publication, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.Publication, error)
	UpdateStatus(ctx context.Context, id int64, status string, upd StatusUpdate) (*models.Publication, error)
	ListStuckProcessing(ctx context.Context, olderThan time.Time) ([]*models.Publication, error)
}

type publicationRepository struct {
	db *sql.DB
}

func NewPublicationRepository(db *sql.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

const publicationColumns = `id, post_id, network, adapted_content, status, published_at, COALESCE(error_message, ''), extra_data, created_at, updated_at`

func scanPublication(row interface{ Scan(...any) error }) (*models.Publication, error) {
	var pub models.Publication
	var publishedAt sql.NullTime
	err := row.Scan(
		&pub.ID,
		&pub.PostID,
		&pub.Network,
		&pub.AdaptedContent,
		&pub.Status,
		&publishedAt,
		&pub.ErrorMessage,
		&pub.ExtraData,
		&pub.CreatedAt,
		&pub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		pub.PublishedAt = &publishedAt.Time
	}
	return &pub, nil
}

func (r *publicationRepository) Create(ctx context.Context, postID int64, network models.SocialNetwork, adaptedContent string) (*models.Publication, error) {
	query := `
		INSERT INTO publications (post_id, network, adapted_content, status, extra_data)
		VALUES ($1, $2, $3, $4, '{}')
		RETURNING ` + publicationColumns

	row := r.db.QueryRowContext(ctx, query, postID, string(network), adaptedContent, models.PublicationStatusPending)
	pub, err := scanPublication(row)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return pub, nil
}

func (r *publicationRepository) GetByID(ctx context.Context, id int64) (*models.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE id = $1`

	pub, err := scanPublication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return pub, nil
}

func (r *publicationRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE post_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var pubs []*models.Publication
	for rows.Next() {
		pub, err := scanPublication(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pubs = append(pubs, pub)
	}
	return pubs, rows.Err()
}

// UpdateStatus moves a publication to status, stamping published_at exactly
// once on the transition into published, merging upd.Metadata into extra_data
// and recording upd.ErrorMessage when set. Returns (nil, nil) for unknown ids.
// The read-merge-write runs in a single-row transaction; no post row is
// touched here. A published row never moves back to processing: enqueue
// happens before the caller's processing write, so a fast worker may already
// have finished.
func (r *publicationRepository) UpdateStatus(ctx context.Context, id int64, status string, upd StatusUpdate) (*models.Publication, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer tx.Rollback()

	query := `SELECT ` + publicationColumns + ` FROM publications WHERE id = $1 FOR UPDATE`
	pub, err := scanPublication(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if pub.Status == models.PublicationStatusPublished && status == models.PublicationStatusProcessing {
		return pub, nil
	}

	if status == models.PublicationStatusPublished && pub.Status != models.PublicationStatusPublished {
		now := time.Now()
		pub.PublishedAt = &now
	}
	pub.ExtraData = pub.ExtraData.Merge(upd.Metadata)
	if upd.ErrorMessage != "" {
		pub.ErrorMessage = upd.ErrorMessage
	}
	pub.Status = status
	pub.UpdatedAt = time.Now()

	var publishedAt sql.NullTime
	if pub.PublishedAt != nil {
		publishedAt = sql.NullTime{Time: *pub.PublishedAt, Valid: true}
	}

	update := `
		UPDATE publications
		SET status = $1,
			published_at = $2,
			error_message = NULLIF($3, ''),
			extra_data = $4,
			updated_at = $5
		WHERE id = $6
	`
	if _, err := tx.ExecContext(ctx, update, pub.Status, publishedAt, pub.ErrorMessage, pub.ExtraData, pub.UpdatedAt, pub.ID); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return pub, nil
}

// ListStuckProcessing returns publications that have been sitting in
// processing since before olderThan, which usually means a worker died
// mid-call.
func (r *publicationRepository) ListStuckProcessing(ctx context.Context, olderThan time.Time) ([]*models.Publication, error) {
	query := `SELECT ` + publicationColumns + ` FROM publications WHERE status = $1 AND updated_at < $2 ORDER BY updated_at`

	rows, err := r.db.QueryContext(ctx, query, models.PublicationStatusProcessing, olderThan)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var pubs []*models.Publication
	for rows.Next() {
		pub, err := scanPublication(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pubs = append(pubs, pub)
	}
	return pubs, rows.Err()
}
