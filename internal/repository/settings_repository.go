package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/lib/pq"
)

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error)
	Upsert(ctx context.Context, s *models.Settings) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	query := `
		SELECT id, user_id, default_networks, created_at, updated_at
		FROM settings
		WHERE user_id = $1
	`

	var s models.Settings
	var networks pq.StringArray
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.ID, &s.UserID, &networks, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	s.DefaultNetworks = networks

	return &s, true, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO settings (user_id, default_networks)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET default_networks = $2, updated_at = $3
	`
	_, err := r.db.ExecContext(ctx, query, s.UserID, pq.StringArray(s.DefaultNetworks), time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
