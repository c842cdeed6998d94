package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/repository"
	"github.com/Alexis-Lijeron/redes/internal/transfer"
)

type SettingsService interface {
	Get(ctx context.Context, userID int64) (*models.Settings, error)
	Update(ctx context.Context, userID int64, su *transfer.SettingsUpdate) (*models.Settings, error)
}

type settingsService struct {
	s repository.SettingsRepository
}

func NewSettingsService(s repository.SettingsRepository) SettingsService {
	return &settingsService{
		s: s,
	}
}

// Get returns the user's settings, falling back to every supported network
// when the user has never saved any.
func (s *settingsService) Get(ctx context.Context, userID int64) (*models.Settings, error) {
	settings, isExist, err := s.s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !isExist {
		defaults := make([]string, 0, len(models.AllNetworks))
		for _, n := range models.AllNetworks {
			defaults = append(defaults, string(n))
		}
		return &models.Settings{
			UserID:          userID,
			DefaultNetworks: defaults,
		}, nil
	}

	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, userID int64, su *transfer.SettingsUpdate) (*models.Settings, error) {
	networks := make([]string, 0, len(su.DefaultNetworks))
	for _, raw := range su.DefaultNetworks {
		n, err := models.ParseNetwork(raw)
		if err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, raw)
		}
		networks = append(networks, string(n))
	}

	settings := &models.Settings{
		UserID:          userID,
		DefaultNetworks: networks,
	}

	if err := s.s.Upsert(ctx, settings); err != nil {
		return nil, err
	}

	return settings, nil
}
