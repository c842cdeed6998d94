package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/repository"
	"github.com/Alexis-Lijeron/redes/internal/transfer"
)

// AdaptationService turns a draft post into per-network publications. One
// failing network never aborts the batch: its text falls back to the plain
// title + content concatenation and the publication is created anyway.
type AdaptationService interface {
	Adapt(ctx context.Context, userID int64, req *transfer.AdaptRequest) (*transfer.AdaptResult, error)
}

type adaptationService struct {
	adapter ContentAdapter
	pr      repository.PostRepository
	pub     repository.PublicationRepository
	sr      repository.SettingsRepository
}

func NewAdaptationService(
	adapter ContentAdapter,
	pr repository.PostRepository,
	pub repository.PublicationRepository,
	sr repository.SettingsRepository) AdaptationService {
	return &adaptationService{
		adapter: adapter,
		pr:      pr,
		pub:     pub,
		sr:      sr,
	}
}

func fallbackText(post *models.Post) string {
	return fmt.Sprintf("%s\n\n%s", post.Title, post.Content)
}

func (s *adaptationService) Adapt(ctx context.Context, userID int64, req *transfer.AdaptRequest) (*transfer.AdaptResult, error) {
	owned, err := s.pr.CheckByUserID(ctx, req.PostID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrPostNotFound
	}

	post, err := s.pr.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	networks, err := s.resolveNetworks(ctx, userID, req.Networks)
	if err != nil {
		return nil, err
	}

	if req.PreviewOnly {
		return s.preview(ctx, post, networks)
	}

	result := &transfer.AdaptResult{
		PostID:      post.ID,
		Adaptations: make(map[models.SocialNetwork]string, len(networks)),
	}

	for _, network := range networks {
		text := fallbackText(post)
		adaptation, err := s.adapter.AdaptForNetwork(ctx, post.Title, post.Content, network)
		if err != nil {
			slog.Error("content adaptation failed, using fallback", "network", network, "post_id", post.ID, "error", err)
		} else {
			text = adaptation.Text
		}
		result.Adaptations[network] = text

		pub, err := s.pub.Create(ctx, post.ID, network, text)
		if err != nil {
			slog.Error("error creating publication", "network", network, "post_id", post.ID, "error", err)
			continue
		}
		result.Publications = append(result.Publications, pub)
	}

	// No publication has reached a terminal status yet, so the post moves
	// to processing directly instead of through the resolver.
	if err := s.pr.UpdateStatus(ctx, models.PostStatusProcessing, post.ID); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *adaptationService) preview(ctx context.Context, post *models.Post, networks []models.SocialNetwork) (*transfer.AdaptResult, error) {
	result := &transfer.AdaptResult{
		PostID:  post.ID,
		Preview: make(map[models.SocialNetwork]transfer.NetworkPreview, len(networks)),
	}

	for _, network := range networks {
		adaptation, err := s.adapter.AdaptForNetwork(ctx, post.Title, post.Content, network)
		if err != nil {
			slog.Error("preview adaptation failed", "network", network, "post_id", post.ID, "error", err)
			result.Preview[network] = transfer.NetworkPreview{
				AdaptedText: fallbackText(post),
				Error:       err.Error(),
			}
			continue
		}
		result.Preview[network] = transfer.NetworkPreview{
			AdaptedText:          adaptation.Text,
			Hashtags:             adaptation.Hashtags,
			SuggestedMediaPrompt: adaptation.SuggestedMediaPrompt,
			CharacterCount:       adaptation.CharacterCount,
			Tone:                 adaptation.Tone,
		}
	}

	return result, nil
}

// resolveNetworks validates the requested networks, falling back to the
// user's default networks and then to every supported network.
func (s *adaptationService) resolveNetworks(ctx context.Context, userID int64, requested []string) ([]models.SocialNetwork, error) {
	if len(requested) == 0 {
		settings, ok, err := s.sr.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if ok && len(settings.DefaultNetworks) > 0 {
			requested = settings.DefaultNetworks
		} else {
			return models.AllNetworks, nil
		}
	}

	networks := make([]models.SocialNetwork, 0, len(requested))
	for _, raw := range requested {
		network, err := models.ParseNetwork(raw)
		if err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, raw)
		}
		networks = append(networks, network)
	}
	return networks, nil
}
