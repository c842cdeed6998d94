package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/repository"
	"github.com/Alexis-Lijeron/redes/internal/transfer"
)

// TaskEnqueuer hands a publication to the async queue and returns the queue
// task id, kept in extra_data for observability only.
type TaskEnqueuer interface {
	EnqueuePublish(ctx context.Context, publicationID int64, network models.SocialNetwork, content, mediaURL string) (string, error)
}

type PublicationService interface {
	Publish(ctx context.Context, userID int64, req *transfer.PublishRequest) (*transfer.PublishResult, error)
	Retry(ctx context.Context, userID, publicationID int64) (*models.Publication, error)
	Status(ctx context.Context, userID, postID int64) (*transfer.StatusSummary, error)
}

type publicationService struct {
	pr       repository.PostRepository
	pub      repository.PublicationRepository
	enqueuer TaskEnqueuer
	rdb      *redis.Client
}

func NewPublicationService(
	pr repository.PostRepository,
	pub repository.PublicationRepository,
	enqueuer TaskEnqueuer,
	rdb *redis.Client) PublicationService {
	return &publicationService{
		pr:       pr,
		pub:      pub,
		enqueuer: enqueuer,
		rdb:      rdb,
	}
}

// Publish enqueues one async task per pending publication of the post.
// Publications already past pending are left alone. A publication whose
// enqueue fails is marked failed immediately; the rest still go out.
func (s *publicationService) Publish(ctx context.Context, userID int64, req *transfer.PublishRequest) (*transfer.PublishResult, error) {
	owned, err := s.pr.CheckByUserID(ctx, req.PostID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrPostNotFound
	}

	pubs, err := s.pub.ListByPostID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if len(pubs) == 0 {
		return nil, ErrNoPublications
	}

	result := &transfer.PublishResult{
		PostID:            req.PostID,
		TotalPublications: len(pubs),
	}

	for _, pub := range pubs {
		if pub.Status != models.PublicationStatusPending {
			continue
		}

		taskID, err := s.enqueuer.EnqueuePublish(ctx, pub.ID, pub.Network, pub.AdaptedContent, req.ImageURL)
		if err != nil {
			slog.Error("error enqueueing publication", "publication_id", pub.ID, "network", pub.Network, "error", err)
			if _, uerr := s.pub.UpdateStatus(ctx, pub.ID, models.PublicationStatusFailed, repository.StatusUpdate{
				ErrorMessage: err.Error(),
			}); uerr != nil {
				slog.Error("error marking publication failed", "publication_id", pub.ID, "error", uerr)
			}
			result.Results = append(result.Results, transfer.EnqueueOutcome{
				PublicationID: pub.ID,
				Network:       pub.Network,
				Status:        "failed",
				Error:         err.Error(),
			})
			continue
		}

		metadata := models.ExtraData{"task_id": taskID}
		if req.ImageURL != "" {
			metadata["image_url"] = req.ImageURL
		}
		if _, err := s.pub.UpdateStatus(ctx, pub.ID, models.PublicationStatusProcessing, repository.StatusUpdate{
			Metadata: metadata,
		}); err != nil {
			slog.Error("error marking publication processing", "publication_id", pub.ID, "error", err)
		}

		result.Results = append(result.Results, transfer.EnqueueOutcome{
			PublicationID: pub.ID,
			Network:       pub.Network,
			Status:        "enqueued",
			TaskID:        taskID,
		})
	}

	return result, nil
}

// Retry re-enqueues a failed or still-pending publication with a fresh
// attempt budget. Anything else is a state conflict: a processing
// publication has a live task and a published one is done.
func (s *publicationService) Retry(ctx context.Context, userID, publicationID int64) (*models.Publication, error) {
	pub, err := s.pub.GetByID(ctx, publicationID)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, ErrPublicationNotFound
	}

	owned, err := s.pr.CheckByUserID(ctx, pub.PostID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrPublicationNotFound
	}

	if pub.Status != models.PublicationStatusFailed && pub.Status != models.PublicationStatusPending {
		slog.Info("retry rejected", "publication_id", pub.ID, "status", pub.Status)
		return nil, ErrRetryConflict
	}

	mediaURL, _ := pub.ExtraData["image_url"].(string)
	taskID, err := s.enqueuer.EnqueuePublish(ctx, pub.ID, pub.Network, pub.AdaptedContent, mediaURL)
	if err != nil {
		return nil, fmt.Errorf("error enqueueing retry: %w", err)
	}

	updated, err := s.pub.UpdateStatus(ctx, pub.ID, models.PublicationStatusProcessing, repository.StatusUpdate{
		Metadata: models.ExtraData{"task_id": taskID, "retry": true},
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

const statusCacheTTL = 5 * time.Second

// Status builds the polling summary for a post. Clients poll this endpoint
// while tasks run, so the summary is cached in Redis for a few seconds.
func (s *publicationService) Status(ctx context.Context, userID, postID int64) (*transfer.StatusSummary, error) {
	owned, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrPostNotFound
	}

	cacheKey := fmt.Sprintf("post_status:%d", postID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var summary transfer.StatusSummary
			if err := json.Unmarshal(cached, &summary); err == nil {
				return &summary, nil
			}
		}
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	pubs, err := s.pub.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	summary := &transfer.StatusSummary{
		PostID:            postID,
		PostStatus:        post.Status,
		TotalPublications: len(pubs),
		ByStatus: map[string]int{
			models.PublicationStatusPending:    0,
			models.PublicationStatusProcessing: 0,
			models.PublicationStatusPublished:  0,
			models.PublicationStatusFailed:     0,
		},
	}

	for _, pub := range pubs {
		summary.ByStatus[pub.Status]++
		ps := transfer.PublicationSummary{
			ID:           pub.ID,
			Network:      pub.Network,
			Status:       pub.Status,
			ErrorMessage: pub.ErrorMessage,
			Metadata:     pub.ExtraData,
		}
		if pub.PublishedAt != nil {
			ps.PublishedAt = pub.PublishedAt.Format(time.RFC3339)
		}
		summary.Publications = append(summary.Publications, ps)
	}

	if s.rdb != nil {
		if encoded, err := json.Marshal(summary); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, encoded, statusCacheTTL).Err(); err != nil {
				slog.Info(err.Error())
			}
		}
	}

	return summary, nil
}
