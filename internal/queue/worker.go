package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/publisher"
	"github.com/Alexis-Lijeron/redes/internal/repository"
	"github.com/Alexis-Lijeron/redes/internal/service"
)

// HandlePublishTask delivers one publication to its network. The publication
// is moved to processing before the network call so a crashed worker leaves a
// visible in-flight record, and to a terminal status afterwards. The parent
// post's status is recomputed after every terminal transition.
//
// Returning an error hands the task back to asynq for a retry, except when
// the error wraps asynq.SkipRetry: validation failures won't pass on a second
// attempt, so they fail the publication immediately.
func (q *Queue) HandlePublishTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("error unmarshaling publish payload: %v: %w", err, asynq.SkipRetry)
	}

	pub, err := q.pub.GetByID(ctx, payload.PublicationID)
	if err != nil {
		return err
	}
	if pub == nil {
		return fmt.Errorf("publication %d not found: %w", payload.PublicationID, asynq.SkipRetry)
	}

	// Duplicate delivery after a success, nothing to redo.
	if pub.Status == models.PublicationStatusPublished {
		return nil
	}

	if _, err := q.pub.UpdateStatus(ctx, pub.ID, models.PublicationStatusProcessing, repository.StatusUpdate{}); err != nil {
		return err
	}

	p, ok := q.reg.Get(payload.Network)
	if !ok {
		q.markFailed(ctx, pub.ID, pub.PostID, fmt.Sprintf("unsupported network: %s", payload.Network))
		return fmt.Errorf("unsupported network %q: %w", payload.Network, asynq.SkipRetry)
	}

	result, err := p.Publish(ctx, payload.Content, payload.MediaURL)
	if err != nil {
		slog.Error("publish attempt failed",
			"publication_id", pub.ID,
			"network", payload.Network,
			"error", err)
		q.markFailed(ctx, pub.ID, pub.PostID, err.Error())
		if publisher.IsValidation(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	metadata := models.ExtraData{}
	for k, v := range result.Raw {
		metadata[k] = v
	}
	if result.ExternalID != "" {
		metadata["external_id"] = result.ExternalID
	}

	if _, err := q.pub.UpdateStatus(ctx, pub.ID, models.PublicationStatusPublished, repository.StatusUpdate{
		Metadata: metadata,
	}); err != nil {
		return err
	}

	slog.Info("publication delivered",
		"publication_id", pub.ID,
		"network", payload.Network,
		"external_id", result.ExternalID)

	q.refreshPostStatus(ctx, pub.PostID)
	return nil
}

func (q *Queue) markFailed(ctx context.Context, publicationID, postID int64, reason string) {
	if _, err := q.pub.UpdateStatus(ctx, publicationID, models.PublicationStatusFailed, repository.StatusUpdate{
		ErrorMessage: reason,
	}); err != nil {
		slog.Error("error marking publication failed", "publication_id", publicationID, "error", err)
		return
	}
	q.refreshPostStatus(ctx, postID)
}

// refreshPostStatus recomputes the post's aggregate status from the full
// publication set. Failures here are logged, not returned: the publication
// outcome is already persisted and a retry would re-run the network call.
func (q *Queue) refreshPostStatus(ctx context.Context, postID int64) {
	pubs, err := q.pub.ListByPostID(ctx, postID)
	if err != nil {
		slog.Error("error listing publications for status refresh", "post_id", postID, "error", err)
		return
	}

	status, ok := service.ResolvePostStatus(pubs)
	if !ok {
		return
	}

	if err := q.pr.UpdateStatus(ctx, status, postID); err != nil {
		slog.Error("error updating post status", "post_id", postID, "error", err)
	}
}
