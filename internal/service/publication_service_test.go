package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/repository"
	"github.com/Alexis-Lijeron/redes/internal/transfer"
)

func TestPublishFansOutPendingOnly(t *testing.T) {
	postRepo := newFakePostRepo()
	pubRepo := newFakePubRepo()
	enqueuer := newFakeEnqueuer()
	svc := NewPublicationService(postRepo, pubRepo, enqueuer, nil)

	post := postRepo.addPost(7, "Launch", "We are live")
	fb, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkFacebook, "fb text")
	li, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkLinkedin, "li text")
	done, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkWhatsapp, "wa text")
	_, err := pubRepo.UpdateStatus(context.Background(), done.ID, models.PublicationStatusPublished, repository.StatusUpdate{})
	require.NoError(t, err)

	result, err := svc.Publish(context.Background(), 7, &transfer.PublishRequest{
		PostID:   post.ID,
		ImageURL: "https://cdn.example.com/pic.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalPublications)
	require.Len(t, result.Results, 2)
	require.Len(t, enqueuer.calls, 2)

	for _, outcome := range result.Results {
		assert.Equal(t, "enqueued", outcome.Status)
		assert.NotEmpty(t, outcome.TaskID)
	}

	assert.Equal(t, models.PublicationStatusProcessing, pubRepo.pubs[fb.ID].Status)
	assert.Equal(t, models.PublicationStatusProcessing, pubRepo.pubs[li.ID].Status)
	assert.Equal(t, "https://cdn.example.com/pic.jpg", pubRepo.pubs[fb.ID].ExtraData["image_url"])
	assert.Equal(t, models.PublicationStatusPublished, pubRepo.pubs[done.ID].Status)

	for _, call := range enqueuer.calls {
		assert.Equal(t, "https://cdn.example.com/pic.jpg", call.mediaURL)
	}
}

func TestPublishEnqueueFailureMarksFailed(t *testing.T) {
	postRepo := newFakePostRepo()
	pubRepo := newFakePubRepo()
	enqueuer := newFakeEnqueuer()
	svc := NewPublicationService(postRepo, pubRepo, enqueuer, nil)

	post := postRepo.addPost(7, "Launch", "We are live")
	fb, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkFacebook, "fb text")
	li, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkLinkedin, "li text")
	enqueuer.failFor[fb.ID] = errors.New("redis down")

	result, err := svc.Publish(context.Background(), 7, &transfer.PublishRequest{PostID: post.ID})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	// One failed enqueue never blocks the rest of the fan-out.
	assert.Equal(t, models.PublicationStatusFailed, pubRepo.pubs[fb.ID].Status)
	assert.Equal(t, "redis down", pubRepo.pubs[fb.ID].ErrorMessage)
	assert.Equal(t, models.PublicationStatusProcessing, pubRepo.pubs[li.ID].Status)
}

func TestPublishKeepsFastWorkerResult(t *testing.T) {
	postRepo := newFakePostRepo()
	pubRepo := newFakePubRepo()
	enqueuer := newFakeEnqueuer()
	svc := NewPublicationService(postRepo, pubRepo, enqueuer, nil)

	post := postRepo.addPost(7, "Launch", "We are live")
	fb, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkFacebook, "fb text")

	// The worker can finish between the enqueue and the processing write;
	// the published row must not be demoted.
	enqueuer.onEnqueue = func(publicationID int64) {
		_, err := pubRepo.UpdateStatus(context.Background(), publicationID, models.PublicationStatusPublished, repository.StatusUpdate{
			Metadata: models.ExtraData{"external_id": "fb-1"},
		})
		require.NoError(t, err)
	}

	_, err := svc.Publish(context.Background(), 7, &transfer.PublishRequest{PostID: post.ID})
	require.NoError(t, err)

	assert.Equal(t, models.PublicationStatusPublished, pubRepo.pubs[fb.ID].Status)
	assert.NotNil(t, pubRepo.pubs[fb.ID].PublishedAt)
}

func TestPublishNoPublications(t *testing.T) {
	postRepo := newFakePostRepo()
	svc := NewPublicationService(postRepo, newFakePubRepo(), newFakeEnqueuer(), nil)

	post := postRepo.addPost(7, "Launch", "We are live")

	_, err := svc.Publish(context.Background(), 7, &transfer.PublishRequest{PostID: post.ID})
	assert.ErrorIs(t, err, ErrNoPublications)
}

func TestPublishPostNotOwned(t *testing.T) {
	postRepo := newFakePostRepo()
	svc := NewPublicationService(postRepo, newFakePubRepo(), newFakeEnqueuer(), nil)

	post := postRepo.addPost(7, "Launch", "We are live")

	_, err := svc.Publish(context.Background(), 99, &transfer.PublishRequest{PostID: post.ID})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRetryPreconditions(t *testing.T) {
	cases := []struct {
		status  string
		wantErr error
	}{
		{models.PublicationStatusFailed, nil},
		{models.PublicationStatusPending, nil},
		{models.PublicationStatusProcessing, ErrRetryConflict},
		{models.PublicationStatusPublished, ErrRetryConflict},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			postRepo := newFakePostRepo()
			pubRepo := newFakePubRepo()
			enqueuer := newFakeEnqueuer()
			svc := NewPublicationService(postRepo, pubRepo, enqueuer, nil)

			post := postRepo.addPost(7, "Launch", "We are live")
			pub, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkFacebook, "fb text")
			if tc.status != models.PublicationStatusPending {
				_, err := pubRepo.UpdateStatus(context.Background(), pub.ID, tc.status, repository.StatusUpdate{})
				require.NoError(t, err)
			}

			updated, err := svc.Retry(context.Background(), 7, pub.ID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, enqueuer.calls)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, models.PublicationStatusProcessing, updated.Status)
			assert.Equal(t, true, updated.ExtraData["retry"])
			require.Len(t, enqueuer.calls, 1)
		})
	}
}

func TestRetryNotFound(t *testing.T) {
	svc := NewPublicationService(newFakePostRepo(), newFakePubRepo(), newFakeEnqueuer(), nil)

	_, err := svc.Retry(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrPublicationNotFound)
}

func TestRetryOtherUsersPublication(t *testing.T) {
	postRepo := newFakePostRepo()
	pubRepo := newFakePubRepo()
	svc := NewPublicationService(postRepo, pubRepo, newFakeEnqueuer(), nil)

	post := postRepo.addPost(7, "Launch", "We are live")
	pub, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkFacebook, "fb text")

	_, err := svc.Retry(context.Background(), 99, pub.ID)
	assert.ErrorIs(t, err, ErrPublicationNotFound)
}

func TestRetryReusesStoredImageURL(t *testing.T) {
	postRepo := newFakePostRepo()
	pubRepo := newFakePubRepo()
	enqueuer := newFakeEnqueuer()
	svc := NewPublicationService(postRepo, pubRepo, enqueuer, nil)

	post := postRepo.addPost(7, "Launch", "We are live")
	pub, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkInstagram, "ig caption")
	_, err := pubRepo.UpdateStatus(context.Background(), pub.ID, models.PublicationStatusFailed, repository.StatusUpdate{
		ErrorMessage: "timeout",
		Metadata:     models.ExtraData{"image_url": "https://cdn.example.com/pic.jpg"},
	})
	require.NoError(t, err)

	_, err = svc.Retry(context.Background(), 7, pub.ID)
	require.NoError(t, err)
	require.Len(t, enqueuer.calls, 1)
	assert.Equal(t, "https://cdn.example.com/pic.jpg", enqueuer.calls[0].mediaURL)
}

func TestStatusSummary(t *testing.T) {
	postRepo := newFakePostRepo()
	pubRepo := newFakePubRepo()
	svc := NewPublicationService(postRepo, pubRepo, newFakeEnqueuer(), nil)

	post := postRepo.addPost(7, "Launch", "We are live")
	post.Status = models.PostStatusProcessing

	fb, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkFacebook, "fb text")
	_, err := pubRepo.UpdateStatus(context.Background(), fb.ID, models.PublicationStatusPublished, repository.StatusUpdate{})
	require.NoError(t, err)
	li, _ := pubRepo.Create(context.Background(), post.ID, models.NetworkLinkedin, "li text")
	_, err = pubRepo.UpdateStatus(context.Background(), li.ID, models.PublicationStatusFailed, repository.StatusUpdate{ErrorMessage: "expired token"})
	require.NoError(t, err)
	_, _ = pubRepo.Create(context.Background(), post.ID, models.NetworkTiktok, "tt text")

	summary, err := svc.Status(context.Background(), 7, post.ID)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusProcessing, summary.PostStatus)
	assert.Equal(t, 3, summary.TotalPublications)
	assert.Equal(t, 1, summary.ByStatus[models.PublicationStatusPublished])
	assert.Equal(t, 1, summary.ByStatus[models.PublicationStatusFailed])
	assert.Equal(t, 1, summary.ByStatus[models.PublicationStatusPending])
	assert.Equal(t, 0, summary.ByStatus[models.PublicationStatusProcessing])
	require.Len(t, summary.Publications, 3)

	for _, ps := range summary.Publications {
		if ps.Network == models.NetworkFacebook {
			assert.NotEmpty(t, ps.PublishedAt)
		}
		if ps.Network == models.NetworkLinkedin {
			assert.Equal(t, "expired token", ps.ErrorMessage)
		}
	}
}

func TestStatusPostNotOwned(t *testing.T) {
	postRepo := newFakePostRepo()
	svc := NewPublicationService(postRepo, newFakePubRepo(), newFakeEnqueuer(), nil)

	post := postRepo.addPost(7, "Launch", "We are live")

	_, err := svc.Status(context.Background(), 99, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}
