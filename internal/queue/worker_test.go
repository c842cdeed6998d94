package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/publisher"
	"github.com/Alexis-Lijeron/redes/internal/repository"
)

type fakePubRepo struct {
	pubs   map[int64]*models.Publication
	nextID int64
}

func newFakePubRepo() *fakePubRepo {
	return &fakePubRepo{pubs: make(map[int64]*models.Publication), nextID: 1}
}

func (f *fakePubRepo) Create(ctx context.Context, postID int64, network models.SocialNetwork, adaptedContent string) (*models.Publication, error) {
	pub := &models.Publication{
		ID:             f.nextID,
		PostID:         postID,
		Network:        network,
		AdaptedContent: adaptedContent,
		Status:         models.PublicationStatusPending,
		ExtraData:      models.ExtraData{},
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	f.nextID++
	f.pubs[pub.ID] = pub
	return pub, nil
}

func (f *fakePubRepo) GetByID(ctx context.Context, id int64) (*models.Publication, error) {
	return f.pubs[id], nil
}

func (f *fakePubRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.Publication, error) {
	var out []*models.Publication
	for _, pub := range f.pubs {
		if pub.PostID == postID {
			out = append(out, pub)
		}
	}
	return out, nil
}

func (f *fakePubRepo) UpdateStatus(ctx context.Context, id int64, status string, upd repository.StatusUpdate) (*models.Publication, error) {
	pub, ok := f.pubs[id]
	if !ok {
		return nil, nil
	}
	if pub.Status == models.PublicationStatusPublished && status == models.PublicationStatusProcessing {
		return pub, nil
	}
	if status == models.PublicationStatusPublished && pub.Status != models.PublicationStatusPublished && pub.PublishedAt == nil {
		now := time.Now()
		pub.PublishedAt = &now
	}
	pub.Status = status
	if upd.ErrorMessage != "" {
		pub.ErrorMessage = upd.ErrorMessage
	}
	pub.ExtraData = pub.ExtraData.Merge(upd.Metadata)
	pub.UpdatedAt = time.Now()
	return pub, nil
}

func (f *fakePubRepo) ListStuckProcessing(ctx context.Context, olderThan time.Time) ([]*models.Publication, error) {
	return nil, nil
}

type fakePostRepo struct {
	statuses map[int64]string
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{statuses: make(map[int64]string)}
}

func (f *fakePostRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	status, ok := f.statuses[id]
	if !ok {
		return nil, nil
	}
	return &models.Post{ID: id, Status: status}, nil
}

func (f *fakePostRepo) GetByUserID(ctx context.Context, userID int64, filter repository.PostFilter) ([]*models.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) UpdateStatus(ctx context.Context, status string, postID int64) error {
	f.statuses[postID] = status
	return nil
}

func (f *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	_, ok := f.statuses[postID]
	return ok, nil
}

func (f *fakePostRepo) Remove(ctx context.Context, id int64) error {
	delete(f.statuses, id)
	return nil
}

type fakePublisher struct {
	publish func(ctx context.Context, content, media string) (*publisher.Result, error)
}

func (f *fakePublisher) Publish(ctx context.Context, content, media string) (*publisher.Result, error) {
	return f.publish(ctx, content, media)
}

func publishTask(t *testing.T, payload PublishPayload) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(TaskTypePublish, b)
}

func staticRegistry(network models.SocialNetwork, p publisher.Publisher) publisher.Registry {
	return publisher.Registry{network: p}
}

func TestHandlePublishTaskSuccess(t *testing.T) {
	pubRepo := newFakePubRepo()
	postRepo := newFakePostRepo()
	postRepo.statuses[1] = models.PostStatusProcessing

	pub, err := pubRepo.Create(context.Background(), 1, models.NetworkFacebook, "adapted text")
	require.NoError(t, err)

	reg := staticRegistry(models.NetworkFacebook, &fakePublisher{
		publish: func(ctx context.Context, content, media string) (*publisher.Result, error) {
			assert.Equal(t, "adapted text", content)
			return &publisher.Result{
				ExternalID: "fb_1",
				Raw:        map[string]any{"id": "fb_1"},
			}, nil
		},
	})

	q := NewQueue(postRepo, pubRepo, reg)
	err = q.HandlePublishTask(context.Background(), publishTask(t, PublishPayload{
		PublicationID: pub.ID,
		Network:       models.NetworkFacebook,
		Content:       "adapted text",
	}))
	require.NoError(t, err)

	got := pubRepo.pubs[pub.ID]
	assert.Equal(t, models.PublicationStatusPublished, got.Status)
	assert.NotNil(t, got.PublishedAt)
	assert.Equal(t, "fb_1", got.ExtraData["external_id"])
	assert.Equal(t, models.PostStatusPublished, postRepo.statuses[1])
}

func TestHandlePublishTaskValidationFailure(t *testing.T) {
	pubRepo := newFakePubRepo()
	postRepo := newFakePostRepo()
	postRepo.statuses[1] = models.PostStatusProcessing

	pub, err := pubRepo.Create(context.Background(), 1, models.NetworkInstagram, "caption")
	require.NoError(t, err)

	reg := staticRegistry(models.NetworkInstagram, &fakePublisher{
		publish: func(ctx context.Context, content, media string) (*publisher.Result, error) {
			return nil, &publisher.ValidationError{Network: "instagram", Reason: "instagram requires an image"}
		},
	})

	q := NewQueue(postRepo, pubRepo, reg)
	err = q.HandlePublishTask(context.Background(), publishTask(t, PublishPayload{
		PublicationID: pub.ID,
		Network:       models.NetworkInstagram,
		Content:       "caption",
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	got := pubRepo.pubs[pub.ID]
	assert.Equal(t, models.PublicationStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "requires an image")
	assert.Equal(t, models.PostStatusFailed, postRepo.statuses[1])
}

func TestHandlePublishTaskRemoteFailureIsRetryable(t *testing.T) {
	pubRepo := newFakePubRepo()
	postRepo := newFakePostRepo()
	postRepo.statuses[1] = models.PostStatusProcessing

	pub, err := pubRepo.Create(context.Background(), 1, models.NetworkFacebook, "text")
	require.NoError(t, err)

	reg := staticRegistry(models.NetworkFacebook, &fakePublisher{
		publish: func(ctx context.Context, content, media string) (*publisher.Result, error) {
			return nil, &publisher.RemoteError{Network: "facebook", StatusCode: 500, Body: "server error"}
		},
	})

	q := NewQueue(postRepo, pubRepo, reg)
	err = q.HandlePublishTask(context.Background(), publishTask(t, PublishPayload{
		PublicationID: pub.ID,
		Network:       models.NetworkFacebook,
		Content:       "text",
	}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Equal(t, models.PublicationStatusFailed, pubRepo.pubs[pub.ID].Status)
}

func TestHandlePublishTaskMarksProcessingBeforePublishing(t *testing.T) {
	pubRepo := newFakePubRepo()
	postRepo := newFakePostRepo()
	postRepo.statuses[1] = models.PostStatusProcessing

	pub, err := pubRepo.Create(context.Background(), 1, models.NetworkFacebook, "text")
	require.NoError(t, err)

	var statusDuringPublish string
	reg := staticRegistry(models.NetworkFacebook, &fakePublisher{
		publish: func(ctx context.Context, content, media string) (*publisher.Result, error) {
			statusDuringPublish = pubRepo.pubs[pub.ID].Status
			return &publisher.Result{ExternalID: "x", Raw: map[string]any{}}, nil
		},
	})

	q := NewQueue(postRepo, pubRepo, reg)
	require.NoError(t, q.HandlePublishTask(context.Background(), publishTask(t, PublishPayload{
		PublicationID: pub.ID,
		Network:       models.NetworkFacebook,
		Content:       "text",
	})))
	assert.Equal(t, models.PublicationStatusProcessing, statusDuringPublish)
}

func TestHandlePublishTaskAlreadyPublished(t *testing.T) {
	pubRepo := newFakePubRepo()
	postRepo := newFakePostRepo()
	postRepo.statuses[1] = models.PostStatusPublished

	pub, err := pubRepo.Create(context.Background(), 1, models.NetworkFacebook, "text")
	require.NoError(t, err)
	_, err = pubRepo.UpdateStatus(context.Background(), pub.ID, models.PublicationStatusPublished, repository.StatusUpdate{})
	require.NoError(t, err)

	called := false
	reg := staticRegistry(models.NetworkFacebook, &fakePublisher{
		publish: func(ctx context.Context, content, media string) (*publisher.Result, error) {
			called = true
			return nil, nil
		},
	})

	q := NewQueue(postRepo, pubRepo, reg)
	require.NoError(t, q.HandlePublishTask(context.Background(), publishTask(t, PublishPayload{
		PublicationID: pub.ID,
		Network:       models.NetworkFacebook,
		Content:       "text",
	})))
	assert.False(t, called)
}

func TestHandlePublishTaskUnknownPublication(t *testing.T) {
	q := NewQueue(newFakePostRepo(), newFakePubRepo(), publisher.Registry{})

	err := q.HandlePublishTask(context.Background(), publishTask(t, PublishPayload{
		PublicationID: 42,
		Network:       models.NetworkFacebook,
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandlePublishTaskMixedOutcomes(t *testing.T) {
	pubRepo := newFakePubRepo()
	postRepo := newFakePostRepo()
	postRepo.statuses[1] = models.PostStatusProcessing

	fb, err := pubRepo.Create(context.Background(), 1, models.NetworkFacebook, "fb text")
	require.NoError(t, err)
	li, err := pubRepo.Create(context.Background(), 1, models.NetworkLinkedin, "li text")
	require.NoError(t, err)
	ig, err := pubRepo.Create(context.Background(), 1, models.NetworkInstagram, "ig caption")
	require.NoError(t, err)

	reg := publisher.Registry{
		models.NetworkFacebook: &fakePublisher{publish: func(ctx context.Context, content, media string) (*publisher.Result, error) {
			return &publisher.Result{ExternalID: "fb_1", Raw: map[string]any{}}, nil
		}},
		models.NetworkLinkedin: &fakePublisher{publish: func(ctx context.Context, content, media string) (*publisher.Result, error) {
			return nil, &publisher.RemoteError{Network: "linkedin", StatusCode: 401, Body: "expired token"}
		}},
		models.NetworkInstagram: &fakePublisher{publish: func(ctx context.Context, content, media string) (*publisher.Result, error) {
			return &publisher.Result{ExternalID: "ig_1", Raw: map[string]any{}}, nil
		}},
	}
	q := NewQueue(postRepo, pubRepo, reg)

	handle := func(id int64, network models.SocialNetwork, content string) error {
		return q.HandlePublishTask(context.Background(), publishTask(t, PublishPayload{
			PublicationID: id,
			Network:       network,
			Content:       content,
		}))
	}

	// First success: the other two are still pending, post stays processing.
	require.NoError(t, handle(fb.ID, models.NetworkFacebook, "fb text"))
	assert.Equal(t, models.PostStatusProcessing, postRepo.statuses[1])

	// A failure next to a pending publication also keeps it processing.
	require.Error(t, handle(li.ID, models.NetworkLinkedin, "li text"))
	assert.Equal(t, models.PostStatusProcessing, postRepo.statuses[1])

	// Once every publication is terminal, one success wins over failures.
	require.NoError(t, handle(ig.ID, models.NetworkInstagram, "ig caption"))
	assert.Equal(t, models.PostStatusPublished, postRepo.statuses[1])
}
