package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/repository"
	"github.com/Alexis-Lijeron/redes/internal/transfer"
)

type fakePostRepo struct {
	posts  map[int64]*models.Post
	nextID int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.Post), nextID: 1}
}

func (f *fakePostRepo) addPost(userID int64, title, content string) *models.Post {
	post := &models.Post{
		ID:      f.nextID,
		UserID:  userID,
		Title:   title,
		Content: content,
		Status:  models.PostStatusDraft,
	}
	f.nextID++
	f.posts[post.ID] = post
	return post
}

func (f *fakePostRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	created := f.addPost(post.UserID, post.Title, post.Content)
	return created.ID, nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.posts[id], nil
}

func (f *fakePostRepo) GetByUserID(ctx context.Context, userID int64, filter repository.PostFilter) ([]*models.Post, error) {
	var out []*models.Post
	for _, post := range f.posts {
		if post.UserID != userID {
			continue
		}
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		out = append(out, post)
	}
	return out, nil
}

func (f *fakePostRepo) UpdateStatus(ctx context.Context, status string, postID int64) error {
	post, ok := f.posts[postID]
	if !ok {
		return errors.New("post not found")
	}
	post.Status = status
	return nil
}

func (f *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	post, ok := f.posts[postID]
	return ok && post.UserID == userID, nil
}

func (f *fakePostRepo) Remove(ctx context.Context, id int64) error {
	delete(f.posts, id)
	return nil
}

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

type fakeSettingsRepo struct {
	settings map[int64]*models.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[int64]*models.Settings)}
}

func (f *fakeSettingsRepo) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	s, ok := f.settings[userID]
	return s, ok, nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, s *models.Settings) error {
	f.settings[s.UserID] = s
	return nil
}

// fakeAdapter echoes a deterministic adaptation, failing for networks
// listed in failFor.
type fakeAdapter struct {
	failFor map[models.SocialNetwork]bool
	calls   []models.SocialNetwork
}

func (f *fakeAdapter) AdaptForNetwork(ctx context.Context, title, content string, network models.SocialNetwork) (*transfer.Adaptation, error) {
	f.calls = append(f.calls, network)
	if f.failFor[network] {
		return nil, errors.New("model unavailable")
	}
	text := fmt.Sprintf("[%s] %s", network, content)
	return &transfer.Adaptation{
		Text:           text,
		Hashtags:       []string{"#test"},
		CharacterCount: len(text),
		Tone:           "casual",
	}, nil
}

type enqueueCall struct {
	publicationID int64
	network       models.SocialNetwork
	content       string
	mediaURL      string
}

type fakeEnqueuer struct {
	calls     []enqueueCall
	failFor   map[int64]error
	onEnqueue func(publicationID int64)
}

func newFakeEnqueuer() *fakeEnqueuer {
	return &fakeEnqueuer{failFor: make(map[int64]error)}
}

func (f *fakeEnqueuer) EnqueuePublish(ctx context.Context, publicationID int64, network models.SocialNetwork, content, mediaURL string) (string, error) {
	if err := f.failFor[publicationID]; err != nil {
		return "", err
	}
	if f.onEnqueue != nil {
		f.onEnqueue(publicationID)
	}
	f.calls = append(f.calls, enqueueCall{
		publicationID: publicationID,
		network:       network,
		content:       content,
		mediaURL:      mediaURL,
	})
	return fmt.Sprintf("task-%d", publicationID), nil
}
