package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alexis-Lijeron/redes/internal/models"
	"github.com/Alexis-Lijeron/redes/internal/repository"
	"github.com/Alexis-Lijeron/redes/internal/transfer"
)

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, error)
	List(ctx context.Context, userID int64, filter repository.PostFilter) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*transfer.PostDetails, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	pr  repository.PostRepository
	pub repository.PublicationRepository
}

func NewPostService(pr repository.PostRepository, pub repository.PublicationRepository) PostService {
	return &postService{
		pr:  pr,
		pub: pub,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (*models.Post, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return nil, err
	}
	if pc.Title == "" {
		err := errors.New("title cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}
	if pc.Content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}

	post := &models.Post{
		UserID:  userID,
		Title:   pc.Title,
		Content: pc.Content,
		Status:  models.PostStatusDraft,
	}

	postID, err := s.pr.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	post.ID = postID

	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64, filter repository.PostFilter) ([]*models.Post, error) {
	if filter.Status != "" {
		switch filter.Status {
		case models.PostStatusDraft, models.PostStatusProcessing, models.PostStatusPublished, models.PostStatusFailed:
		default:
			err := fmt.Errorf("invalid post status filter: %q", filter.Status)
			slog.Info(err.Error())
			return nil, err
		}
	}

	posts, err := s.pr.GetByUserID(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*transfer.PostDetails, error) {
	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		return nil, ErrPostNotFound
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

	return &transfer.PostDetails{Post: post, Publications: pubs}, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isValid {
		return ErrPostNotFound
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post: %w", err)
	}

	return nil
}
