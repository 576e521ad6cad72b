package service

import (
	"context"

	"github.com/OpenFeed/feed-service/internal/dto"
	"github.com/OpenFeed/feed-service/internal/model"
	"github.com/OpenFeed/feed-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type commentService struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newCommentService(logger *zap.Logger, repo *repository.Repository) Comment {
	return &commentService{
		logger: logger,
		repo:   repo,
	}
}

func (s *commentService) Create(ctx context.Context, author model.CachedUser, in dto.CreateCommentRequest) (*model.Comment, error) {
	text, err := model.ValidateCommentText(in.Text)
	if err != nil {
		return nil, err
	}

	comment := model.Comment{
		PostID:     in.PostID,
		AuthorID:   author.ID,
		AuthorName: author.Username,
		Text:       text,
	}

	createdComment, err := s.repo.Postgres.Comment.Create(ctx, comment)
	if err != nil {
		if model.IsDomain(err) {
			return nil, err
		}
		s.logger.Sugar().Errorf("failed to create user(%s) comment on post(%d): %s", author.ID.String(), in.PostID, err.Error())
		return nil, model.ErrInternal
	}

	invalidatePostCaches(ctx, s.logger, s.repo, in.PostID)

	return createdComment, nil
}

func (s *commentService) Update(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID, text string) (*model.Comment, error) {
	text, err := model.ValidateCommentText(text)
	if err != nil {
		return nil, err
	}

	comment, err := s.repo.Postgres.Comment.Update(ctx, postID, commentID, requesterID, text)
	if err != nil {
		if model.IsDomain(err) {
			return nil, err
		}
		s.logger.Sugar().Errorf("failed to update comment(%d) on post(%d): %s", commentID, postID, err.Error())
		return nil, model.ErrInternal
	}

	invalidatePostCaches(ctx, s.logger, s.repo, postID)

	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID) error {
	if err := s.repo.Postgres.Comment.Delete(ctx, postID, commentID, requesterID); err != nil {
		if model.IsDomain(err) {
			return err
		}
		s.logger.Sugar().Errorf("failed to delete comment(%d) on post(%d): %s", commentID, postID, err.Error())
		return model.ErrInternal
	}

	invalidatePostCaches(ctx, s.logger, s.repo, postID)

	return nil
}
