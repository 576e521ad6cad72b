package service

import (
	"context"

	"github.com/OpenFeed/feed-service/internal/dto"
	"github.com/OpenFeed/feed-service/internal/feed"
	"github.com/OpenFeed/feed-service/internal/model"
	"github.com/OpenFeed/feed-service/internal/rabbitmq"
	"github.com/OpenFeed/feed-service/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Post interface {
	Create(ctx context.Context, author model.CachedUser, in dto.CreatePostRequest) (*model.Post, error)
	FindByID(ctx context.Context, id int64, viewerID *uuid.UUID) (*feed.PostView, error)
	Feed(ctx context.Context, in dto.FeedRequest, viewerID *uuid.UUID) (*dto.FeedResponse, error)
	Update(ctx context.Context, postID int64, requesterID uuid.UUID, in dto.EditPostRequest) (*model.Post, error)
	Delete(ctx context.Context, postID int64, requesterID uuid.UUID) error
	ToggleLike(ctx context.Context, postID int64, userID uuid.UUID) (*dto.LikeResponse, error)
	ToggleSave(ctx context.Context, postID int64, userID uuid.UUID) (*dto.SaveResponse, error)
	RegisterView(ctx context.Context, postID int64, userID uuid.UUID) (*dto.ViewResponse, error)
}

type Comment interface {
	Create(ctx context.Context, author model.CachedUser, in dto.CreateCommentRequest) (*model.Comment, error)
	Update(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID, text string) (*model.Comment, error)
	Delete(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID) error
}

type UserCache interface {
	CreateOrGet(ctx context.Context, id uuid.UUID, accessToken string) (*model.CachedUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	ConsumeUpdates(ctx context.Context)
}

type Service struct {
	Post
	Comment
	UserCache
}

func New(logger *zap.Logger, repo *repository.Repository, mq *rabbitmq.MQConn) *Service {
	return &Service{
		Post:      newPostService(logger, repo),
		Comment:   newCommentService(logger, repo),
		UserCache: newUserCacheService(logger, repo, mq),
	}
}

func (s *Service) StartConsumeAll(ctx context.Context) {
	go s.UserCache.ConsumeUpdates(ctx)
}
