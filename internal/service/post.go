package service

import (
	"context"
	"time"

	"github.com/OpenFeed/feed-service/internal/dto"
	"github.com/OpenFeed/feed-service/internal/feed"
	"github.com/OpenFeed/feed-service/internal/model"
	"github.com/OpenFeed/feed-service/internal/repository"
	"github.com/OpenFeed/feed-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	POST_CACHE_TTL = time.Hour
	FEED_CACHE_TTL = time.Minute * 10
)

type postService struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newPostService(logger *zap.Logger, repo *repository.Repository) Post {
	return &postService{
		logger: logger,
		repo:   repo,
	}
}

func (s *postService) Create(ctx context.Context, author model.CachedUser, in dto.CreatePostRequest) (*model.Post, error) {
	text, image, err := model.ValidatePostContent(in.Text, in.Image)
	if err != nil {
		return nil, err
	}

	post := model.Post{
		AuthorID:   author.ID,
		AuthorName: author.Username,
		Text:       text,
		Image:      image,
	}

	createdPost, err := s.repo.Postgres.Post.Create(ctx, post)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s) post: %s", author.ID.String(), err.Error())
		return nil, model.ErrInternal
	}

	s.invalidateFeedPages(ctx)

	return createdPost, nil
}

func (s *postService) FindByID(ctx context.Context, id int64, viewerID *uuid.UUID) (*feed.PostView, error) {
	cachedPost, err := redisrepo.Get[model.Post](s.repo.Redis.Default, ctx, redisrepo.PostKey(id))
	if err == nil && cachedPost != nil {
		return feed.MaterializeOne(cachedPost, viewerID), nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get post(%d) from redis: %s", id, err.Error())
	}

	post, err := s.repo.Postgres.Post.FindByID(ctx, id)
	if err != nil {
		if model.IsDomain(err) {
			return nil, err
		}
		s.logger.Sugar().Errorf("failed to find post(%d) from postgres: %s", id, err.Error())
		return nil, model.ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.PostKey(id), post, POST_CACHE_TTL); err != nil {
		s.logger.Sugar().Errorf("failed to set post(%d) in redis: %s", id, err.Error())
	}

	return feed.MaterializeOne(post, viewerID), nil
}

func (s *postService) Feed(ctx context.Context, in dto.FeedRequest, viewerID *uuid.UUID) (*dto.FeedResponse, error) {
	page := feed.NormalizePage(in.Page)
	limit := feed.NormalizeLimit(in.Limit)

	cachedPage, err := redisrepo.Get[dto.CachedFeedPage](s.repo.Redis.Default, ctx, redisrepo.FeedPageKey(page, limit))
	if err != nil || cachedPage == nil {
		if err != nil && err != redis.Nil {
			s.logger.Sugar().Errorf("failed to get feed page(%d:%d) from redis: %s", page, limit, err.Error())
		}

		posts, err := s.repo.Postgres.Post.FindAll(ctx, limit, (page-1)*limit)
		if err != nil {
			s.logger.Sugar().Errorf("failed to find posts from postgres: %s", err.Error())
			return nil, model.ErrInternal
		}

		total, err := s.repo.Postgres.Post.Count(ctx)
		if err != nil {
			s.logger.Sugar().Errorf("failed to count posts from postgres: %s", err.Error())
			return nil, model.ErrInternal
		}

		cachedPage = &dto.CachedFeedPage{Posts: posts, Total: total}

		if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.FeedPageKey(page, limit), cachedPage, FEED_CACHE_TTL); err != nil {
			s.logger.Sugar().Errorf("failed to set feed page(%d:%d) in redis: %s", page, limit, err.Error())
		}
	}

	// Search and sort are views over the fetched page; trending is mined
	// from the loaded working set before filtering, as the feed screen
	// shows it.
	working := feed.FilterBySearch(cachedPage.Posts, in.Query)
	working = feed.Sort(working, in.Sort)

	return &dto.FeedResponse{
		Posts: feed.Materialize(working, viewerID),
		Pagination: dto.Pagination{
			Page:  page,
			Limit: limit,
			Total: cachedPage.Total,
			Pages: feed.Pages(cachedPage.Total, limit),
		},
		Trending: feed.TrendingTags(cachedPage.Posts, feed.TOP_TRENDING_TAGS),
	}, nil
}

func (s *postService) Update(ctx context.Context, postID int64, requesterID uuid.UUID, in dto.EditPostRequest) (*model.Post, error) {
	text, image, err := model.ValidatePostContent(in.Text, in.Image)
	if err != nil {
		return nil, err
	}

	post, err := s.repo.Postgres.Post.Update(ctx, postID, requesterID, text, image)
	if err != nil {
		if model.IsDomain(err) {
			return nil, err
		}
		s.logger.Sugar().Errorf("failed to update post(%d): %s", postID, err.Error())
		return nil, model.ErrInternal
	}

	s.invalidatePostCaches(ctx, postID)

	return post, nil
}

func (s *postService) Delete(ctx context.Context, postID int64, requesterID uuid.UUID) error {
	if err := s.repo.Postgres.Post.Delete(ctx, postID, requesterID); err != nil {
		if model.IsDomain(err) {
			return err
		}
		s.logger.Sugar().Errorf("failed to delete post(%d): %s", postID, err.Error())
		return model.ErrInternal
	}

	s.invalidatePostCaches(ctx, postID)

	return nil
}

func (s *postService) ToggleLike(ctx context.Context, postID int64, userID uuid.UUID) (*dto.LikeResponse, error) {
	isLiked, likesCount, err := s.repo.Postgres.Post.ToggleLike(ctx, postID, userID)
	if err != nil {
		if model.IsDomain(err) {
			return nil, err
		}
		s.logger.Sugar().Errorf("failed to toggle like on post(%d) for user(%s): %s", postID, userID.String(), err.Error())
		return nil, model.ErrInternal
	}

	s.invalidatePostCaches(ctx, postID)

	return &dto.LikeResponse{
		IsLiked:    isLiked,
		LikesCount: likesCount,
	}, nil
}

func (s *postService) ToggleSave(ctx context.Context, postID int64, userID uuid.UUID) (*dto.SaveResponse, error) {
	isSaved, savedCount, err := s.repo.Postgres.Post.ToggleSave(ctx, postID, userID)
	if err != nil {
		if model.IsDomain(err) {
			return nil, err
		}
		s.logger.Sugar().Errorf("failed to toggle save on post(%d) for user(%s): %s", postID, userID.String(), err.Error())
		return nil, model.ErrInternal
	}

	s.invalidatePostCaches(ctx, postID)

	return &dto.SaveResponse{
		IsSaved:    isSaved,
		SavedCount: savedCount,
	}, nil
}

func (s *postService) RegisterView(ctx context.Context, postID int64, userID uuid.UUID) (*dto.ViewResponse, error) {
	views, err := s.repo.Postgres.Post.RegisterView(ctx, postID, userID)
	if err != nil {
		if model.IsDomain(err) {
			return nil, err
		}
		s.logger.Sugar().Errorf("failed to register view on post(%d) for user(%s): %s", postID, userID.String(), err.Error())
		return nil, model.ErrInternal
	}

	s.invalidatePostCaches(ctx, postID)

	return &dto.ViewResponse{
		Views: views,
	}, nil
}

func (s *postService) invalidatePostCaches(ctx context.Context, postID int64) {
	invalidatePostCaches(ctx, s.logger, s.repo, postID)
}

func (s *postService) invalidateFeedPages(ctx context.Context) {
	invalidateFeedPages(ctx, s.logger, s.repo)
}

// Cache invalidation failures are logged, never surfaced: the cached
// copy expires on its TTL anyway.
func invalidatePostCaches(ctx context.Context, logger *zap.Logger, repo *repository.Repository, postID int64) {
	if err := repo.Redis.Default.Del(ctx, redisrepo.PostKey(postID)).Err(); err != nil {
		logger.Sugar().Errorf("failed to delete post(%d) from redis: %s", postID, err.Error())
	}
	invalidateFeedPages(ctx, logger, repo)
}

func invalidateFeedPages(ctx context.Context, logger *zap.Logger, repo *repository.Repository) {
	keys, err := repo.Redis.Default.Keys(ctx, redisrepo.FEED_PAGE_PATTERN).Result()
	if err != nil {
		logger.Sugar().Errorf("failed to list feed page keys in redis: %s", err.Error())
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := repo.Redis.Default.Del(ctx, keys...).Err(); err != nil {
		logger.Sugar().Errorf("failed to delete feed pages from redis: %s", err.Error())
	}
}
