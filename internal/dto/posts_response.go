package dto

import (
	"github.com/OpenFeed/feed-service/internal/feed"
	"github.com/OpenFeed/feed-service/internal/model"
)

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type FeedResponse struct {
	Posts      []*feed.PostView   `json:"posts"`
	Pagination Pagination         `json:"pagination"`
	Trending   []feed.TrendingTag `json:"trending"`
}

// CachedFeedPage is the raw server-ordered page stored in redis; viewer
// flags and search/sort are applied per request after the cache read.
type CachedFeedPage struct {
	Posts []*model.Post `json:"posts"`
	Total int64         `json:"total"`
}

type LikeResponse struct {
	IsLiked    bool  `json:"is_liked"`
	LikesCount int64 `json:"likes_count"`
}

type SaveResponse struct {
	IsSaved    bool  `json:"is_saved"`
	SavedCount int64 `json:"saved_count"`
}

type ViewResponse struct {
	Views int64 `json:"views"`
}
