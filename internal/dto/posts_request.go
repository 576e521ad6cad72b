package dto

import "github.com/OpenFeed/feed-service/internal/feed"

type CreatePostRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// EditPostRequest replaces both content fields; at least one must be
// non-empty after trimming.
type EditPostRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

type FeedRequest struct {
	Page  int
	Limit int
	Query string
	Sort  feed.SortMode
}
