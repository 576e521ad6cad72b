package redisrepo

import "fmt"

const (
	POST_KEY          = "post:%d"        // <postID>
	FEED_PAGE_KEY     = "feed:%d:%d"     // <page>:<limit>
	FEED_PAGE_PATTERN = "feed:*"
	USER_CACHE_KEY    = "user-cache:%s" // <userID>
)

func PostKey(postID int64) string {
	return fmt.Sprintf(POST_KEY, postID)
}

func FeedPageKey(page int, limit int) string {
	return fmt.Sprintf(FEED_PAGE_KEY, page, limit)
}

func UserCacheKey(userID string) string {
	return fmt.Sprintf(USER_CACHE_KEY, userID)
}
