// Package feed derives views over an already-fetched batch of posts:
// search filtering, ranking, viewer-flag materialization and trending
// hashtag extraction. Every function is pure; stored state is never
// touched here.
package feed

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/OpenFeed/feed-service/internal/model"
	"github.com/google/uuid"
)

const (
	DEFAULT_LIMIT     = 10
	MAX_LIMIT         = 50
	TOP_TRENDING_TAGS = 3
)

type SortMode string

const (
	SortNone    SortMode = "none"
	SortLatest  SortMode = "latest"
	SortPopular SortMode = "popular"
	SortOldest  SortMode = "oldest"
)

// ParseSortMode maps a request parameter to a sort mode; anything
// unrecognized means "leave the server order alone".
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortLatest, SortPopular, SortOldest:
		return SortMode(s)
	default:
		return SortNone
	}
}

func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DEFAULT_LIMIT
	}
	if limit > MAX_LIMIT {
		return MAX_LIMIT
	}
	return limit
}

// Pages returns ceil(total/limit).
func Pages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// FilterBySearch keeps posts whose text or author name contains the
// query, case-insensitively. A blank query returns the input unchanged.
func FilterBySearch(posts []*model.Post, query string) []*model.Post {
	query = strings.TrimSpace(query)
	if query == "" {
		return posts
	}
	query = strings.ToLower(query)

	filtered := make([]*model.Post, 0, len(posts))
	for _, post := range posts {
		if strings.Contains(strings.ToLower(post.Text), query) ||
			strings.Contains(strings.ToLower(post.AuthorName), query) {
			filtered = append(filtered, post)
		}
	}
	return filtered
}

// Sort returns the posts ranked by the given mode. SortNone is the
// identity. All modes are stable, so count-tied posts keep their
// relative input order.
func Sort(posts []*model.Post, mode SortMode) []*model.Post {
	if mode == SortNone {
		return posts
	}

	sorted := make([]*model.Post, len(posts))
	copy(sorted, posts)

	switch mode {
	case SortLatest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		})
	case SortPopular:
		sort.SliceStable(sorted, func(i, j int) bool {
			return popularity(sorted[i]) > popularity(sorted[j])
		})
	}
	return sorted
}

func popularity(post *model.Post) int64 {
	return post.LikesCount + post.CommentsCount
}

type TrendingTag struct {
	Tag        string `json:"tag"`
	DisplayTag string `json:"display_tag"`
	Count      int    `json:"count"`
}

var hashtagRegexp = regexp.MustCompile(`#(\w+)`)

// TrendingTags counts #hashtag occurrences across the supplied posts and
// returns the topN by count. The grouping key is the lowercased word
// without the leading '#'. Count ties rank by first encounter scanning
// the posts in their given order.
func TrendingTags(posts []*model.Post, topN int) []TrendingTag {
	if topN <= 0 {
		topN = TOP_TRENDING_TAGS
	}

	counts := make(map[string]int)
	var firstSeen []string
	for _, post := range posts {
		for _, match := range hashtagRegexp.FindAllStringSubmatch(post.Text, -1) {
			tag := strings.ToLower(match[1])
			if _, seen := counts[tag]; !seen {
				firstSeen = append(firstSeen, tag)
			}
			counts[tag]++
		}
	}

	trending := make([]TrendingTag, 0, len(firstSeen))
	for _, tag := range firstSeen {
		trending = append(trending, TrendingTag{
			Tag:        tag,
			DisplayTag: capitalize(tag),
			Count:      counts[tag],
		})
	}

	// Stable sort over the first-seen order keeps the encounter-order
	// tie-break deterministic.
	sort.SliceStable(trending, func(i, j int) bool {
		return trending[i].Count > trending[j].Count
	})

	if len(trending) > topN {
		trending = trending[:topN]
	}
	return trending
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// PostView is a post materialized for one viewer: the aggregate plus the
// viewer's own membership flags.
type PostView struct {
	model.Post
	IsLiked bool `json:"is_liked"`
	IsSaved bool `json:"is_saved"`
}

// Materialize computes per-viewer flags for a batch of posts. The viewer
// is threaded in explicitly; nil means an anonymous reader and leaves
// both flags false.
func Materialize(posts []*model.Post, viewerID *uuid.UUID) []*PostView {
	views := make([]*PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, MaterializeOne(post, viewerID))
	}
	return views
}

func MaterializeOne(post *model.Post, viewerID *uuid.UUID) *PostView {
	view := &PostView{Post: *post}
	if viewerID != nil {
		view.IsLiked = post.HasLiked(*viewerID)
		view.IsSaved = post.HasSaved(*viewerID)
	}
	return view
}
