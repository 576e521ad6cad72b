package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MAX_POST_TEXT_LEN = 1000

type Post struct {
	ID         int64       `json:"id"`
	AuthorID   uuid.UUID   `json:"author_id"`
	AuthorName string      `json:"author_name"`
	Text       string      `json:"text"`
	Image      string      `json:"image"`
	LikedBy    []uuid.UUID `json:"liked_by"`
	SavedBy    []uuid.UUID `json:"saved_by"`
	ViewedBy   []uuid.UUID `json:"viewed_by"`
	Comments   []*Comment  `json:"comments"`

	// Derived from the sets above, never mutated independently.
	LikesCount    int64 `json:"likes_count"`
	CommentsCount int64 `json:"comments_count"`
	Views         int64 `json:"views"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidatePostContent trims both fields and enforces the text-or-image
// invariant and the text length cap.
func ValidatePostContent(text string, image string) (string, string, error) {
	text = strings.TrimSpace(text)
	image = strings.TrimSpace(image)
	if text == "" && image == "" {
		return "", "", ErrTextOrImageRequired
	}
	if utf8.RuneCountInString(text) > MAX_POST_TEXT_LEN {
		return "", "", ErrPostTextTooLong
	}
	return text, image, nil
}

// SyncCounts recomputes every derived counter from its underlying set.
// Called whenever an aggregate is assembled or mutated in memory, so the
// counters can never drift from the sets.
func (p *Post) SyncCounts() {
	p.LikesCount = int64(len(p.LikedBy))
	p.CommentsCount = int64(len(p.Comments))
	p.Views = int64(len(p.ViewedBy))
}

func (p *Post) HasLiked(userID uuid.UUID) bool {
	return containsUser(p.LikedBy, userID)
}

func (p *Post) HasSaved(userID uuid.UUID) bool {
	return containsUser(p.SavedBy, userID)
}

func (p *Post) HasViewed(userID uuid.UUID) bool {
	return containsUser(p.ViewedBy, userID)
}

// ToggleLike flips the user's like membership and returns the new
// membership together with the recomputed like count. This is the
// aggregate-level statement of the toggle cycle; the storage layer's
// conditional delete/insert implements the same transitions row-wise.
func (p *Post) ToggleLike(userID uuid.UUID) (bool, int64) {
	liked := p.toggleMembership(&p.LikedBy, userID)
	return liked, p.LikesCount
}

// ToggleSave is the same two-state cycle over the saved set, independent
// of likes.
func (p *Post) ToggleSave(userID uuid.UUID) (bool, int64) {
	saved := p.toggleMembership(&p.SavedBy, userID)
	return saved, int64(len(p.SavedBy))
}

// RegisterView records a one-way, per-user view transition. Repeated
// calls for the same user are no-ops and never re-increment; the
// storage layer's ON CONFLICT DO NOTHING insert behaves the same way.
func (p *Post) RegisterView(userID uuid.UUID) int64 {
	if !containsUser(p.ViewedBy, userID) {
		p.ViewedBy = append(p.ViewedBy, userID)
		p.UpdatedAt = time.Now()
		p.SyncCounts()
	}
	return p.Views
}

func (p *Post) toggleMembership(set *[]uuid.UUID, userID uuid.UUID) bool {
	for i, id := range *set {
		if id == userID {
			*set = append((*set)[:i], (*set)[i+1:]...)
			p.UpdatedAt = time.Now()
			p.SyncCounts()
			return false
		}
	}
	*set = append(*set, userID)
	p.UpdatedAt = time.Now()
	p.SyncCounts()
	return true
}

func containsUser(set []uuid.UUID, userID uuid.UUID) bool {
	for _, id := range set {
		if id == userID {
			return true
		}
	}
	return false
}
