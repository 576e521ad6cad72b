package model

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MAX_COMMENT_TEXT_LEN = 500

// Comment is owned exclusively by its parent Post: its id is meaningful
// only together with PostID.
type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"post_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidateCommentText trims the text and enforces non-empty and the
// length cap.
func ValidateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrCommentTextRequired
	}
	if utf8.RuneCountInString(text) > MAX_COMMENT_TEXT_LEN {
		return "", ErrCommentTextTooLong
	}
	return text, nil
}
