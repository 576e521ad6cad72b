package model

import "errors"

// ErrInternal hides infrastructure failures from API clients; the real
// cause is logged where it happened.
var ErrInternal = errors.New("internal server error")

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrNotPostAuthor    = errors.New("user is not the author of the post")
	ErrNotCommentAuthor = errors.New("user is not the author of the comment")

	ErrTextOrImageRequired = errors.New("post must have text or an image")
	ErrPostTextTooLong     = errors.New("post text is too long")
	ErrCommentTextRequired = errors.New("comment text is required")
	ErrCommentTextTooLong  = errors.New("comment text is too long")
)

var domainErrors = []error{
	ErrPostNotFound,
	ErrCommentNotFound,
	ErrNotPostAuthor,
	ErrNotCommentAuthor,
	ErrTextOrImageRequired,
	ErrPostTextTooLong,
	ErrCommentTextRequired,
	ErrCommentTextTooLong,
}

// IsDomain reports whether err is one of the errors callers are meant to
// act on, as opposed to an infrastructure failure that must stay opaque.
func IsDomain(err error) bool {
	for _, domainErr := range domainErrors {
		if errors.Is(err, domainErr) {
			return true
		}
	}
	return false
}
