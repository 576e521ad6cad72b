package handler

import (
	"errors"
	"net/http"

	"github.com/OpenFeed/feed-service/internal/model"
)

var (
	errNotAuthorized = errors.New("user is not authorized")
	errInvalidPostID = errors.New("invalid post ID")
	errInvalidID     = errors.New("invalid ID")
)

// errorStatus maps the three domain error kinds to their status codes;
// anything else is an opaque infrastructure failure.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrPostNotFound),
		errors.Is(err, model.ErrCommentNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNotPostAuthor),
		errors.Is(err, model.ErrNotCommentAuthor):
		return http.StatusForbidden
	case errors.Is(err, model.ErrTextOrImageRequired),
		errors.Is(err, model.ErrPostTextTooLong),
		errors.Is(err, model.ErrCommentTextRequired),
		errors.Is(err, model.ErrCommentTextTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
