package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OpenFeed/feed-service/internal/dto"
	"github.com/OpenFeed/feed-service/internal/feed"
	"github.com/OpenFeed/feed-service/internal/model"
	"github.com/OpenFeed/feed-service/internal/service"
	"github.com/OpenFeed/feed-service/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccessSecret = "test-secret"

type stubPostService struct {
	create       func(ctx context.Context, author model.CachedUser, in dto.CreatePostRequest) (*model.Post, error)
	findByID     func(ctx context.Context, id int64, viewerID *uuid.UUID) (*feed.PostView, error)
	feed         func(ctx context.Context, in dto.FeedRequest, viewerID *uuid.UUID) (*dto.FeedResponse, error)
	update       func(ctx context.Context, postID int64, requesterID uuid.UUID, in dto.EditPostRequest) (*model.Post, error)
	delete       func(ctx context.Context, postID int64, requesterID uuid.UUID) error
	toggleLike   func(ctx context.Context, postID int64, userID uuid.UUID) (*dto.LikeResponse, error)
	toggleSave   func(ctx context.Context, postID int64, userID uuid.UUID) (*dto.SaveResponse, error)
	registerView func(ctx context.Context, postID int64, userID uuid.UUID) (*dto.ViewResponse, error)
}

func (s *stubPostService) Create(ctx context.Context, author model.CachedUser, in dto.CreatePostRequest) (*model.Post, error) {
	return s.create(ctx, author, in)
}

func (s *stubPostService) FindByID(ctx context.Context, id int64, viewerID *uuid.UUID) (*feed.PostView, error) {
	return s.findByID(ctx, id, viewerID)
}

func (s *stubPostService) Feed(ctx context.Context, in dto.FeedRequest, viewerID *uuid.UUID) (*dto.FeedResponse, error) {
	return s.feed(ctx, in, viewerID)
}

func (s *stubPostService) Update(ctx context.Context, postID int64, requesterID uuid.UUID, in dto.EditPostRequest) (*model.Post, error) {
	return s.update(ctx, postID, requesterID, in)
}

func (s *stubPostService) Delete(ctx context.Context, postID int64, requesterID uuid.UUID) error {
	return s.delete(ctx, postID, requesterID)
}

func (s *stubPostService) ToggleLike(ctx context.Context, postID int64, userID uuid.UUID) (*dto.LikeResponse, error) {
	return s.toggleLike(ctx, postID, userID)
}

func (s *stubPostService) ToggleSave(ctx context.Context, postID int64, userID uuid.UUID) (*dto.SaveResponse, error) {
	return s.toggleSave(ctx, postID, userID)
}

func (s *stubPostService) RegisterView(ctx context.Context, postID int64, userID uuid.UUID) (*dto.ViewResponse, error) {
	return s.registerView(ctx, postID, userID)
}

type stubCommentService struct {
	create func(ctx context.Context, author model.CachedUser, in dto.CreateCommentRequest) (*model.Comment, error)
	update func(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID, text string) (*model.Comment, error)
	delete func(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID) error
}

func (s *stubCommentService) Create(ctx context.Context, author model.CachedUser, in dto.CreateCommentRequest) (*model.Comment, error) {
	return s.create(ctx, author, in)
}

func (s *stubCommentService) Update(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID, text string) (*model.Comment, error) {
	return s.update(ctx, postID, commentID, requesterID, text)
}

func (s *stubCommentService) Delete(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID) error {
	return s.delete(ctx, postID, commentID, requesterID)
}

// stubUserCache resolves every token to a fixed user so middleware can be
// exercised without the user service.
type stubUserCache struct {
	username string
}

func (s *stubUserCache) CreateOrGet(ctx context.Context, id uuid.UUID, accessToken string) (*model.CachedUser, error) {
	return &model.CachedUser{ID: id, Username: s.username}, nil
}

func (s *stubUserCache) FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error) {
	return &model.CachedUser{ID: id, Username: s.username}, nil
}

func (s *stubUserCache) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (s *stubUserCache) ConsumeUpdates(ctx context.Context) {}

func newTestRouter(t *testing.T, posts service.Post, comments service.Comment) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("ACCESS_SECRET", testAccessSecret)
	viper.Set("client.origin", "http://localhost:3000")

	services := &service.Service{
		Post:      posts,
		Comment:   comments,
		UserCache: &stubUserCache{username: "alice"},
	}
	return New(services).InitRoutes()
}

func authHeader(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := utils.GenerateJWT(jwt.MapClaims{"id": userID.String()}, []byte(testAccessSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(r *gin.Engine, method string, target string, body any, authorization string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &stubPostService{}, &stubCommentService{})

	w := doRequest(r, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestPostsCreate(t *testing.T) {
	userID := uuid.New()
	posts := &stubPostService{
		create: func(ctx context.Context, author model.CachedUser, in dto.CreatePostRequest) (*model.Post, error) {
			assert.Equal(t, userID, author.ID)
			assert.Equal(t, "alice", author.Username)
			return &model.Post{
				ID:         7,
				AuthorID:   author.ID,
				AuthorName: author.Username,
				Text:       in.Text,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}, nil
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodPost, "/api/v1/posts", dto.CreatePostRequest{Text: "hello"}, authHeader(t, userID))

	assert.Equal(t, http.StatusCreated, w.Code)
	var created model.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "hello", created.Text)
	assert.Equal(t, "alice", created.AuthorName)
}

func TestPostsCreateValidationError(t *testing.T) {
	posts := &stubPostService{
		create: func(ctx context.Context, author model.CachedUser, in dto.CreatePostRequest) (*model.Post, error) {
			return nil, model.ErrTextOrImageRequired
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodPost, "/api/v1/posts", dto.CreatePostRequest{}, authHeader(t, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostsCreateUnauthorized(t *testing.T) {
	r := newTestRouter(t, &stubPostService{}, &stubCommentService{})

	t.Run("no header", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/posts", dto.CreatePostRequest{Text: "x"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/posts", dto.CreatePostRequest{Text: "x"}, "Bearer not-a-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPostsFeed(t *testing.T) {
	posts := &stubPostService{
		feed: func(ctx context.Context, in dto.FeedRequest, viewerID *uuid.UUID) (*dto.FeedResponse, error) {
			assert.Equal(t, 2, in.Page)
			assert.Equal(t, 10, in.Limit)
			assert.Equal(t, "go", in.Query)
			assert.Equal(t, feed.SortPopular, in.Sort)
			assert.Nil(t, viewerID)
			return &dto.FeedResponse{
				Posts:      []*feed.PostView{},
				Pagination: dto.Pagination{Page: 2, Limit: 10, Total: 25, Pages: 3},
				Trending:   []feed.TrendingTag{{Tag: "go", DisplayTag: "Go", Count: 2}},
			}, nil
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodGet, "/api/v1/posts?page=2&limit=10&q=go&sort=popular", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	var result dto.FeedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(3), result.Pagination.Pages)
	require.Len(t, result.Trending, 1)
	assert.Equal(t, "Go", result.Trending[0].DisplayTag)
}

func TestPostsFeedPassesViewer(t *testing.T) {
	userID := uuid.New()
	posts := &stubPostService{
		feed: func(ctx context.Context, in dto.FeedRequest, viewerID *uuid.UUID) (*dto.FeedResponse, error) {
			require.NotNil(t, viewerID)
			assert.Equal(t, userID, *viewerID)
			return &dto.FeedResponse{}, nil
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodGet, "/api/v1/posts", nil, authHeader(t, userID))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostsGetByID(t *testing.T) {
	posts := &stubPostService{
		findByID: func(ctx context.Context, id int64, viewerID *uuid.UUID) (*feed.PostView, error) {
			assert.Equal(t, int64(42), id)
			view := &feed.PostView{IsLiked: true}
			view.ID = id
			view.Text = "found"
			return view, nil
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodGet, "/api/v1/posts/42", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	var view feed.PostView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, int64(42), view.ID)
	assert.True(t, view.IsLiked)
}

func TestPostsGetByIDNotFound(t *testing.T) {
	posts := &stubPostService{
		findByID: func(ctx context.Context, id int64, viewerID *uuid.UUID) (*feed.PostView, error) {
			return nil, model.ErrPostNotFound
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodGet, "/api/v1/posts/999", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostsGetByIDInvalidID(t *testing.T) {
	r := newTestRouter(t, &stubPostService{}, &stubCommentService{})

	w := doRequest(r, http.MethodGet, "/api/v1/posts/abc", nil, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostsEditForbidden(t *testing.T) {
	posts := &stubPostService{
		update: func(ctx context.Context, postID int64, requesterID uuid.UUID, in dto.EditPostRequest) (*model.Post, error) {
			return nil, model.ErrNotPostAuthor
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodPatch, "/api/v1/posts/1", dto.EditPostRequest{Text: "edited"}, authHeader(t, uuid.New()))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPostsDelete(t *testing.T) {
	userID := uuid.New()
	posts := &stubPostService{
		delete: func(ctx context.Context, postID int64, requesterID uuid.UUID) error {
			assert.Equal(t, int64(5), postID)
			assert.Equal(t, userID, requesterID)
			return nil
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodDelete, "/api/v1/posts/5", nil, authHeader(t, userID))

	assert.Equal(t, http.StatusOK, w.Code)
	var body dto.BasicResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Ok)
}

func TestPostsLike(t *testing.T) {
	posts := &stubPostService{
		toggleLike: func(ctx context.Context, postID int64, userID uuid.UUID) (*dto.LikeResponse, error) {
			return &dto.LikeResponse{IsLiked: true, LikesCount: 4}, nil
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodPost, "/api/v1/posts/1/like", nil, authHeader(t, uuid.New()))

	assert.Equal(t, http.StatusOK, w.Code)
	var result dto.LikeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.IsLiked)
	assert.Equal(t, int64(4), result.LikesCount)
}

func TestPostsSave(t *testing.T) {
	posts := &stubPostService{
		toggleSave: func(ctx context.Context, postID int64, userID uuid.UUID) (*dto.SaveResponse, error) {
			return &dto.SaveResponse{IsSaved: false, SavedCount: 0}, nil
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodPost, "/api/v1/posts/1/save", nil, authHeader(t, uuid.New()))

	assert.Equal(t, http.StatusOK, w.Code)
	var result dto.SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.IsSaved)
}

func TestPostsView(t *testing.T) {
	posts := &stubPostService{
		registerView: func(ctx context.Context, postID int64, userID uuid.UUID) (*dto.ViewResponse, error) {
			return &dto.ViewResponse{Views: 12}, nil
		},
	}
	r := newTestRouter(t, posts, &stubCommentService{})

	w := doRequest(r, http.MethodPost, "/api/v1/posts/1/view", nil, authHeader(t, uuid.New()))

	assert.Equal(t, http.StatusOK, w.Code)
	var result dto.ViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(12), result.Views)
}

func TestPostsLikeUnauthorized(t *testing.T) {
	r := newTestRouter(t, &stubPostService{}, &stubCommentService{})

	w := doRequest(r, http.MethodPost, "/api/v1/posts/1/like", nil, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
