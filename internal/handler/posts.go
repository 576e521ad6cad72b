package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/OpenFeed/feed-service/internal/dto"
	"github.com/OpenFeed/feed-service/internal/feed"
	"github.com/gin-gonic/gin"
)

func (h *Handler) postsCreate(c *gin.Context) {
	user := h.getUserFromRequest(c)

	var input dto.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	createdPost, err := h.services.Post.Create(c.Request.Context(), *user, input)
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, *createdPost)
}

func (h *Handler) postsFeed(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	input := dto.FeedRequest{
		Page:  page,
		Limit: limit,
		Query: c.Query("q"),
		Sort:  feed.ParseSortMode(c.Query("sort")),
	}

	result, err := h.services.Post.Feed(c.Request.Context(), input, h.viewerID(c))
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) postsGetByID(c *gin.Context) {
	postID, err := parsePostID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	post, err := h.services.Post.FindByID(c.Request.Context(), postID, h.viewerID(c))
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, *post)
}

func (h *Handler) postsEdit(c *gin.Context) {
	user := h.getUserFromRequest(c)

	postID, err := parsePostID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	var input dto.EditPostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	updatedPost, err := h.services.Post.Update(c.Request.Context(), postID, user.ID, input)
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, *updatedPost)
}

func (h *Handler) postsDelete(c *gin.Context) {
	user := h.getUserFromRequest(c)

	postID, err := parsePostID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	if err := h.services.Post.Delete(c.Request.Context(), postID, user.ID); err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}

func (h *Handler) postsLike(c *gin.Context) {
	user := h.getUserFromRequest(c)

	postID, err := parsePostID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	result, err := h.services.Post.ToggleLike(c.Request.Context(), postID, user.ID)
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, *result)
}

func (h *Handler) postsSave(c *gin.Context) {
	user := h.getUserFromRequest(c)

	postID, err := parsePostID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	result, err := h.services.Post.ToggleSave(c.Request.Context(), postID, user.ID)
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, *result)
}

func (h *Handler) postsView(c *gin.Context) {
	user := h.getUserFromRequest(c)

	postID, err := parsePostID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	result, err := h.services.Post.RegisterView(c.Request.Context(), postID, user.ID)
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, *result)
}

func parsePostID(c *gin.Context) (int64, error) {
	postIDString := strings.TrimSpace(c.Param("postID"))
	postID, err := strconv.ParseInt(postIDString, 10, 64)
	if err != nil {
		return 0, errInvalidPostID
	}
	return postID, nil
}
