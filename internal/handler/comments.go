package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/OpenFeed/feed-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) commentsCreate(c *gin.Context) {
	user := h.getUserFromRequest(c)

	var input dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	createdComment, err := h.services.Comment.Create(c.Request.Context(), *user, input)
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, *createdComment)
}

func (h *Handler) commentsEdit(c *gin.Context) {
	user := h.getUserFromRequest(c)

	postID, commentID, err := parseCommentIDs(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	var input dto.EditCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	updatedComment, err := h.services.Comment.Update(c.Request.Context(), postID, commentID, user.ID, input.Text)
	if err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, *updatedComment)
}

func (h *Handler) commentsDelete(c *gin.Context) {
	user := h.getUserFromRequest(c)

	postID, commentID, err := parseCommentIDs(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewBasicResponse(false, err.Error()))
		return
	}

	if err := h.services.Comment.Delete(c.Request.Context(), postID, commentID, user.ID); err != nil {
		c.JSON(errorStatus(err), dto.NewBasicResponse(false, err.Error()))
		return
	}

	c.JSON(http.StatusOK, dto.NewBasicResponse(true, ""))
}

func parseCommentIDs(c *gin.Context) (int64, int64, error) {
	postID, err0 := strconv.ParseInt(strings.TrimSpace(c.Param("postID")), 10, 64)
	commentID, err1 := strconv.ParseInt(strings.TrimSpace(c.Param("commentID")), 10, 64)
	if err0 != nil || err1 != nil {
		return 0, 0, errInvalidID
	}
	return postID, commentID, nil
}
