package dto

type CreateCommentRequest struct {
	PostID int64  `json:"post_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

type EditCommentRequest struct {
	Text string `json:"text" binding:"required"`
}
