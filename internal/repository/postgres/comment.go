package postgres

import (
	"context"

	"github.com/OpenFeed/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type commentRepo struct {
	db *pgxpool.Pool
}

func newCommentRepo(db *pgxpool.Pool) Comment {
	return &commentRepo{
		db: db,
	}
}

func (r *commentRepo) Create(ctx context.Context, comment model.Comment) (*model.Comment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := lockPost(ctx, tx, comment.PostID); err != nil {
		return nil, err
	}

	// Serial ids and created_at keep the append-at-end display order.
	if err := tx.QueryRow(
		ctx,
		"INSERT INTO post_comments(post_id, author_id, author_name, text) VALUES($1, $2, $3, $4) RETURNING id, created_at, updated_at",
		comment.PostID,
		comment.AuthorID,
		comment.AuthorName,
		comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
		return nil, err
	}

	if err := touchPost(ctx, tx, comment.PostID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &comment, nil
}

func (r *commentRepo) Update(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID, text string) (*model.Comment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := lockPost(ctx, tx, postID); err != nil {
		return nil, err
	}

	if err := checkCommentOwner(ctx, tx, postID, commentID, requesterID); err != nil {
		return nil, err
	}

	var comment model.Comment
	if err := tx.QueryRow(
		ctx,
		`UPDATE post_comments SET text = $1, updated_at = now()
		WHERE id = $2 AND post_id = $3
		RETURNING id, post_id, author_id, author_name, text, created_at, updated_at`,
		text,
		commentID,
		postID,
	).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.AuthorName,
		&comment.Text,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := touchPost(ctx, tx, postID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &comment, nil
}

func (r *commentRepo) Delete(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := lockPost(ctx, tx, postID); err != nil {
		return err
	}

	if err := checkCommentOwner(ctx, tx, postID, commentID, requesterID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM post_comments WHERE id = $1 AND post_id = $2", commentID, postID); err != nil {
		return err
	}

	if err := touchPost(ctx, tx, postID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func checkCommentOwner(ctx context.Context, tx pgx.Tx, postID int64, commentID int64, requesterID uuid.UUID) error {
	var authorID uuid.UUID
	if err := tx.QueryRow(
		ctx,
		"SELECT author_id FROM post_comments WHERE id = $1 AND post_id = $2",
		commentID,
		postID,
	).Scan(&authorID); err != nil {
		if err == pgx.ErrNoRows {
			return model.ErrCommentNotFound
		}
		return err
	}

	if authorID != requesterID {
		return model.ErrNotCommentAuthor
	}
	return nil
}
