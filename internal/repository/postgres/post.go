package postgres

import (
	"context"

	"github.com/OpenFeed/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postRepo struct {
	db *pgxpool.Pool
}

func newPostRepo(db *pgxpool.Pool) Post {
	return &postRepo{
		db: db,
	}
}

func (r *postRepo) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	if err := r.db.QueryRow(
		ctx,
		"INSERT INTO posts(author_id, author_name, text, image) VALUES($1, $2, $3, $4) RETURNING id, created_at, updated_at",
		post.AuthorID,
		post.AuthorName,
		post.Text,
		post.Image,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}

	post.SyncCounts()
	return &post, nil
}

func (r *postRepo) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	return findPost(ctx, r.db, id)
}

func findPost(ctx context.Context, q querier, id int64) (*model.Post, error) {
	var post model.Post
	if err := q.QueryRow(
		ctx,
		"SELECT p.id, p.author_id, p.author_name, p.text, p.image, p.created_at, p.updated_at FROM posts p WHERE p.id = $1",
		id,
	).Scan(
		&post.ID,
		&post.AuthorID,
		&post.AuthorName,
		&post.Text,
		&post.Image,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, model.ErrPostNotFound
		}
		return nil, err
	}

	if err := loadAggregates(ctx, q, []*model.Post{&post}); err != nil {
		return nil, err
	}

	return &post, nil
}

func (r *postRepo) FindAll(ctx context.Context, limit int, offset int) ([]*model.Post, error) {
	rows, err := r.db.Query(
		ctx,
		`SELECT p.id, p.author_id, p.author_name, p.text, p.image, p.created_at, p.updated_at
		FROM posts p
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1
		OFFSET $2`,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.AuthorName,
			&post.Text,
			&post.Image,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, err
		}

		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadAggregates(ctx, r.db, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// loadAggregates attaches the membership sets and the ordered comment
// sequence to each post and syncs the derived counts.
func loadAggregates(ctx context.Context, q querier, posts []*model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	byID := make(map[int64]*model.Post, len(posts))
	ids := make([]int64, 0, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
		ids = append(ids, post.ID)
	}

	memberships := []struct {
		table  string
		assign func(post *model.Post, userID uuid.UUID)
	}{
		{"post_likes", func(post *model.Post, userID uuid.UUID) { post.LikedBy = append(post.LikedBy, userID) }},
		{"post_saves", func(post *model.Post, userID uuid.UUID) { post.SavedBy = append(post.SavedBy, userID) }},
		{"post_views", func(post *model.Post, userID uuid.UUID) { post.ViewedBy = append(post.ViewedBy, userID) }},
	}

	for _, m := range memberships {
		rows, err := q.Query(ctx, "SELECT post_id, user_id FROM "+m.table+" WHERE post_id = ANY($1)", ids)
		if err != nil {
			return err
		}

		for rows.Next() {
			var (
				postID int64
				userID uuid.UUID
			)
			if err := rows.Scan(&postID, &userID); err != nil {
				rows.Close()
				return err
			}
			m.assign(byID[postID], userID)
		}
		rows.Close()

		if err := rows.Err(); err != nil {
			return err
		}
	}

	rows, err := q.Query(
		ctx,
		`SELECT c.id, c.post_id, c.author_id, c.author_name, c.text, c.created_at, c.updated_at
		FROM post_comments c
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at ASC, c.id ASC`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var comment model.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.Text,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return err
		}
		byID[comment.PostID].Comments = append(byID[comment.PostID].Comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return err
	}

	for _, post := range posts {
		post.SyncCounts()
	}

	return nil
}

func (r *postRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM posts").Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *postRepo) Update(ctx context.Context, postID int64, requesterID uuid.UUID, text string, image string) (*model.Post, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	authorID, err := lockPost(ctx, tx, postID)
	if err != nil {
		return nil, err
	}
	if authorID != requesterID {
		return nil, model.ErrNotPostAuthor
	}

	if _, err := tx.Exec(
		ctx,
		"UPDATE posts SET text = $1, image = $2, updated_at = now() WHERE id = $3",
		text,
		image,
		postID,
	); err != nil {
		return nil, err
	}

	post, err := findPost(ctx, tx, postID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return post, nil
}

func (r *postRepo) Delete(ctx context.Context, postID int64, requesterID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	authorID, err := lockPost(ctx, tx, postID)
	if err != nil {
		return err
	}
	if authorID != requesterID {
		return model.ErrNotPostAuthor
	}

	// Cascade: embedded comments and membership rows have no existence
	// outside their post.
	for _, table := range []string{"post_comments", "post_likes", "post_saves", "post_views"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE post_id = $1", postID); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, "DELETE FROM posts WHERE id = $1", postID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postRepo) ToggleLike(ctx context.Context, postID int64, userID uuid.UUID) (bool, int64, error) {
	return r.toggleMembership(ctx, "post_likes", postID, userID)
}

func (r *postRepo) ToggleSave(ctx context.Context, postID int64, userID uuid.UUID) (bool, int64, error) {
	return r.toggleMembership(ctx, "post_saves", postID, userID)
}

// toggleMembership is the conditional set-toggle: remove if present,
// insert otherwise, and recompute the count, all under the post's row
// lock so concurrent toggles serialize.
func (r *postRepo) toggleMembership(ctx context.Context, table string, postID int64, userID uuid.UUID) (bool, int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := lockPost(ctx, tx, postID); err != nil {
		return false, 0, err
	}

	tag, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE post_id = $1 AND user_id = $2", postID, userID)
	if err != nil {
		return false, 0, err
	}

	member := tag.RowsAffected() == 0
	if member {
		if _, err := tx.Exec(ctx, "INSERT INTO "+table+"(post_id, user_id) VALUES($1, $2)", postID, userID); err != nil {
			return false, 0, err
		}
	}

	var count int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+" WHERE post_id = $1", postID).Scan(&count); err != nil {
		return false, 0, err
	}

	if err := touchPost(ctx, tx, postID); err != nil {
		return false, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, err
	}

	return member, count, nil
}

func (r *postRepo) RegisterView(ctx context.Context, postID int64, userID uuid.UUID) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := lockPost(ctx, tx, postID); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(
		ctx,
		"INSERT INTO post_views(post_id, user_id) VALUES($1, $2) ON CONFLICT (post_id, user_id) DO NOTHING",
		postID,
		userID,
	)
	if err != nil {
		return 0, err
	}

	// A repeated view is a no-op and must not touch the aggregate.
	if tag.RowsAffected() > 0 {
		if err := touchPost(ctx, tx, postID); err != nil {
			return 0, err
		}
	}

	var views int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM post_views WHERE post_id = $1", postID).Scan(&views); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return views, nil
}
