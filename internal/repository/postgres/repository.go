package postgres

import (
	"context"
	"fmt"

	"github.com/OpenFeed/feed-service/internal/config"
	"github.com/OpenFeed/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Post interface {
	Create(ctx context.Context, post model.Post) (*model.Post, error)
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	FindAll(ctx context.Context, limit int, offset int) ([]*model.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, postID int64, requesterID uuid.UUID, text string, image string) (*model.Post, error)
	Delete(ctx context.Context, postID int64, requesterID uuid.UUID) error
	ToggleLike(ctx context.Context, postID int64, userID uuid.UUID) (bool, int64, error)
	ToggleSave(ctx context.Context, postID int64, userID uuid.UUID) (bool, int64, error)
	RegisterView(ctx context.Context, postID int64, userID uuid.UUID) (int64, error)
}

type Comment interface {
	Create(ctx context.Context, comment model.Comment) (*model.Comment, error)
	Update(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID, text string) (*model.Comment, error)
	Delete(ctx context.Context, postID int64, commentID int64, requesterID uuid.UUID) error
}

type UserCache interface {
	Create(ctx context.Context, cachedUser model.CachedUser) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
}

type PostgresRepository struct {
	Post
	Comment
	UserCache
}

func New(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		Post:      newPostRepo(db),
		Comment:   newCommentRepo(db),
		UserCache: newUserCacheRepo(db),
	}
}

func DB(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.SSLMode,
	)
	return pgxpool.New(ctx, dsn)
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so aggregate
// assembly can run inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// lockPost takes the per-post row lock that serializes every mutation of
// one aggregate, and reports ErrPostNotFound for unknown ids.
func lockPost(ctx context.Context, tx pgx.Tx, postID int64) (uuid.UUID, error) {
	var authorID uuid.UUID
	if err := tx.QueryRow(ctx, "SELECT author_id FROM posts WHERE id = $1 FOR UPDATE", postID).Scan(&authorID); err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, model.ErrPostNotFound
		}
		return uuid.Nil, err
	}
	return authorID, nil
}

func touchPost(ctx context.Context, tx pgx.Tx, postID int64) error {
	_, err := tx.Exec(ctx, "UPDATE posts SET updated_at = now() WHERE id = $1", postID)
	return err
}
