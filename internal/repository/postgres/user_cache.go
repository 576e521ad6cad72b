package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/OpenFeed/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrFieldsNotAllowedToUpdate = errors.New("some fields are not allowed to be updated")

type userCacheRepo struct {
	db *pgxpool.Pool
}

func newUserCacheRepo(db *pgxpool.Pool) UserCache {
	return &userCacheRepo{
		db: db,
	}
}

func (r *userCacheRepo) Create(ctx context.Context, cachedUser model.CachedUser) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO cached_users(id, username, display_name, avatar_url) VALUES($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET username = $2, display_name = $3, avatar_url = $4`,
		cachedUser.ID,
		cachedUser.Username,
		cachedUser.DisplayName,
		cachedUser.AvatarURL,
	)
	return err
}

func (r *userCacheRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	allowed := map[string]struct{}{
		"username":     {},
		"display_name": {},
		"avatar_url":   {},
	}
	for field := range updates {
		if _, ok := allowed[field]; !ok {
			return ErrFieldsNotAllowedToUpdate
		}
	}

	var query strings.Builder
	query.WriteString("UPDATE cached_users SET ")

	args := make([]interface{}, 0, len(updates)+1)
	for column, value := range updates {
		if len(args) > 0 {
			query.WriteString(", ")
		}
		args = append(args, value)
		query.WriteString(column + " = $" + strconv.Itoa(len(args)))
	}

	args = append(args, id)
	query.WriteString(" WHERE id = $" + strconv.Itoa(len(args)))

	_, err := r.db.Exec(ctx, query.String(), args...)
	return err
}

func (r *userCacheRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error) {
	var user model.CachedUser
	if err := r.db.QueryRow(
		ctx,
		"SELECT u.id, u.username, u.display_name, u.avatar_url FROM cached_users u WHERE u.id = $1",
		id,
	).Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.AvatarURL,
	); err != nil {
		return nil, err
	}

	return &user, nil
}
