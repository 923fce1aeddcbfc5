package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const userColumns = `id, username, password_hash, role, age, gender, date, shift, image_key, image_content_type`

// UserRepo реализует репозиторий пользователей поверх PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
	conv converter.UserConverter
}

func NewUserRepo(pool *pgxpool.Pool, conv converter.UserConverter) *UserRepo {
	return &UserRepo{pool: pool, conv: conv}
}

func (u *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	model := u.conv.ToModel(user)
	query := `
		INSERT INTO users (username, password_hash, role, age, gender, date, shift, image_key, image_content_type)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()), $7, $8, $9)
		RETURNING ` + userColumns

	var created converter.UserModel
	err := scanUser(tr.ExecutorFromCtx(ctx, u.pool).QueryRow(ctx, query,
		model.Username, model.PasswordHash, model.Role, model.Age, model.Gender,
		optionalTime(model.Date), model.Shift, model.ImageKey, model.ImageContentType,
	), &created)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUsernameExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(&created), nil
}

// FindByUsername возвращает пользователя или e.ErrUserNotFound.
func (u *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var model converter.UserModel
	if err := scanUser(tr.ExecutorFromCtx(ctx, u.pool).QueryRow(ctx, query, username), &model); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(&model), nil
}

func (u *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := tr.ExecutorFromCtx(ctx, u.pool).Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.User, 0)
	for rows.Next() {
		var model converter.UserModel
		if err := scanUser(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *u.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Delete удаляет пользователя и возвращает удалённую запись (нужен ключ изображения).
func (u *UserRepo) Delete(ctx context.Context, id int64) (*domain.User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns

	var model converter.UserModel
	if err := scanUser(tr.ExecutorFromCtx(ctx, u.pool).QueryRow(ctx, query, id), &model); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUserNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(&model), nil
}

func scanUser(row pgx.Row, model *converter.UserModel) error {
	return row.Scan(
		&model.ID, &model.Username, &model.PasswordHash, &model.Role, &model.Age,
		&model.Gender, &model.Date, &model.Shift, &model.ImageKey, &model.ImageContentType,
	)
}
