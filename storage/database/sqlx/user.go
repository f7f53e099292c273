package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/user"
	"github.com/shulehq/shule/storage/database"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND NOT (id::text = ANY($2)))`
	ids := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		ids = append(ids, usr.ID)
	}

	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, email, pq.Array(ids)).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	query := `
		INSERT INTO "user" (id, name, email, role, password_hash, created_at, updated_at)
		VALUES (:id, :name, :email, :role, :password_hash, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, usr); err != nil {
		if database.IsUniqueViolation(err, "user_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, database.TrapNoRowsErr(err, user.ErrNotFound, "getting user by id")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, database.TrapNoRowsErr(err, user.ErrNotFound, "getting user by email")
	}
	return usr, nil
}

func (repo userRepository) UpdateUserPassword(ctx context.Context, usr user.User) error {
	query := `UPDATE "user" SET password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, usr)
	if err != nil {
		return errors.Wrap(err, "updating user password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}
