package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1)`, email)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO "user" (id, name, email, role, phone, dept_id, password_hash, last_login_at, created_at, updated_at)
		VALUES (:id, :name, :email, :role, :phone, :dept_id, :password_hash, :last_login_at, :created_at, :updated_at)`,
		usr,
	)
	if err != nil {
		if isUniqueViolation(err, "user_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	users := make([]user.User, 0)
	err := repo.db.SelectContext(ctx, &users, `SELECT * FROM "user" ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by id")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE "user"
		SET name = :name, email = :email, role = :role, phone = :phone, dept_id = :dept_id,
			password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`,
		usr,
	)
	if err != nil {
		if isUniqueViolation(err, "user_email_key") {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) error {
	_, err := repo.db.ExecContext(ctx, `UPDATE "user" SET last_login_at = $1 WHERE id = $2`, usr.LastLoginAt, usr.ID)
	return errors.Wrap(err, "setting last login")
}

func (repo userRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM "user" WHERE role = $1`, user.RoleSuperAdmin)
	if err != nil {
		return 0, errors.Wrap(err, "counting admins")
	}
	return count, nil
}

func (repo userRepository) GetSetupStatus(ctx context.Context) (user.SetupStatus, error) {
	var status user.SetupStatus
	err := repo.db.GetContext(ctx, &status, `SELECT * FROM setup_status WHERE id = $1`, user.SetupID)
	if err != nil {
		return user.SetupStatus{}, repo.trapNoRowsErr(err, "getting setup status")
	}
	return status, nil
}

func (repo userRepository) CreateSetupStatus(ctx context.Context, status user.SetupStatus) (user.SetupStatus, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO setup_status (id, is_complete, setup_step, admin_id, institute_name, created_at, updated_at)
		VALUES (:id, :is_complete, :setup_step, :admin_id, :institute_name, :created_at, :updated_at)`,
		status,
	)
	if err != nil {
		if isUniqueViolation(err, "setup_status_pkey") {
			return user.SetupStatus{}, user.ErrAlreadyInitialized
		}
		return user.SetupStatus{}, errors.Wrap(err, "inserting setup status")
	}
	return status, nil
}
