package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/tathmini/core/user"
)

type userRepository struct {
	users *userTable
	setup *setupTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{users: db.user, setup: db.setup}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.users.table))
	for _, u := range repo.users.table {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string) error {
	repo.users.RLock()
	defer repo.users.RUnlock()

	for _, usr := range repo.users.table {
		if usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.users.Lock()
	defer repo.users.Unlock()

	for _, u := range repo.users.table {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	repo.users.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.users.RLock()
	defer repo.users.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.users.RLock()
	defer repo.users.RUnlock()

	if usr, ok := repo.users.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.users.RLock()
	defer repo.users.RUnlock()

	for _, usr := range repo.users.table {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.users.Lock()
	defer repo.users.Unlock()

	if _, ok := repo.users.table[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	for _, u := range repo.users.table {
		if u.Email == usr.Email && u.ID != usr.ID {
			return user.User{}, user.ErrEmailExists
		}
	}
	repo.users.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) SetLastLogin(_ context.Context, usr user.User) error {
	repo.users.Lock()
	defer repo.users.Unlock()

	u, ok := repo.users.table[usr.ID]
	if !ok {
		return user.ErrNotFound
	}
	u.LastLoginAt = usr.LastLoginAt
	return nil
}

func (repo *userRepository) CountAdmins(_ context.Context) (int, error) {
	repo.users.RLock()
	defer repo.users.RUnlock()

	var count int
	for _, usr := range repo.users.table {
		if usr.IsAdmin() {
			count++
		}
	}
	return count, nil
}

func (repo *userRepository) GetSetupStatus(_ context.Context) (user.SetupStatus, error) {
	repo.setup.RLock()
	defer repo.setup.RUnlock()

	if status, ok := repo.setup.table[user.SetupID]; ok {
		return *status, nil
	}
	return user.SetupStatus{}, user.ErrNotFound
}

func (repo *userRepository) CreateSetupStatus(_ context.Context, status user.SetupStatus) (user.SetupStatus, error) {
	repo.setup.Lock()
	defer repo.setup.Unlock()

	if _, ok := repo.setup.table[status.ID]; ok {
		return user.SetupStatus{}, user.ErrAlreadyInitialized
	}
	repo.setup.table[status.ID] = &status
	return status, nil
}
