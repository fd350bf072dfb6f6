package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// CreateUser persists a user fixture directly through the repository.
func CreateUser(t *testing.T, repo Repository, name, email string, role Role, pwd string) User {
	t.Helper()

	now := time.Now().UTC()
	usr := User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return usr
}
