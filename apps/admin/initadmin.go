package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/user"
)

// initAdmin creates a super admin account, bypassing the platform setup flow.
// Handy when the bootstrap admin gets locked out.
func (cli *commandLine) initAdmin(name, email, pwd string) error {
	ctx := context.Background()

	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      core.CleanString(name),
		Email:     core.CleanString(email, true /* lower */),
		Role:      user.RoleSuperAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return err
}
