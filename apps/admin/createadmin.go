package main

import (
	"context"
	"time"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/user"
)

// createAdmin bootstraps an admin account; admins cannot self-register
// through the API.
func (cli *commandLine) createAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if _, err := cli.usrRepo.GetUserByEmail(ctx, email); err != user.ErrNotFound {
		if err != nil {
			return err
		}
		return user.ErrEmailExists
	}

	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      user.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return err
}
