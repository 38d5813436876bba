package main

import (
	"context"
	"time"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(email, role, institutionID, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     email,
			CreatedAt: now,
		}
	}

	usr.Role = role
	if institutionID != "" {
		usr.InstitutionID.SetValid(institutionID)
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == "" {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	}
	return err
}
