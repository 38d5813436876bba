package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/philip-ks/eduforge/core/auth"
	"github.com/philip-ks/eduforge/core/user"
	dummydb "github.com/philip-ks/eduforge/storage/database/dummy"
)

func setup(t *testing.T) (*commandLine, user.Repository) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	return &commandLine{usrRepo: usrRepo}, usrRepo
}

func createUser(t *testing.T, repo user.Repository, email, pwd, role string) user.User {
	t.Helper()

	usr := user.User{Email: email, Role: role, IsActive: true}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_addUser(t *testing.T) {
	cli, usrRepo := setup(t)
	existing := createUser(t, usrRepo, "awe@test.cd", "Mdr123!pass", auth.RoleStudent)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"adduser", "-email", "new@test.cd"}, wantErr: errHelp},
		{name: "unknown role", args: []string{"adduser", "-email", "new@test.cd", "-role", "WIZARD"}, pwd: "lol", wantErr: errUnknownRole},
		{name: "creates admin", args: []string{"adduser", "-email", "new@test.cd"}, pwd: "lol"},
		{name: "role is normalized", args: []string{"adduser", "-email", "inst@test.cd", "-role", "institution", "-institution", "inst1"}, pwd: "lol"},
		{name: "updates existing", args: []string{"adduser", "-email", existing.Email, "-role", "ADMIN"}, pwd: "lol"},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) { return []byte(tt.pwd), nil }

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := usrRepo.GetUserByEmail(context.Background(), "new@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if usr.Role != auth.RoleAdmin {
		t.Errorf("expected role %s, got %s", auth.RoleAdmin, usr.Role)
	}

	usr, err = usrRepo.GetUserByEmail(context.Background(), "inst@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if usr.Role != auth.RoleInstitution {
		t.Errorf("expected role %s, got %s", auth.RoleInstitution, usr.Role)
	}
	if usr.InstitutionID.String != "inst1" {
		t.Errorf("expected institution inst1, got %s", usr.InstitutionID.String)
	}

	updated, err := usrRepo.GetUserByID(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if updated.Role != auth.RoleAdmin {
		t.Errorf("expected role %s, got %s", auth.RoleAdmin, updated.Role)
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, usrRepo := setup(t)
	usr := createUser(t, usrRepo, "awe@test.cd", "Mdr123!pass", auth.RoleStudent)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "resets password", args: []string{"resetpassword", "-email", usr.Email}, pwd: "lol"},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) { return []byte(tt.pwd), nil }

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if bytes.Equal(refreshed.PasswordHash, usr.PasswordHash) {
		t.Error("failed to update new password")
	}
}
