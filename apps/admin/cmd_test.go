package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/core/target"
	"github.com/taleemhub/backoffice/storage/database/inmem"
	"github.com/taleemhub/backoffice/tests"
)

var empRepo employee.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	// set up repos
	db := inmem.NewDB()
	empRepo = inmem.NewEmployeeRepository(db)
	statRepo := inmem.NewDailyStatRepository(db)
	tgtRepo := inmem.NewTargetRepository(db)

	// start CLI
	return &commandLine{
		empRepo: empRepo,
		tgtSvc:  target.NewService(nil, tgtRepo, statRepo, empRepo, nil),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "attendance", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "employee not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: employee.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", emp.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", emp.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshed, err := empRepo.GetEmployee(context.Background(), employee.GetFilter{ID: emp.ID})
				if err != nil {
					t.Fatalf("GetEmployee() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, emp.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addEmployee(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cr3t"), nil }

	// creates a fresh admin
	if err := cli.run([]string{"admin", "addemployee", "-username", "Boss", "-email", "Boss@test.tl", "-admin"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	emp, err := empRepo.GetEmployee(context.Background(), employee.GetFilter{Username: "boss"})
	if err != nil {
		t.Fatalf("GetEmployee() failed: %v", err)
	}
	if !emp.Active() {
		t.Error("employee should be active")
	}
	if !emp.IsAdmin() {
		t.Errorf("employee roles = %v, want all roles", emp.Roles)
	}
	if err := emp.CheckPassword("s3cr3t"); err != nil {
		t.Error("password not set")
	}

	// running again updates the same employee
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("changed"), nil }
	if err := cli.run([]string{"admin", "addemployee", "-username", "boss", "-email", "boss@test.tl"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	refreshed, err := empRepo.GetEmployee(context.Background(), employee.GetFilter{Username: "boss"})
	if err != nil {
		t.Fatalf("GetEmployee() failed: %v", err)
	}
	if refreshed.ID != emp.ID {
		t.Errorf("addemployee created a duplicate: %v != %v", refreshed.ID, emp.ID)
	}
	if err := refreshed.CheckPassword("changed"); err != nil {
		t.Error("password not updated")
	}
}
