package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/core/target"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	empRepo employee.Repository
	tgtSvc  *target.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run DB migrations (up, down, status, ...)")
	fmt.Println("  addemployee -username USERNAME -email EMAIL [-admin] - add or update an employee")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset an employee's password")
	fmt.Println("  closetargets - mark expired in-progress targets as not achieved")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addEmployeeCmd := flag.NewFlagSet("addemployee", flag.ExitOnError)
	addEmployeeUname := addEmployeeCmd.String("username", "", "The employee's username. The password will be prompted next.")
	addEmployeeEmail := addEmployeeCmd.String("email", "", "The employee's email.")
	addEmployeeIsAdmin := addEmployeeCmd.Bool("admin", false, "Grant all roles to the employee.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The employee's username or email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addemployee":
		if err := addEmployeeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addEmployeeUname == "" || *addEmployeeEmail == "" {
			addEmployeeCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addEmployeeCmd.Usage()
			return errHelp
		}
		return cli.addEmployee(*addEmployeeUname, *addEmployeeEmail, pwd, *addEmployeeIsAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "closetargets":
		return cli.closeTargets()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
