package main

import (
	"context"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/employee"
)

// addEmployee updates or creates an employee.Employee
func (cli *commandLine) addEmployee(uname, email, pwd string, isAdmin bool) error {
	var emp employee.Employee
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if emp, err = cli.empRepo.GetEmployee(ctx, employee.GetFilter{UsernameOrEmail: []string{uname, email}}); err != nil {
		if err != employee.ErrNotFound {
			return err
		}
		emp = employee.Employee{
			Name:     uname,
			Username: uname,
			Email:    email,
		}
	}
	if isAdmin {
		emp.Roles = employee.AllRoles
	}
	emp.SetActive(true)
	if err := emp.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.empRepo.UpdateOrCreateEmployee(ctx, emp); err != nil {
		return err
	}
	return nil
}
