package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/core/target"
)

func CreateEmployee(
	t *testing.T,
	repo employee.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) employee.Employee {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	emp := employee.Employee{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	emp.SetActive(isActive)
	if pwd != "" {
		if err := emp.SetPassword(pwd); err != nil {
			t.Fatalf("CreateEmployee() failed: %v", err)
		}
	}
	emp, err := repo.CreateEmployee(context.Background(), emp)
	if err != nil {
		t.Fatalf("CreateEmployee() failed: %v", err)
	}
	return emp
}

func CreateDailyStat(
	t *testing.T,
	svc *dailystat.Service,
	employeeID string,
	ns dailystat.NewDailyStat,
) dailystat.DailyStat {
	ds, err := svc.Submit(context.Background(), employeeID, ns)
	if err != nil {
		t.Fatalf("CreateDailyStat() failed: %v", err)
	}
	return ds
}

func CreateTarget(
	t *testing.T,
	svc *target.Service,
	nt target.NewTarget,
) target.EmployeeTarget {
	tgt, err := svc.Create(context.Background(), nt)
	if err != nil {
		t.Fatalf("CreateTarget() failed: %v", err)
	}
	return tgt
}
