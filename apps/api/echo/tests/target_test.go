package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	. "github.com/taleemhub/backoffice/apps/api/echo"
	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/core/target"
	"github.com/taleemhub/backoffice/tests"
)

func Test_targetApi_permissions(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateEmployee(t, empRepo, "Staff", "staff", "staff@test.tl", "", []string{employee.RoleStaffSales}, true)
	supervisor := testutil.CreateEmployee(t, empRepo, "Supervisor", "supervisor", "supervisor@test.tl", "", []string{employee.RoleSupervisor}, true)
	staffToken := getToken(t, staff)
	supervisorToken := getToken(t, supervisor)

	forbidden := marchallObj(t, errForbidden)

	tests := []httpTest{
		{name: "create requires auth", method: http.MethodPost, path: "/v1/targets", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "create is admin-only", method: http.MethodPost, path: "/v1/targets", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "create is admin-only (supervisor)", method: http.MethodPost, path: "/v1/targets", token: supervisorToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "update is admin-only", method: http.MethodPut, path: "/v1/targets/xyz", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "delete is admin-only", method: http.MethodDelete, path: "/v1/targets/xyz", token: supervisorToken, wantCode: http.StatusForbidden, wantData: forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_targetApi_crud(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateEmployee(t, empRepo, "Staff", "staff", "staff@test.tl", "", []string{employee.RoleStaffSales}, true)
	other := testutil.CreateEmployee(t, empRepo, "Other", "other", "other@test.tl", "", []string{employee.RoleStaffSales}, true)
	admin := testutil.CreateEmployee(t, empRepo, "Admin", "admin", "admin@test.tl", "", []string{employee.RoleAdmin}, true)
	staffToken := getToken(t, staff)
	otherToken := getToken(t, other)
	adminToken := getToken(t, admin)

	// admin assigns a target
	body := marchallObj(t, target.NewTarget{
		EmployeeID:  staff.ID,
		Type:        target.TypeConfirmedCustomers,
		Period:      target.PeriodMonthly,
		Month:       3,
		Year:        2021,
		TargetValue: 30,
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/targets", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d, want %d; body = %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var tgt target.EmployeeTarget
	decodeBody(t, rec, &tgt)
	if tgt.Status != target.StatusInProgress {
		t.Errorf("create status = %v, want %v", tgt.Status, target.StatusInProgress)
	}

	// an unknown target type is refused
	body = marchallObj(t, target.NewTarget{
		EmployeeID:  staff.ID,
		Type:        "lol",
		Period:      target.PeriodMonthly,
		Month:       3,
		Year:        2021,
		TargetValue: 30,
	})
	req, rec = newAuthRequest(http.MethodPost, "/v1/targets", adminToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("create with bad type code = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// the owner sees it; another staff member does not
	req, rec = newAuthRequest(http.MethodGet, "/v1/targets/"+tgt.ID, staffToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("retrieve by owner code = %d, want %d", rec.Code, http.StatusOK)
	}
	req, rec = newAuthRequest(http.MethodGet, "/v1/targets/"+tgt.ID, otherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("retrieve by other staff code = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// staff listings are self-scoped
	req, rec = newAuthRequest(http.MethodGet, "/v1/targets", otherToken)
	app.ServeHTTP(rec, req)
	tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}
	checkCodeAndData(t, tt, rec)

	// admin adjusts the quota
	value := 10.0
	req, rec = newAuthRequest(http.MethodPut, "/v1/targets/"+tgt.ID, adminToken, marchallObj(t, target.UpdateTarget{TargetValue: &value}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update code = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	decodeBody(t, rec, &tgt)
	if tgt.TargetValue != 10 {
		t.Errorf("update targetValue = %v, want 10", tgt.TargetValue)
	}

	// and deletes it
	req, rec = newAuthRequest(http.MethodDelete, "/v1/targets/"+tgt.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete code = %d, want %d", rec.Code, http.StatusNoContent)
	}
	req, rec = newAuthRequest(http.MethodGet, "/v1/targets/"+tgt.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("retrieve deleted target code = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func Test_targetApi_alerts(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateEmployee(t, empRepo, "Staff", "staff", "staff@test.tl", "", []string{employee.RoleStaffSales}, true)
	other := testutil.CreateEmployee(t, empRepo, "Other", "other", "other@test.tl", "", []string{employee.RoleStaffSales}, true)
	supervisor := testutil.CreateEmployee(t, empRepo, "Supervisor", "supervisor", "supervisor@test.tl", "", []string{employee.RoleSupervisor}, true)
	staffToken := getToken(t, staff)
	otherToken := getToken(t, other)

	testutil.CreateTarget(t, tgtSvc, target.NewTarget{
		EmployeeID:  staff.ID,
		Type:        target.TypeConfirmedCustomers,
		Period:      target.PeriodMonthly,
		Month:       3,
		Year:        2021,
		TargetValue: 10,
	})

	// crossing both thresholds fires both alerts
	ds := testutil.CreateDailyStat(t, statSvc, staff.ID, dailystat.NewDailyStat{
		Date:               time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC),
		ConfirmedCustomers: 10,
	})
	if _, err := statSvc.Approve(context.Background(), ds.ID, supervisor.ID, ""); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/targets/alerts", staffToken)
	app.ServeHTTP(rec, req)
	var alerts []target.Alert
	decodeBody(t, rec, &alerts)
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(alerts))
	}

	// other employees see none
	req, rec = newAuthRequest(http.MethodGet, "/v1/targets/alerts", otherToken)
	app.ServeHTTP(rec, req)
	tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t)}
	checkCodeAndData(t, tt, rec)

	// the owner marks theirs read
	req, rec = newAuthRequest(http.MethodPost, "/v1/targets/alerts/read", staffToken, marchallObj(t, MarkAlertsReadRequest{}))
	app.ServeHTTP(rec, req)
	tt = httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, MarkAlertsReadResponse{Marked: 2})}
	checkCodeAndData(t, tt, rec)

	// marking again touches nothing
	req, rec = newAuthRequest(http.MethodPost, "/v1/targets/alerts/read", staffToken, marchallObj(t, MarkAlertsReadRequest{}))
	app.ServeHTTP(rec, req)
	tt = httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, MarkAlertsReadResponse{Marked: 0})}
	checkCodeAndData(t, tt, rec)
}
