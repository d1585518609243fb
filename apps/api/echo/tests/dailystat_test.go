package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	. "github.com/taleemhub/backoffice/apps/api/echo"
	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/tests"
)

func newStatBody(t *testing.T, confirmed int, fee float64) []byte {
	return marchallObj(t, dailystat.NewDailyStat{
		Date:               time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC),
		CourseID:           "crs1",
		CourseFee:          fee,
		ConfirmedCustomers: confirmed,
	})
}

func Test_dailyStatApi_permissions(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateEmployee(t, empRepo, "Staff", "staff", "staff@test.tl", "", []string{employee.RoleStaffSales}, true)
	supervisor := testutil.CreateEmployee(t, empRepo, "Supervisor", "supervisor", "supervisor@test.tl", "", []string{employee.RoleSupervisor}, true)
	staffToken := getToken(t, staff)
	supervisorToken := getToken(t, supervisor)

	forbidden := marchallObj(t, errForbidden)

	tests := []httpTest{
		{name: "submit requires auth", method: http.MethodPost, path: "/v1/daily-stats", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "query requires auth", method: http.MethodGet, path: "/v1/daily-stats", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "review is reviewer-only", method: http.MethodGet, path: "/v1/daily-stats/review", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "review summary is reviewer-only", method: http.MethodGet, path: "/v1/daily-stats/review/summary", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "bulk approve is reviewer-only", method: http.MethodPost, path: "/v1/daily-stats/bulk-approve", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "approve is reviewer-only", method: http.MethodPost, path: "/v1/daily-stats/xyz/approve", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "reject is reviewer-only", method: http.MethodPost, path: "/v1/daily-stats/xyz/reject", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "unapprove is reviewer-only", method: http.MethodPost, path: "/v1/daily-stats/xyz/unapprove", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "delete is admin-only", method: http.MethodDelete, path: "/v1/daily-stats/xyz", token: supervisorToken, wantCode: http.StatusForbidden, wantData: forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_dailyStatApi_reviewFlow(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateEmployee(t, empRepo, "Staff", "staff", "staff@test.tl", "", []string{employee.RoleStaffSales}, true)
	other := testutil.CreateEmployee(t, empRepo, "Other", "other", "other@test.tl", "", []string{employee.RoleStaffSales}, true)
	supervisor := testutil.CreateEmployee(t, empRepo, "Supervisor", "supervisor", "supervisor@test.tl", "", []string{employee.RoleSupervisor}, true)
	admin := testutil.CreateEmployee(t, empRepo, "Admin", "admin", "admin@test.tl", "", []string{employee.RoleAdmin}, true)
	staffToken := getToken(t, staff)
	otherToken := getToken(t, other)
	supervisorToken := getToken(t, supervisor)
	adminToken := getToken(t, admin)

	// staff submits a stat
	req, rec := newAuthRequest(http.MethodPost, "/v1/daily-stats", staffToken, newStatBody(t, 3, 100))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit code = %d, want %d; body = %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var ds dailystat.DailyStat
	decodeBody(t, rec, &ds)
	if ds.EmployeeID != staff.ID {
		t.Errorf("submit employeeID = %v, want %v", ds.EmployeeID, staff.ID)
	}
	if ds.Status != dailystat.StatusPending {
		t.Errorf("submit status = %v, want %v", ds.Status, dailystat.StatusPending)
	}

	// another staff member cannot see it
	req, rec = newAuthRequest(http.MethodGet, "/v1/daily-stats/"+ds.ID, otherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("retrieve by other staff code = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// a reviewer can
	req, rec = newAuthRequest(http.MethodGet, "/v1/daily-stats/"+ds.ID, supervisorToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("retrieve by reviewer code = %d, want %d", rec.Code, http.StatusOK)
	}

	// staff listing is scoped to their own submissions
	testutil.CreateDailyStat(t, statSvc, other.ID, dailystat.NewDailyStat{
		Date: time.Date(2021, time.March, 16, 0, 0, 0, 0, time.UTC),
	})
	req, rec = newAuthRequest(http.MethodGet, "/v1/daily-stats", staffToken)
	app.ServeHTTP(rec, req)
	var stats []dailystat.DailyStat
	decodeBody(t, rec, &stats)
	if len(stats) != 1 || stats[0].EmployeeID != staff.ID {
		t.Errorf("staff query returned %d stats, want only their own", len(stats))
	}

	// a reviewer sees both on the review dashboard
	req, rec = newAuthRequest(http.MethodGet, "/v1/daily-stats/review", supervisorToken)
	app.ServeHTTP(rec, req)
	decodeBody(t, rec, &stats)
	if len(stats) != 2 {
		t.Errorf("review listing returned %d stats, want 2", len(stats))
	}

	// rejection without notes is refused
	req, rec = newAuthRequest(http.MethodPost, "/v1/daily-stats/"+ds.ID+"/reject", supervisorToken, marchallObj(t, ReviewRequest{}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reject without notes code = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// approval
	req, rec = newAuthRequest(http.MethodPost, "/v1/daily-stats/"+ds.ID+"/approve", supervisorToken, marchallObj(t, ReviewRequest{Notes: "ok"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve code = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	decodeBody(t, rec, &ds)
	if ds.Status != dailystat.StatusApproved {
		t.Errorf("approve status = %v, want %v", ds.Status, dailystat.StatusApproved)
	}
	if ds.ReviewedBy.String != supervisor.ID {
		t.Errorf("approve reviewedBy = %v, want %v", ds.ReviewedBy.String, supervisor.ID)
	}

	// approving twice is a conflict
	req, rec = newAuthRequest(http.MethodPost, "/v1/daily-stats/"+ds.ID+"/approve", supervisorToken, marchallObj(t, ReviewRequest{}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("approve twice code = %d, want %d", rec.Code, http.StatusConflict)
	}

	// the owner cannot edit an approved stat
	notes := "oops"
	req, rec = newAuthRequest(http.MethodPut, "/v1/daily-stats/"+ds.ID, staffToken, marchallObj(t, dailystat.UpdateDailyStat{Notes: &notes}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("update approved stat code = %d, want %d", rec.Code, http.StatusConflict)
	}

	// unapproval puts it back in review; notes are accepted but not kept
	req, rec = newAuthRequest(http.MethodPost, "/v1/daily-stats/"+ds.ID+"/unapprove", supervisorToken, marchallObj(t, ReviewRequest{Notes: "approved too early"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unapprove code = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	decodeBody(t, rec, &ds)
	if ds.Status != dailystat.StatusPending {
		t.Errorf("unapprove status = %v, want %v", ds.Status, dailystat.StatusPending)
	}
	if ds.ReviewNotes.Valid {
		t.Error("unapprove should clear the review notes")
	}

	// only the owner may edit it
	req, rec = newAuthRequest(http.MethodPut, "/v1/daily-stats/"+ds.ID, otherToken, marchallObj(t, dailystat.UpdateDailyStat{Notes: &notes}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update by other staff code = %d, want %d", rec.Code, http.StatusNotFound)
	}
	req, rec = newAuthRequest(http.MethodPut, "/v1/daily-stats/"+ds.ID, staffToken, marchallObj(t, dailystat.UpdateDailyStat{Notes: &notes}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("update by owner code = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// admin deletes it
	req, rec = newAuthRequest(http.MethodDelete, "/v1/daily-stats/"+ds.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete code = %d, want %d", rec.Code, http.StatusNoContent)
	}
	req, rec = newAuthRequest(http.MethodGet, "/v1/daily-stats/"+ds.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("retrieve deleted stat code = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func Test_dailyStatApi_bulkApprove(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateEmployee(t, empRepo, "Staff", "staff", "staff@test.tl", "", []string{employee.RoleStaffSales}, true)
	supervisor := testutil.CreateEmployee(t, empRepo, "Supervisor", "supervisor", "supervisor@test.tl", "", []string{employee.RoleSupervisor}, true)
	supervisorToken := getToken(t, supervisor)

	ds1 := testutil.CreateDailyStat(t, statSvc, staff.ID, dailystat.NewDailyStat{
		Date: time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC),
	})
	ds2 := testutil.CreateDailyStat(t, statSvc, staff.ID, dailystat.NewDailyStat{
		Date: time.Date(2021, time.March, 16, 0, 0, 0, 0, time.UTC),
	})
	rejected := testutil.CreateDailyStat(t, statSvc, staff.ID, dailystat.NewDailyStat{
		Date: time.Date(2021, time.March, 17, 0, 0, 0, 0, time.UTC),
	})
	if _, err := statSvc.Reject(context.Background(), rejected.ID, supervisor.ID, "nope"); err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}

	body := marchallObj(t, BulkApproveRequest{IDs: []string{ds1.ID, "missing", rejected.ID, ds2.ID}, Notes: "batch"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/daily-stats/bulk-approve", supervisorToken, body)
	app.ServeHTTP(rec, req)

	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, BulkApproveResponse{Approved: 2})}
	checkCodeAndData(t, tt, rec)

	// the summary reflects the batch
	req, rec = newAuthRequest(http.MethodGet, "/v1/daily-stats/review/summary?month=3&year=2021", supervisorToken)
	app.ServeHTTP(rec, req)
	tt = httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, dailystat.ReviewSummary{Total: 3, Approved: 2, Rejected: 1})}
	checkCodeAndData(t, tt, rec)
}
