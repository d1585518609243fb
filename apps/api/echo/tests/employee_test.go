package tests

import (
	"net/http"
	"testing"

	. "github.com/taleemhub/backoffice/apps/api/echo"
	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/tests"
)

func Test_employeeApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "s3cr3t", []string{employee.RoleStaffSales}, true)
	testutil.CreateEmployee(t, empRepo, "Gone", "gone", "gone@test.tl", "s3cr3t", nil, false)

	tests := []httpTest{
		{
			name: "empty credentials", body: marchallObj(t, LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown employee", body: marchallObj(t, LoginRequest{Username: "lol", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, LoginRequest{Username: "awa", Password: "lol"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, LoginRequest{Username: "gone", Password: "s3cr3t"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/employees/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// successful logins work with username or email
	for _, uname := range []string{"awa", "awa@test.tl"} {
		req, rec := newRequest(http.MethodPost, "/v1/employees/login", marchallObj(t, LoginRequest{Username: uname, Password: "s3cr3t"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("login code = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp LoginResponse
		decodeBody(t, rec, &resp)
		if resp.Token == "" {
			t.Error("login returned an empty token")
		}
	}
}

func Test_employeeApi_passwordReset(t *testing.T) {
	app := setup(t)

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "old", []string{employee.RoleStaffSales}, true)

	// the response never discloses whether the email exists
	for _, email := range []string{"awa@test.tl", "nobody@test.tl"} {
		req, rec := newRequest(http.MethodPost, "/v1/employees/password-reset", marchallObj(t, PasswordResetRequest{Email: email}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("password reset code = %d, want %d", rec.Code, http.StatusOK)
		}
	}

	token, err := employee.MakeToken(emp)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	body := marchallObj(t, employee.ResetEmployeePassword{
		UID:             employee.EncodeUID(emp),
		Token:           token,
		Password:        "n3w-s3cr3t",
		PasswordConfirm: "n3w-s3cr3t",
	})
	req, rec := newRequest(http.MethodPost, "/v1/employees/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password reset confirm code = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// the new password works, the old one does not
	req, rec = newRequest(http.MethodPost, "/v1/employees/login", marchallObj(t, LoginRequest{Username: "awa", Password: "old"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("login with old password code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	req, rec = newRequest(http.MethodPost, "/v1/employees/login", marchallObj(t, LoginRequest{Username: "awa", Password: "n3w-s3cr3t"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login with new password code = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// the token is single-use: the password hash changed with the reset
	req, rec = newRequest(http.MethodPost, "/v1/employees/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("token reuse code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func Test_employeeApi_accessControl(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateEmployee(t, empRepo, "Staff", "staff", "staff@test.tl", "", []string{employee.RoleStaffSales}, true)
	other := testutil.CreateEmployee(t, empRepo, "Other", "other", "other@test.tl", "", []string{employee.RoleStaffSales}, true)
	admin := testutil.CreateEmployee(t, empRepo, "Admin", "admin", "admin@test.tl", "", []string{employee.RoleAdmin}, true)
	staffToken := getToken(t, staff)
	adminToken := getToken(t, admin)

	forbidden := marchallObj(t, errForbidden)

	tests := []httpTest{
		{name: "listing requires auth", method: http.MethodGet, path: "/v1/employees", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "listing is admin-only", method: http.MethodGet, path: "/v1/employees", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "register is admin-only", method: http.MethodPost, path: "/v1/employees/register", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "roles listing is admin-only", method: http.MethodGet, path: "/v1/employees/roles", token: staffToken, wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "staff can read themselves", method: http.MethodGet, path: "/v1/employees/" + staff.ID, token: staffToken, wantCode: http.StatusOK, wantData: marchallObj(t, staff)},
		{name: "staff cannot read others", method: http.MethodGet, path: "/v1/employees/" + other.ID, token: staffToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
		{name: "admin can read anyone", method: http.MethodGet, path: "/v1/employees/" + other.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, other)},
		{name: "admin cannot delete themselves", method: http.MethodDelete, path: "/v1/employees/" + admin.ID, token: adminToken, wantCode: http.StatusForbidden, wantData: forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
