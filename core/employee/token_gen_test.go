package employee

import (
	"testing"
	"time"

	"github.com/taleemhub/backoffice/core"
)

func TestMakeVerifyToken(t *testing.T) {
	core.Conf.SecretKey = "secret"
	core.Conf.PasswordResetTimeoutDelta = 3 * 24 * time.Hour

	now := time.Now()
	emp := Employee{
		ID:        "0b5b3417-9e78-4dbb-a8a2-384ed8d8be34",
		Name:      "T",
		Username:  "t",
		Email:     "t@test.test",
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	emp.SetActive(true)
	_ = emp.SetPassword("pwd")

	validToken, err := MakeToken(emp)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}

	// generate an expired token
	dayLate := core.Conf.PasswordResetTimeoutDelta + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, err := MakeToken(emp)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	NowFunc = time.Now // reset

	tests := []struct {
		name    string
		emp     Employee
		token   string
		wantErr error
	}{
		{name: "no token", emp: emp, wantErr: errInvalidToken},
		{name: "invalid parts len", emp: emp, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", emp: emp, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", emp: emp, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", emp: emp, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "expired token", emp: emp, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", emp: emp, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := verifyToken(tt.emp, tt.token); err != tt.wantErr {
				t.Errorf("verifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
