package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/taleemhub/backoffice/apps/api/echo"
	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/attendance"
	"github.com/taleemhub/backoffice/core/course"
	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/core/enrollment"
	"github.com/taleemhub/backoffice/core/target"
	"github.com/taleemhub/backoffice/services/email"
	"github.com/taleemhub/backoffice/services/logger"
	"github.com/taleemhub/backoffice/storage/database/inmem"
)

var (
	empRepo employee.Repository
	statSvc *dailystat.Service
	tgtSvc  *target.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func setup(t *testing.T) Server {
	t.Helper()
	core.Conf.TestMode = true
	emailsvc.ClearSentMessages()

	// set up repos
	db := inmem.NewDB()
	empRepo = inmem.NewEmployeeRepository(db)
	crsRepo := inmem.NewCourseRepository(db)
	enrRepo := inmem.NewEnrollmentRepository(db)
	statRepo := inmem.NewDailyStatRepository(db)
	tgtRepo := inmem.NewTargetRepository(db)
	attRepo := inmem.NewAttendanceRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	empSvc := employee.NewService(empRepo, mailSvc)
	crsSvc := course.NewService(crsRepo, enrRepo)
	enrSvc := enrollment.NewService(enrRepo)
	tgtSvc = target.NewService(nil, tgtRepo, statRepo, empRepo, mailSvc)
	statSvc = dailystat.NewService(nil, statRepo, enrRepo, tgtSvc)
	attSvc := attendance.NewService(attRepo)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", 0), core.Conf)
	logger.Enable(false)

	// set up server
	return NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			EmployeeSvc:    empSvc,
			CourseSvc:      crsSvc,
			EnrollmentSvc:  enrSvc,
			DailyStatSvc:   statSvc,
			TargetSvc:      tgtSvc,
			AttendanceSvc:  attSvc,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, emp employee.Employee) string {
	claims := GetEmployeeClaims(emp)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decodeBody(): %v; body = %s", err, rec.Body.String())
	}
}
