package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core/attendance"
	"github.com/taleemhub/backoffice/storage/database/inmem"
)

func setup(t *testing.T) *attendance.Service {
	t.Helper()
	db := inmem.NewDB()
	return attendance.NewService(inmem.NewAttendanceRepository(db))
}

func TestService_Summary(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2021, time.March, d, 0, 0, 0, 0, time.UTC) }
	record := func(employeeID string, date time.Time, status attendance.Status) {
		_, err := svc.Create(ctx, attendance.NewRecord{
			EmployeeID: employeeID,
			Date:       date,
			CheckIn:    null.TimeFrom(date.Add(8 * time.Hour)),
			Status:     status,
		})
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	record("emp1", day(1), attendance.StatusPresent)
	record("emp1", day(2), attendance.StatusPresent)
	record("emp1", day(3), attendance.StatusLate)
	record("emp1", day(4), attendance.StatusAbsent)
	record("emp1", day(5), attendance.StatusLeave)
	record("emp2", day(1), attendance.StatusPresent)
	// out of scope: another month
	record("emp1", time.Date(2021, time.April, 1, 0, 0, 0, 0, time.UTC), attendance.StatusPresent)

	summary, err := svc.Summary(ctx, "emp1", 3, 2021)
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	want := attendance.MonthlySummary{EmployeeID: "emp1", Month: 3, Year: 2021, Present: 2, Absent: 1, Late: 1, Leave: 1}
	if summary != want {
		t.Errorf("Summary() = %+v, want %+v", summary, want)
	}
}

func TestService_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	date := time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)
	rec, err := svc.Create(ctx, attendance.NewRecord{
		EmployeeID: "emp1",
		Date:       date,
		CheckIn:    null.TimeFrom(date.Add(8 * time.Hour)),
		Status:     attendance.StatusPresent,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	checkOut := null.TimeFrom(date.Add(17 * time.Hour))
	notes := "left early last week"
	rec, err = svc.Update(ctx, rec.ID, attendance.UpdateRecord{
		CheckOut: checkOut,
		Status:   attendance.StatusLate,
		Notes:    &notes,
	})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if !rec.CheckOut.Valid || !rec.CheckOut.Time.Equal(checkOut.Time) {
		t.Errorf("Update() checkOut = %v, want %v", rec.CheckOut, checkOut)
	}
	if rec.Status != attendance.StatusLate {
		t.Errorf("Update() status = %v, want %v", rec.Status, attendance.StatusLate)
	}
	if rec.Notes != notes {
		t.Errorf("Update() notes = %q, want %q", rec.Notes, notes)
	}
}
