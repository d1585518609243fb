package target_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/core/target"
	"github.com/taleemhub/backoffice/services/email"
	"github.com/taleemhub/backoffice/storage/database/inmem"
	"github.com/taleemhub/backoffice/tests"
)

func setup(t *testing.T) (*target.Service, *dailystat.Service, employee.Repository) {
	t.Helper()
	emailsvc.ClearSentMessages()

	db := inmem.NewDB()
	empRepo := inmem.NewEmployeeRepository(db)
	statRepo := inmem.NewDailyStatRepository(db)
	tgtRepo := inmem.NewTargetRepository(db)
	enrRepo := inmem.NewEnrollmentRepository(db)

	mailSvc := emailsvc.NewConsoleServiceMock()
	tgtSvc := target.NewService(nil, tgtRepo, statRepo, empRepo, mailSvc)
	statSvc := dailystat.NewService(nil, statRepo, enrRepo, tgtSvc)
	return tgtSvc, statSvc, empRepo
}

func marchStat(confirmed int, fee float64) dailystat.NewDailyStat {
	return dailystat.NewDailyStat{
		Date:               time.Date(2021, time.March, 10, 0, 0, 0, 0, time.UTC),
		CourseID:           "crs1",
		CourseFee:          fee,
		ConfirmedCustomers: confirmed,
	}
}

func marchTarget(employeeID string, typ target.Type, value, base float64) target.NewTarget {
	return target.NewTarget{
		EmployeeID:  employeeID,
		Type:        typ,
		Period:      target.PeriodMonthly,
		Month:       3,
		Year:        2021,
		TargetValue: value,
		BaseValue:   base,
	}
}

func TestService_Create(t *testing.T) {
	tgtSvc, _, empRepo := setup(t)
	ctx := context.Background()

	// the employee must exist
	if _, err := tgtSvc.Create(ctx, marchTarget("nope", target.TypeConfirmedCustomers, 30, 0)); errors.Cause(err) != employee.ErrNotFound {
		t.Errorf("Create() error = %v, want %v", err, employee.ErrNotFound)
	}

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "", nil, true)
	tgt, err := tgtSvc.Create(ctx, marchTarget(emp.ID, target.TypeConfirmedCustomers, 30, 5))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if tgt.Status != target.StatusInProgress {
		t.Errorf("Create() status = %v, want %v", tgt.Status, target.StatusInProgress)
	}
	// the derived value starts at the admin-seeded floor
	if tgt.CurrentValue != 5 {
		t.Errorf("Create() currentValue = %v, want 5", tgt.CurrentValue)
	}
}

func TestService_Recalculate(t *testing.T) {
	tgtSvc, statSvc, empRepo := setup(t)
	ctx := context.Background()

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "", nil, true)
	tgt := testutil.CreateTarget(t, tgtSvc, marchTarget(emp.ID, target.TypeConfirmedCustomers, 30, 0))

	// a pending stat contributes nothing
	ds, _ := statSvc.Submit(ctx, emp.ID, marchStat(18, 100))
	tgt, _ = tgtSvc.GetByID(ctx, tgt.ID)
	if tgt.CurrentValue != 0 {
		t.Errorf("pending stat counted: currentValue = %v, want 0", tgt.CurrentValue)
	}

	// approval promotes it: 18/30, in progress, no alert yet
	if _, err := statSvc.Approve(ctx, ds.ID, "rev1", ""); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	tgt, _ = tgtSvc.GetByID(ctx, tgt.ID)
	if tgt.CurrentValue != 18 {
		t.Errorf("currentValue = %v, want 18", tgt.CurrentValue)
	}
	if tgt.Status != target.StatusInProgress {
		t.Errorf("status = %v, want %v", tgt.Status, target.StatusInProgress)
	}
	alerts, _ := tgtSvc.Alerts(ctx, &target.AlertQueryFilter{TargetID: tgt.ID}, nil)
	if len(alerts) != 0 {
		t.Errorf("alerts = %d, want 0 at 60%%", len(alerts))
	}

	// a second approval crosses both thresholds at once
	ds2, _ := statSvc.Submit(ctx, emp.ID, marchStat(15, 100))
	if _, err := statSvc.Approve(ctx, ds2.ID, "rev1", ""); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	tgt, _ = tgtSvc.GetByID(ctx, tgt.ID)
	if tgt.CurrentValue != 33 {
		t.Errorf("currentValue = %v, want 33", tgt.CurrentValue)
	}
	if tgt.Status != target.StatusAchieved {
		t.Errorf("status = %v, want %v", tgt.Status, target.StatusAchieved)
	}
	if pct := tgt.Percentage(); pct != 100 {
		t.Errorf("Percentage() = %v, want capped at 100", pct)
	}
	alerts, _ = tgtSvc.Alerts(ctx, &target.AlertQueryFilter{TargetID: tgt.ID}, nil)
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d, want the 80%% and 100%% alerts", len(alerts))
	}

	// the pass is idempotent: a re-run creates no duplicates
	if err := tgtSvc.Recalculate(ctx, emp.ID); err != nil {
		t.Fatalf("Recalculate() failed: %v", err)
	}
	alerts, _ = tgtSvc.Alerts(ctx, &target.AlertQueryFilter{TargetID: tgt.ID}, nil)
	if len(alerts) != 2 {
		t.Errorf("alerts after re-run = %d, want 2", len(alerts))
	}

	// unapproval decrements; fired alerts are history and stay
	if _, err := statSvc.Unapprove(ctx, ds2.ID, "rev1", ""); err != nil {
		t.Fatalf("Unapprove() failed: %v", err)
	}
	tgt, _ = tgtSvc.GetByID(ctx, tgt.ID)
	if tgt.CurrentValue != 18 {
		t.Errorf("currentValue after unapprove = %v, want 18", tgt.CurrentValue)
	}
	if tgt.Status != target.StatusInProgress {
		t.Errorf("status after unapprove = %v, want %v", tgt.Status, target.StatusInProgress)
	}
	alerts, _ = tgtSvc.Alerts(ctx, &target.AlertQueryFilter{TargetID: tgt.ID}, nil)
	if len(alerts) != 2 {
		t.Errorf("alerts after unapprove = %d, want 2", len(alerts))
	}
}

func TestService_Recalculate_rejectedDoesNotCount(t *testing.T) {
	tgtSvc, statSvc, empRepo := setup(t)
	ctx := context.Background()

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "", nil, true)
	tgt := testutil.CreateTarget(t, tgtSvc, marchTarget(emp.ID, target.TypeConfirmedCustomers, 30, 0))

	ds, _ := statSvc.Submit(ctx, emp.ID, marchStat(18, 100))
	if _, err := statSvc.Reject(ctx, ds.ID, "rev1", "numbers off"); err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	tgt, _ = tgtSvc.GetByID(ctx, tgt.ID)
	if tgt.CurrentValue != 0 {
		t.Errorf("rejected stat counted: currentValue = %v, want 0", tgt.CurrentValue)
	}
}

func TestService_Recalculate_salesAmount(t *testing.T) {
	tgtSvc, statSvc, empRepo := setup(t)
	ctx := context.Background()

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "", nil, true)
	tgt := testutil.CreateTarget(t, tgtSvc, marchTarget(emp.ID, target.TypeSalesAmount, 1000, 0))

	// sales_amount progresses on the computed revenue, not the raw counter
	ns := marchStat(3, 100)
	ns.SalesAmount = 50
	ds, _ := statSvc.Submit(ctx, emp.ID, ns)
	if _, err := statSvc.Approve(ctx, ds.ID, "rev1", ""); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	tgt, _ = tgtSvc.GetByID(ctx, tgt.ID)
	if tgt.CurrentValue != 300 {
		t.Errorf("currentValue = %v, want 300", tgt.CurrentValue)
	}
}

func TestService_Recalculate_windowScoping(t *testing.T) {
	tgtSvc, statSvc, empRepo := setup(t)
	ctx := context.Background()

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "", nil, true)
	tgt := testutil.CreateTarget(t, tgtSvc, marchTarget(emp.ID, target.TypeConfirmedCustomers, 30, 0))

	// an approved stat outside the target's month is ignored
	ns := marchStat(10, 100)
	ns.Date = time.Date(2021, time.April, 1, 0, 0, 0, 0, time.UTC)
	ds, _ := statSvc.Submit(ctx, emp.ID, ns)
	if _, err := statSvc.Approve(ctx, ds.ID, "rev1", ""); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	tgt, _ = tgtSvc.GetByID(ctx, tgt.ID)
	if tgt.CurrentValue != 0 {
		t.Errorf("out-of-window stat counted: currentValue = %v, want 0", tgt.CurrentValue)
	}

	// a yearly target spans the whole year
	yearly := testutil.CreateTarget(t, tgtSvc, target.NewTarget{
		EmployeeID:  emp.ID,
		Type:        target.TypeConfirmedCustomers,
		Period:      target.PeriodYearly,
		Year:        2021,
		TargetValue: 100,
	})
	if yearly.CurrentValue != 10 {
		t.Errorf("yearly currentValue = %v, want 10", yearly.CurrentValue)
	}
}

func TestService_alertNotifications(t *testing.T) {
	tgtSvc, statSvc, empRepo := setup(t)
	ctx := context.Background()

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "", nil, true)
	testutil.CreateTarget(t, tgtSvc, marchTarget(emp.ID, target.TypeConfirmedCustomers, 10, 0))

	ds, _ := statSvc.Submit(ctx, emp.ID, marchStat(10, 100))
	if _, err := statSvc.Approve(ctx, ds.ID, "rev1", ""); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	// one email per threshold crossed
	if got := len(emailsvc.SentMessages); got != 2 {
		t.Errorf("sent emails = %d, want 2", got)
	}
	for _, msg := range emailsvc.SentMessages {
		if len(msg.To) != 1 || msg.To[0].Address != emp.Email {
			t.Errorf("email not addressed to the employee: %+v", msg.To)
		}
	}
}

func TestService_MarkAlertsRead(t *testing.T) {
	tgtSvc, statSvc, empRepo := setup(t)
	ctx := context.Background()

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "", nil, true)
	testutil.CreateTarget(t, tgtSvc, marchTarget(emp.ID, target.TypeConfirmedCustomers, 10, 0))

	ds, _ := statSvc.Submit(ctx, emp.ID, marchStat(10, 100))
	_, _ = statSvc.Approve(ctx, ds.ID, "rev1", "")

	marked, err := tgtSvc.MarkAlertsRead(ctx, emp.ID)
	if err != nil {
		t.Fatalf("MarkAlertsRead() failed: %v", err)
	}
	if marked != 2 {
		t.Errorf("MarkAlertsRead() = %d, want 2", marked)
	}

	isRead := true
	alerts, _ := tgtSvc.Alerts(ctx, &target.AlertQueryFilter{EmployeeID: emp.ID, IsRead: &isRead}, nil)
	if len(alerts) != 2 {
		t.Errorf("read alerts = %d, want 2", len(alerts))
	}

	// marking again touches nothing
	if marked, _ = tgtSvc.MarkAlertsRead(ctx, emp.ID); marked != 0 {
		t.Errorf("MarkAlertsRead() again = %d, want 0", marked)
	}
}

func TestService_Update(t *testing.T) {
	tgtSvc, statSvc, empRepo := setup(t)
	ctx := context.Background()

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "", nil, true)
	tgt := testutil.CreateTarget(t, tgtSvc, marchTarget(emp.ID, target.TypeConfirmedCustomers, 30, 0))

	ds, _ := statSvc.Submit(ctx, emp.ID, marchStat(18, 100))
	_, _ = statSvc.Approve(ctx, ds.ID, "rev1", "")

	// lowering the quota below the current value flips the status
	value := 15.0
	tgt, err := tgtSvc.Update(ctx, tgt.ID, target.UpdateTarget{TargetValue: &value})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if tgt.Status != target.StatusAchieved {
		t.Errorf("status = %v, want %v", tgt.Status, target.StatusAchieved)
	}

	// raising the floor feeds the derived value
	base := 10.0
	tgt, err = tgtSvc.Update(ctx, tgt.ID, target.UpdateTarget{BaseValue: &base})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if tgt.CurrentValue != 28 {
		t.Errorf("currentValue = %v, want 28", tgt.CurrentValue)
	}
}

func TestService_CloseOutExpired(t *testing.T) {
	tgtSvc, _, empRepo := setup(t)
	ctx := context.Background()

	emp := testutil.CreateEmployee(t, empRepo, "Awa", "awa", "awa@test.tl", "", nil, true)
	expired := testutil.CreateTarget(t, tgtSvc, marchTarget(emp.ID, target.TypeConfirmedCustomers, 30, 0))
	current := testutil.CreateTarget(t, tgtSvc, target.NewTarget{
		EmployeeID:  emp.ID,
		Type:        target.TypeServicesSold,
		Period:      target.PeriodMonthly,
		Month:       5,
		Year:        2021,
		TargetValue: 10,
	})

	now := time.Date(2021, time.May, 2, 0, 0, 0, 0, time.UTC)
	count, err := tgtSvc.CloseOutExpired(ctx, now)
	if err != nil {
		t.Fatalf("CloseOutExpired() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CloseOutExpired() = %d, want 1", count)
	}

	expired, _ = tgtSvc.GetByID(ctx, expired.ID)
	if expired.Status != target.StatusNotAchieved {
		t.Errorf("expired target status = %v, want %v", expired.Status, target.StatusNotAchieved)
	}
	current, _ = tgtSvc.GetByID(ctx, current.ID)
	if current.Status != target.StatusInProgress {
		t.Errorf("current target status = %v, want %v", current.Status, target.StatusInProgress)
	}
}
