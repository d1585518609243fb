package target

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
)

var (
	// errors
	ErrNotFound      = errors.New("target not found")
	ErrAlertNotFound = errors.New("alert not found")
)

type (
	Repository interface {
		CreateTarget(ctx context.Context, t EmployeeTarget, exec ...core.DBExecutor) (EmployeeTarget, error)
		QueryTargets(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]EmployeeTarget, error)
		GetTarget(ctx context.Context, id string, exec ...core.DBExecutor) (EmployeeTarget, error)
		UpdateTarget(ctx context.Context, t EmployeeTarget, exec ...core.DBExecutor) (EmployeeTarget, error)
		DeleteTargetsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)

		CreateAlert(ctx context.Context, alert Alert, exec ...core.DBExecutor) (Alert, error)
		QueryAlerts(ctx context.Context, filter *AlertQueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Alert, error)
		AlertExists(ctx context.Context, targetID string, typ AlertType, exec ...core.DBExecutor) (bool, error)
		MarkAlertsRead(ctx context.Context, employeeID string, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		statRepo dailystat.Repository
		empRepo  employee.Repository
		mailSvc  core.EmailService
	}
)

func NewService(db core.DB, repo Repository, statRepo dailystat.Repository, empRepo employee.Repository, mailSvc core.EmailService) *Service {
	return &Service{db: db, repo: repo, statRepo: statRepo, empRepo: empRepo, mailSvc: mailSvc}
}

func (svc *Service) Create(ctx context.Context, nt NewTarget) (EmployeeTarget, error) {
	if _, err := svc.empRepo.GetEmployee(ctx, employee.GetFilter{ID: nt.EmployeeID}); err != nil {
		return EmployeeTarget{}, err
	}

	now := time.Now().UTC()
	t := EmployeeTarget{
		EmployeeID:  nt.EmployeeID,
		Type:        nt.Type,
		Period:      nt.Period,
		Month:       nt.Month,
		Year:        nt.Year,
		TargetValue: nt.TargetValue,
		BaseValue:   nt.BaseValue,
		Status:      StatusInProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := core.Atomic(ctx, svc.db, func(exec ...core.DBExecutor) error {
		var err error
		if t, err = svc.repo.CreateTarget(ctx, t, exec...); err != nil {
			return err
		}
		// derive the current value right away
		return errors.Wrap(svc.Recalculate(ctx, t.EmployeeID, exec...), "recalculating targets")
	})
	if err != nil {
		return EmployeeTarget{}, err
	}
	return svc.repo.GetTarget(ctx, t.ID)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]EmployeeTarget, error) {
	return svc.repo.QueryTargets(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (EmployeeTarget, error) {
	return svc.repo.GetTarget(ctx, id)
}

// Update adjusts the quota and/or the admin-seeded floor, then recomputes.
func (svc *Service) Update(ctx context.Context, id string, ut UpdateTarget) (EmployeeTarget, error) {
	t, err := svc.repo.GetTarget(ctx, id)
	if err != nil {
		return EmployeeTarget{}, err
	}
	if ut.TargetValue != nil {
		t.TargetValue = *ut.TargetValue
	}
	if ut.BaseValue != nil {
		t.BaseValue = *ut.BaseValue
	}
	t.UpdatedAt = time.Now().UTC()

	err = core.Atomic(ctx, svc.db, func(exec ...core.DBExecutor) error {
		if _, err := svc.repo.UpdateTarget(ctx, t, exec...); err != nil {
			return err
		}
		return errors.Wrap(svc.Recalculate(ctx, t.EmployeeID, exec...), "recalculating targets")
	})
	if err != nil {
		return EmployeeTarget{}, err
	}
	return svc.repo.GetTarget(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteTargetsByID(ctx, ids)
	return err
}

// Recalculate recomputes every target of the employee from scratch:
// currentValue = baseValue + sum of the mapped field over approved stats in
// the target's window. Pending and rejected stats never contribute. The pass
// is idempotent; it re-sums the full window rather than applying deltas.
// The exec override lets the triggering mutation's transaction carry the
// recomputation and any new alerts.
func (svc *Service) Recalculate(ctx context.Context, employeeID string, exec ...core.DBExecutor) error {
	targets, err := svc.repo.QueryTargets(ctx, &QueryFilter{EmployeeID: employeeID}, nil, exec...)
	if err != nil {
		return errors.Wrap(err, "querying targets")
	}

	for _, t := range targets {
		sum, err := svc.approvedSum(ctx, t, exec...)
		if err != nil {
			return err
		}
		t.CurrentValue = t.BaseValue + sum
		if t.TargetValue > 0 && t.CurrentValue >= t.TargetValue {
			t.Status = StatusAchieved
		} else {
			t.Status = StatusInProgress
		}
		t.UpdatedAt = time.Now().UTC()
		if _, err = svc.repo.UpdateTarget(ctx, t, exec...); err != nil {
			return errors.Wrap(err, "updating target")
		}
		if err = svc.checkAndCreateAlerts(ctx, t, exec...); err != nil {
			return err
		}
	}
	return nil
}

// approvedSum sums the target type's mapped field over the employee's
// approved stats inside the target window.
func (svc *Service) approvedSum(ctx context.Context, t EmployeeTarget, exec ...core.DBExecutor) (float64, error) {
	from, to := t.Window()
	stats, err := svc.statRepo.QueryDailyStats(ctx, &dailystat.QueryFilter{
		EmployeeID: t.EmployeeID,
		Status:     dailystat.StatusApproved,
		DateFrom:   from,
		DateTo:     to,
	}, nil, exec...)
	if err != nil {
		return 0, errors.Wrap(err, "querying approved stats")
	}
	var sum float64
	for _, ds := range stats {
		sum += t.Type.StatValue(ds)
	}
	return sum, nil
}

// checkAndCreateAlerts fires the 80% and 100% threshold alerts for a target,
// each at most once for the target's lifetime.
func (svc *Service) checkAndCreateAlerts(ctx context.Context, t EmployeeTarget, exec ...core.DBExecutor) error {
	pct := t.Percentage()
	thresholds := []struct {
		typ   AlertType
		value float64
	}{
		{AlertReached80, 80},
		{AlertReached100, 100},
	}
	for _, th := range thresholds {
		if pct < th.value {
			continue
		}
		exists, err := svc.repo.AlertExists(ctx, t.ID, th.typ, exec...)
		if err != nil {
			return errors.Wrap(err, "checking existing alert")
		}
		if exists {
			continue
		}
		alert := Alert{
			EmployeeID: t.EmployeeID,
			TargetID:   t.ID,
			AlertType:  th.typ,
			Percentage: pct,
			Message:    fmt.Sprintf("Your %s target for %d has reached %.0f%% (%.0f of %.0f)", t.Type, t.Year, th.value, t.CurrentValue, t.TargetValue),
			CreatedAt:  time.Now().UTC(),
		}
		if alert, err = svc.repo.CreateAlert(ctx, alert, exec...); err != nil {
			return errors.Wrap(err, "creating alert")
		}
		svc.notify(ctx, t, alert)
	}
	return nil
}

// notify emails the threshold crossing to the employee; best effort.
func (svc *Service) notify(ctx context.Context, t EmployeeTarget, alert Alert) {
	if svc.mailSvc == nil {
		return
	}
	emp, err := svc.empRepo.GetEmployee(ctx, employee.GetFilter{ID: t.EmployeeID})
	if err != nil || emp.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: emp.Name, Address: emp.Email}},
		Subject: "Target progress",
		BodyStr: alert.Message,
	})
}

func (svc *Service) Alerts(ctx context.Context, filter *AlertQueryFilter, ordering []core.DBOrdering) ([]Alert, error) {
	return svc.repo.QueryAlerts(ctx, filter, ordering)
}

func (svc *Service) MarkAlertsRead(ctx context.Context, employeeID string, ids ...string) (int, error) {
	return svc.repo.MarkAlertsRead(ctx, employeeID, ids)
}

// CloseOutExpired marks in-progress targets whose window has fully elapsed as
// not achieved. Meant to be run periodically (admin CLI).
func (svc *Service) CloseOutExpired(ctx context.Context, now time.Time) (int, error) {
	targets, err := svc.repo.QueryTargets(ctx, &QueryFilter{Status: StatusInProgress}, nil)
	if err != nil {
		return 0, errors.Wrap(err, "querying targets")
	}
	var count int
	for _, t := range targets {
		if _, to := t.Window(); !now.Before(to) {
			t.Status = StatusNotAchieved
			t.UpdatedAt = time.Now().UTC()
			if _, err = svc.repo.UpdateTarget(ctx, t); err != nil {
				return count, errors.Wrap(err, "updating target")
			}
			count++
		}
	}
	return count, nil
}
