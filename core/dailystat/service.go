package dailystat

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/enrollment"
)

var (
	// errors
	ErrNotFound = errors.New("daily stat not found")

	errNotesRequired = errors.New("review notes are required to reject a stat")
)

type (
	Repository interface {
		CreateDailyStat(ctx context.Context, ds DailyStat, exec ...core.DBExecutor) (DailyStat, error)
		QueryDailyStats(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]DailyStat, error)
		GetDailyStat(ctx context.Context, id string, exec ...core.DBExecutor) (DailyStat, error)
		UpdateDailyStat(ctx context.Context, ds DailyStat, exec ...core.DBExecutor) (DailyStat, error)
		DeleteDailyStatsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		CountByStatus(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) (ReviewSummary, error)
	}

	// Recalculator recomputes all derived target values of an employee.
	// Every mutation of a DailyStat goes through it, joining the mutation's
	// transaction via the exec override.
	Recalculator interface {
		Recalculate(ctx context.Context, employeeID string, exec ...core.DBExecutor) error
	}

	Service struct {
		db      core.DB
		repo    Repository
		enrRepo enrollment.Repository
		recalc  Recalculator
	}
)

func NewService(db core.DB, repo Repository, enrRepo enrollment.Repository, recalc Recalculator) *Service {
	return &Service{db: db, repo: repo, enrRepo: enrRepo, recalc: recalc}
}

// Submit creates a pending DailyStat owned by the given employee.
func (svc *Service) Submit(ctx context.Context, employeeID string, ns NewDailyStat) (DailyStat, error) {
	now := time.Now().UTC()
	ds := DailyStat{
		EmployeeID:          employeeID,
		Date:                ns.Date,
		CourseFee:           ns.CourseFee,
		FeeBreakdown:        ns.Breakdown,
		ConfirmedCustomers:  ns.ConfirmedCustomers,
		RegisteredCustomers: ns.RegisteredCustomers,
		TargetedCustomers:   ns.TargetedCustomers,
		ServicesSold:        ns.ServicesSold,
		SalesAmount:         ns.SalesAmount,
		Notes:               ns.Notes,
		Status:              StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if ns.CourseID != "" {
		ds.CourseID = null.StringFrom(ns.CourseID)
	}
	ds.ComputeRevenue()

	err := core.Atomic(ctx, svc.db, func(exec ...core.DBExecutor) error {
		var err error
		if ds, err = svc.repo.CreateDailyStat(ctx, ds, exec...); err != nil {
			return err
		}
		return errors.Wrap(svc.recalc.Recalculate(ctx, ds.EmployeeID, exec...), "recalculating targets")
	})
	if err != nil {
		return DailyStat{}, err
	}
	return ds, nil
}

// Update applies the submitter's edit. Approved stats are immutable to the
// submitter; editing a rejected stat resubmits it as pending.
func (svc *Service) Update(ctx context.Context, id string, us UpdateDailyStat) (DailyStat, error) {
	ds, err := svc.repo.GetDailyStat(ctx, id)
	if err != nil {
		return DailyStat{}, err
	}
	if ds.Status == StatusApproved {
		return DailyStat{}, core.NewStateError("an approved stat cannot be edited")
	}

	if !us.Date.IsZero() {
		ds.Date = us.Date
	}
	if us.CourseID != nil {
		if cid := core.CleanString(*us.CourseID); cid != "" {
			ds.CourseID = null.StringFrom(cid)
		} else {
			ds.CourseID = null.String{}
		}
	}
	if us.CourseFee != nil {
		ds.CourseFee = *us.CourseFee
	}
	if us.Breakdown != nil {
		ds.FeeBreakdown = us.Breakdown
	}
	if us.ConfirmedCustomers != nil {
		ds.ConfirmedCustomers = *us.ConfirmedCustomers
	}
	if us.RegisteredCustomers != nil {
		ds.RegisteredCustomers = *us.RegisteredCustomers
	}
	if us.TargetedCustomers != nil {
		ds.TargetedCustomers = *us.TargetedCustomers
	}
	if us.ServicesSold != nil {
		ds.ServicesSold = *us.ServicesSold
	}
	if us.SalesAmount != nil {
		ds.SalesAmount = *us.SalesAmount
	}
	if us.Notes != nil {
		ds.Notes = core.CleanString(*us.Notes)
	}
	ds.ComputeRevenue()

	// a rejected stat goes back to review once edited
	if ds.Status == StatusRejected {
		ds.Status = StatusPending
		ds.clearReview()
	}
	ds.UpdatedAt = time.Now().UTC()

	err = core.Atomic(ctx, svc.db, func(exec ...core.DBExecutor) error {
		if ds, err = svc.repo.UpdateDailyStat(ctx, ds, exec...); err != nil {
			return err
		}
		return errors.Wrap(svc.recalc.Recalculate(ctx, ds.EmployeeID, exec...), "recalculating targets")
	})
	if err != nil {
		return DailyStat{}, err
	}
	return ds, nil
}

// Approve transitions a pending stat to approved, creates the linked
// enrollment line when the stat carries revenue, and recomputes the owner's
// targets. The status update, revenue line and recalculation commit as one
// transaction.
func (svc *Service) Approve(ctx context.Context, id, reviewerID, notes string) (DailyStat, error) {
	ds, err := svc.repo.GetDailyStat(ctx, id)
	if err != nil {
		return DailyStat{}, err
	}
	if ds.Status != StatusPending {
		return DailyStat{}, core.NewStateError(fmt.Sprintf("cannot approve a stat in %q state", ds.Status))
	}

	now := time.Now().UTC()
	ds.Status = StatusApproved
	ds.ReviewedBy = null.StringFrom(reviewerID)
	ds.ReviewedAt = null.TimeFrom(now)
	if notes = core.CleanString(notes); notes != "" {
		ds.ReviewNotes = null.StringFrom(notes)
	}
	ds.UpdatedAt = now

	err = core.Atomic(ctx, svc.db, func(exec ...core.DBExecutor) error {
		if ds, err = svc.repo.UpdateDailyStat(ctx, ds, exec...); err != nil {
			return err
		}
		if err = svc.recordRevenue(ctx, ds, exec...); err != nil {
			return err
		}
		return errors.Wrap(svc.recalc.Recalculate(ctx, ds.EmployeeID, exec...), "recalculating targets")
	})
	if err != nil {
		return DailyStat{}, err
	}
	return ds, nil
}

// recordRevenue creates the enrollment line attributed to the stat's approval,
// unless one already exists for this stat.
func (svc *Service) recordRevenue(ctx context.Context, ds DailyStat, exec ...core.DBExecutor) error {
	if !ds.HasRevenue() {
		return nil
	}
	if _, err := svc.enrRepo.GetEnrollmentByDailyStat(ctx, ds.ID, exec...); err == nil {
		return nil
	} else if errors.Cause(err) != enrollment.ErrNotFound {
		return errors.Wrap(err, "checking existing enrollment")
	}

	now := time.Now().UTC()
	enr := enrollment.Enrollment{
		CourseID:       ds.CourseID.String,
		Amount:         ds.CalculatedRevenue,
		TraineeCount:   ds.ConfirmedCustomers,
		EnrollmentDate: ds.Date,
		DailyStatID:    null.StringFrom(ds.ID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := svc.enrRepo.CreateEnrollment(ctx, enr, exec...); err != nil {
		return errors.Wrap(err, "creating enrollment")
	}
	return nil
}

// Reject transitions a pending stat to rejected. Review notes are mandatory.
func (svc *Service) Reject(ctx context.Context, id, reviewerID, notes string) (DailyStat, error) {
	if notes = core.CleanString(notes); notes == "" {
		return DailyStat{}, core.NewValidationError(
			errNotesRequired, core.FieldError{Field: "review_notes", Error: errNotesRequired.Error()})
	}

	ds, err := svc.repo.GetDailyStat(ctx, id)
	if err != nil {
		return DailyStat{}, err
	}
	if ds.Status != StatusPending {
		return DailyStat{}, core.NewStateError(fmt.Sprintf("cannot reject a stat in %q state", ds.Status))
	}

	now := time.Now().UTC()
	ds.Status = StatusRejected
	ds.ReviewedBy = null.StringFrom(reviewerID)
	ds.ReviewedAt = null.TimeFrom(now)
	ds.ReviewNotes = null.StringFrom(notes)
	ds.UpdatedAt = now

	err = core.Atomic(ctx, svc.db, func(exec ...core.DBExecutor) error {
		if ds, err = svc.repo.UpdateDailyStat(ctx, ds, exec...); err != nil {
			return err
		}
		return errors.Wrap(svc.recalc.Recalculate(ctx, ds.EmployeeID, exec...), "recalculating targets")
	})
	if err != nil {
		return DailyStat{}, err
	}
	return ds, nil
}

// BulkApprove approves every listed stat that is currently pending; ids that
// are missing or not pending are skipped. Returns the number of stats approved.
func (svc *Service) BulkApprove(ctx context.Context, ids []string, reviewerID, notes string) (int, error) {
	var count int
	for _, id := range ids {
		if _, err := svc.Approve(ctx, id, reviewerID, notes); err != nil {
			cause := errors.Cause(err)
			if cause == ErrNotFound {
				continue
			}
			if _, ok := cause.(*core.StateError); ok {
				continue
			}
			return count, err
		}
		count++
	}
	return count, nil
}

// Unapprove reverses an approval: the stat goes back to pending, the
// enrollment line created at approval time is removed, and the owner's
// targets are recomputed without this stat's values. Reviewer notes are
// accepted for parity with Approve but discarded; review fields always reset
// on unapproval. The whole reversal commits as one transaction.
func (svc *Service) Unapprove(ctx context.Context, id, reviewerID, notes string) (DailyStat, error) {
	ds, err := svc.repo.GetDailyStat(ctx, id)
	if err != nil {
		return DailyStat{}, err
	}
	if ds.Status != StatusApproved {
		return DailyStat{}, core.NewStateError(fmt.Sprintf("cannot unapprove a stat in %q state", ds.Status))
	}

	ds.Status = StatusPending
	ds.clearReview()
	ds.UpdatedAt = time.Now().UTC()

	err = core.Atomic(ctx, svc.db, func(exec ...core.DBExecutor) error {
		if err := svc.enrRepo.DeleteEnrollmentByDailyStat(ctx, ds.ID, exec...); err != nil {
			return errors.Wrap(err, "deleting linked enrollment")
		}
		if ds, err = svc.repo.UpdateDailyStat(ctx, ds, exec...); err != nil {
			return err
		}
		return errors.Wrap(svc.recalc.Recalculate(ctx, ds.EmployeeID, exec...), "recalculating targets")
	})
	if err != nil {
		return DailyStat{}, err
	}
	return ds, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]DailyStat, error) {
	return svc.repo.QueryDailyStats(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (DailyStat, error) {
	return svc.repo.GetDailyStat(ctx, id)
}

// ListForReview returns stats for the reviewer dashboard.
func (svc *Service) ListForReview(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]DailyStat, error) {
	if ordering == nil {
		ordering = []core.DBOrdering{{Field: "date", Ascending: false}}
	}
	return svc.repo.QueryDailyStats(ctx, filter, ordering)
}

// ReviewStats returns the aggregate per-state counts for the given scope.
func (svc *Service) ReviewStats(ctx context.Context, month, year int) (ReviewSummary, error) {
	return svc.repo.CountByStatus(ctx, &QueryFilter{Month: month, Year: year})
}

// Delete removes stats and recomputes the targets of every affected employee,
// all within one transaction.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return core.Atomic(ctx, svc.db, func(exec ...core.DBExecutor) error {
		owners := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			ds, err := svc.repo.GetDailyStat(ctx, id, exec...)
			if err != nil {
				if errors.Cause(err) == ErrNotFound {
					continue
				}
				return err
			}
			if ds.Status == StatusApproved {
				if err := svc.enrRepo.DeleteEnrollmentByDailyStat(ctx, ds.ID, exec...); err != nil {
					return errors.Wrap(err, "deleting linked enrollment")
				}
			}
			owners[ds.EmployeeID] = struct{}{}
		}
		if _, err := svc.repo.DeleteDailyStatsByID(ctx, ids, exec...); err != nil {
			return err
		}
		for employeeID := range owners {
			if err := svc.recalc.Recalculate(ctx, employeeID, exec...); err != nil {
				return errors.Wrap(err, "recalculating targets")
			}
		}
		return nil
	})
}
