package attendance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core"
)

var ErrNotFound = errors.New("attendance record not found")

var (
	attStatusTag  = "attstatus"
	attStatusText = "invalid attendance status"
)

func init() {
	_ = core.Validate.RegisterValidation(attStatusTag, func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(attStatusTag, attStatusText)
}

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Record, error)
		GetRecord(ctx context.Context, id string, exec ...core.DBExecutor) (Record, error)
		UpdateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		DeleteRecordsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nr NewRecord) (Record, error) {
	now := time.Now().UTC()
	rec := Record{
		EmployeeID: nr.EmployeeID,
		Date:       nr.Date,
		CheckIn:    nr.CheckIn,
		CheckOut:   nr.CheckOut,
		Status:     nr.Status,
		Notes:      nr.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateRecord(ctx, rec)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetRecord(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ur UpdateRecord) (Record, error) {
	rec, err := svc.repo.GetRecord(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if ur.CheckIn.Valid {
		rec.CheckIn = ur.CheckIn
	}
	if ur.CheckOut.Valid {
		rec.CheckOut = ur.CheckOut
	}
	if ur.Status != "" {
		rec.Status = ur.Status
	}
	if ur.Notes != nil {
		rec.Notes = core.CleanString(*ur.Notes)
	}
	rec.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRecord(ctx, rec)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteRecordsByID(ctx, ids)
	return err
}

// Summary counts the employee's records per status for the given month.
func (svc *Service) Summary(ctx context.Context, employeeID string, month, year int) (MonthlySummary, error) {
	records, err := svc.repo.QueryRecords(ctx, &QueryFilter{EmployeeID: employeeID, Month: month, Year: year}, nil)
	if err != nil {
		return MonthlySummary{}, err
	}
	summary := MonthlySummary{EmployeeID: employeeID, Month: month, Year: year}
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			summary.Present++
		case StatusAbsent:
			summary.Absent++
		case StatusLate:
			summary.Late++
		case StatusLeave:
			summary.Leave++
		}
	}
	return summary, nil
}
