package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core"
)

var ErrNotFound = errors.New("enrollment not found")

type (
	Repository interface {
		CreateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		QueryEnrollments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Enrollment, error)
		GetEnrollment(ctx context.Context, id string, exec ...core.DBExecutor) (Enrollment, error)
		// GetEnrollmentByDailyStat finds the line whose back-reference is the given daily stat.
		GetEnrollmentByDailyStat(ctx context.Context, statID string, exec ...core.DBExecutor) (Enrollment, error)
		// DeleteEnrollmentByDailyStat deletes exactly the line whose back-reference is the
		// given daily stat; deleting a non-existent line is not an error.
		DeleteEnrollmentByDailyStat(ctx context.Context, statID string, exec ...core.DBExecutor) error
		DeleteEnrollmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	now := time.Now().UTC()
	date := ne.EnrollmentDate
	if date.IsZero() {
		date = now
	}
	enr := Enrollment{
		CourseID:       ne.CourseID,
		Amount:         ne.Amount,
		TraineeCount:   ne.TraineeCount,
		PaidAmount:     ne.PaidAmount,
		EnrollmentDate: date,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteEnrollmentsByID(ctx, ids)
	return err
}
