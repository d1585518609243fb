package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/enrollment"
)

var ErrNotFound = errors.New("course not found")

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Course, error)
		GetCourse(ctx context.Context, id string, exec ...core.DBExecutor) (Course, error)
		UpdateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		repo    Repository
		enrRepo enrollment.Repository
	}
)

func NewService(repo Repository, enrRepo enrollment.Repository) *Service {
	return &Service{repo: repo, enrRepo: enrRepo}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Name:        nc.Name,
		Description: nc.Description,
		Category:    nc.Category,
		Price:       nc.Price,
		FeeTiers:    nc.FeeTiers,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	crs.SetActive(true)
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if uc.Name != "" {
		crs.Name = uc.Name
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.Category != "" {
		crs.Category = uc.Category
	}
	if uc.Price != nil {
		crs.Price = *uc.Price
	}
	if uc.IsActive != nil {
		crs.IsActive = uc.IsActive
	}
	if uc.FeeTiers != nil {
		crs.FeeTiers = uc.FeeTiers
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteCoursesByID(ctx, ids)
	return err
}

// Stats sums the enrollment lines attributed to the course.
func (svc *Service) Stats(ctx context.Context, id string) (Stats, error) {
	if _, err := svc.repo.GetCourse(ctx, id); err != nil {
		return Stats{}, err
	}
	lines, err := svc.enrRepo.QueryEnrollments(ctx, &enrollment.QueryFilter{CourseID: id}, nil)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying enrollments")
	}
	stats := Stats{CourseID: id}
	for _, line := range lines {
		stats.EnrollmentCount++
		stats.TotalTrainees += line.TraineeCount
		stats.TotalRevenue += line.Amount
		stats.TotalPaid += line.PaidAmount
	}
	return stats, nil
}
