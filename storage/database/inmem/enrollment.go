package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(
	_ context.Context, enr enrollment.Enrollment, _ ...core.DBExecutor,
) (enrollment.Enrollment, error) {
	if enr.ID == "" {
		enr.ID = uuid.New().String()
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.enrollments[enr.ID] = enr
	return enr, nil
}

func (repo *enrollmentRepository) QueryEnrollments(
	_ context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor,
) ([]enrollment.Enrollment, error) {
	repo.db.mu.RLock()
	enrs := make([]enrollment.Enrollment, 0, len(repo.db.enrollments))
	for _, enr := range repo.db.enrollments {
		if filter != nil {
			if filter.CourseID != "" && enr.CourseID != filter.CourseID {
				continue
			}
			if !filter.DateFrom.IsZero() && enr.EnrollmentDate.Before(filter.DateFrom) {
				continue
			}
			if !filter.DateTo.IsZero() && !enr.EnrollmentDate.Before(filter.DateTo) {
				continue
			}
		}
		enrs = append(enrs, enr)
	}
	repo.db.mu.RUnlock()

	sort.Slice(enrs, func(i, j int) bool {
		a, b := enrs[i], enrs[j]
		for _, ord := range ordering {
			switch ord.Field {
			case "enrollment_date":
				if !a.EnrollmentDate.Equal(b.EnrollmentDate) {
					return a.EnrollmentDate.Before(b.EnrollmentDate) == ord.Ascending
				}
			case "created_at":
				if !a.CreatedAt.Equal(b.CreatedAt) {
					return a.CreatedAt.Before(b.CreatedAt) == ord.Ascending
				}
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return enrs, nil
}

func (repo *enrollmentRepository) GetEnrollment(
	_ context.Context, id string, _ ...core.DBExecutor,
) (enrollment.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if enr, ok := repo.db.enrollments[id]; ok {
		return enr, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) GetEnrollmentByDailyStat(
	_ context.Context, statID string, _ ...core.DBExecutor,
) (enrollment.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, enr := range repo.db.enrollments {
		if enr.DailyStatID.Valid && enr.DailyStatID.String == statID {
			return enr, nil
		}
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) DeleteEnrollmentByDailyStat(
	_ context.Context, statID string, _ ...core.DBExecutor,
) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for id, enr := range repo.db.enrollments {
		if enr.DailyStatID.Valid && enr.DailyStatID.String == statID {
			delete(repo.db.enrollments, id)
		}
	}
	return nil
}

func (repo *enrollmentRepository) DeleteEnrollmentsByID(
	_ context.Context, ids []string, _ ...core.DBExecutor,
) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	var n int
	for _, id := range ids {
		if _, ok := repo.db.enrollments[id]; ok {
			delete(repo.db.enrollments, id)
			n++
		}
	}
	return n, nil
}
