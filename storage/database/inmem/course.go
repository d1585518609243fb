package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(
	_ context.Context, crs course.Course, _ ...core.DBExecutor,
) (course.Course, error) {
	if crs.ID == "" {
		crs.ID = uuid.New().String()
	}
	for i := range crs.FeeTiers {
		if crs.FeeTiers[i].ID == "" {
			crs.FeeTiers[i].ID = uuid.New().String()
		}
		crs.FeeTiers[i].CourseID = crs.ID
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.courses[crs.ID] = crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(
	_ context.Context, filter *course.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor,
) ([]course.Course, error) {
	repo.db.mu.RLock()
	crss := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if filter != nil {
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(crs.Name), search) &&
					!strings.Contains(strings.ToLower(crs.Description), search) {
					continue
				}
			}
			if filter.Category != "" && crs.Category != filter.Category {
				continue
			}
			if filter.IsActive != nil && crs.Active() != *filter.IsActive {
				continue
			}
		}
		crss = append(crss, crs)
	}
	repo.db.mu.RUnlock()

	sort.Slice(crss, func(i, j int) bool {
		a, b := crss[i], crss[j]
		for _, ord := range ordering {
			switch ord.Field {
			case "name":
				if a.Name != b.Name {
					return (a.Name < b.Name) == ord.Ascending
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
	return crss, nil
}

func (repo *courseRepository) GetCourse(
	_ context.Context, id string, _ ...core.DBExecutor,
) (course.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if crs, ok := repo.db.courses[id]; ok {
		return crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) UpdateCourse(
	_ context.Context, crs course.Course, _ ...core.DBExecutor,
) (course.Course, error) {
	for i := range crs.FeeTiers {
		if crs.FeeTiers[i].ID == "" {
			crs.FeeTiers[i].ID = uuid.New().String()
		}
		crs.FeeTiers[i].CourseID = crs.ID
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.courses[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.courses[crs.ID] = crs
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(
	_ context.Context, ids []string, _ ...core.DBExecutor,
) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	var n int
	for _, id := range ids {
		if _, ok := repo.db.courses[id]; ok {
			delete(repo.db.courses, id)
			n++
		}
	}
	return n, nil
}
