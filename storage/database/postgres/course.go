package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/course"
)

var courseColumns = []string{
	"id", "name", "description", "category", "price", "is_active", "created_at", "updated_at",
}

type courseRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Price       float64   `db:"price"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   null.Time `db:"updated_at"`
}

func (row courseRow) course() course.Course {
	crs := course.Course{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Category:    row.Category,
		Price:       row.Price,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt.Time,
	}
	crs.SetActive(row.IsActive)
	return crs
}

type feeTierRow struct {
	ID           string  `db:"id"`
	CourseID     string  `db:"course_id"`
	Label        string  `db:"label"`
	Amount       float64 `db:"amount"`
	TraineeCount int     `db:"trainee_count"`
}

type courseRepository struct {
	repository
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db core.DB) course.Repository {
	return &courseRepository{repository{db: db}}
}

func (repo *courseRepository) CreateCourse(
	ctx context.Context, crs course.Course, exec ...core.DBExecutor,
) (course.Course, error) {
	if crs.ID == "" {
		crs.ID = uuid.New().String()
	}
	q := psql.Insert("course").Columns(courseColumns...).Values(
		crs.ID, crs.Name, crs.Description, crs.Category, crs.Price, crs.Active(),
		crs.CreatedAt, null.TimeFrom(crs.UpdatedAt),
	)
	if _, err := execQuery(ctx, repo.getExec(exec), q); err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	if err := repo.replaceFeeTiers(ctx, &crs, exec...); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

// replaceFeeTiers rewrites the course's pricing tiers to match crs.FeeTiers.
func (repo *courseRepository) replaceFeeTiers(ctx context.Context, crs *course.Course, exec ...core.DBExecutor) error {
	q := psql.Delete("course_fee_tier").Where(sq.Eq{"course_id": crs.ID})
	if _, err := execQuery(ctx, repo.getExec(exec), q); err != nil {
		return errors.Wrap(err, "clearing fee tiers")
	}
	if len(crs.FeeTiers) == 0 {
		return nil
	}

	ins := psql.Insert("course_fee_tier").Columns("id", "course_id", "label", "amount", "trainee_count")
	for i := range crs.FeeTiers {
		tier := &crs.FeeTiers[i]
		if tier.ID == "" {
			tier.ID = uuid.New().String()
		}
		tier.CourseID = crs.ID
		ins = ins.Values(tier.ID, tier.CourseID, tier.Label, tier.Amount, tier.TraineeCount)
	}
	if _, err := execQuery(ctx, repo.getExec(exec), ins); err != nil {
		return errors.Wrap(err, "creating fee tiers")
	}
	return nil
}

func (repo *courseRepository) queryFeeTiers(
	ctx context.Context, courseIDs []string, exec ...core.DBExecutor,
) (map[string][]course.FeeTier, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	q := psql.Select("id", "course_id", "label", "amount", "trainee_count").
		From("course_fee_tier").
		Where(sq.Eq{"course_id": courseIDs}).
		OrderBy("label ASC")

	var rows []feeTierRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return nil, errors.Wrap(err, "querying fee tiers")
	}
	tiers := make(map[string][]course.FeeTier, len(courseIDs))
	for _, row := range rows {
		tiers[row.CourseID] = append(tiers[row.CourseID], course.FeeTier(row))
	}
	return tiers, nil
}

func (repo *courseRepository) QueryCourses(
	ctx context.Context, filter *course.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor,
) ([]course.Course, error) {
	q := psql.Select(courseColumns...).From("course")
	if filter != nil {
		if filter.Search != "" {
			pat := "%" + filter.Search + "%"
			q = q.Where(sq.Or{sq.ILike{"name": pat}, sq.ILike{"description": pat}})
		}
		if filter.Category != "" {
			q = q.Where(sq.Eq{"category": filter.Category})
		}
		if filter.IsActive != nil {
			q = q.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}
	q = orderBy(q, ordering)

	var rows []courseRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	tiers, err := repo.queryFeeTiers(ctx, ids, exec...)
	if err != nil {
		return nil, err
	}

	crss := make([]course.Course, len(rows))
	for i, row := range rows {
		crss[i] = row.course()
		crss[i].FeeTiers = tiers[row.ID]
	}
	return crss, nil
}

func (repo *courseRepository) GetCourse(
	ctx context.Context, id string, exec ...core.DBExecutor,
) (course.Course, error) {
	q := psql.Select(courseColumns...).From("course").Where(sq.Eq{"id": id})

	var rows []courseRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	if len(rows) == 0 {
		return course.Course{}, course.ErrNotFound
	}

	crs := rows[0].course()
	tiers, err := repo.queryFeeTiers(ctx, []string{crs.ID}, exec...)
	if err != nil {
		return course.Course{}, err
	}
	crs.FeeTiers = tiers[crs.ID]
	return crs, nil
}

func (repo *courseRepository) UpdateCourse(
	ctx context.Context, crs course.Course, exec ...core.DBExecutor,
) (course.Course, error) {
	q := psql.Update("course").
		Set("name", crs.Name).
		Set("description", crs.Description).
		Set("category", crs.Category).
		Set("price", crs.Price).
		Set("is_active", crs.Active()).
		Set("updated_at", null.TimeFrom(crs.UpdatedAt)).
		Where(sq.Eq{"id": crs.ID})
	n, err := execQuery(ctx, repo.getExec(exec), q)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	if err := repo.replaceFeeTiers(ctx, &crs, exec...); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(
	ctx context.Context, ids []string, exec ...core.DBExecutor,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := execQuery(ctx, repo.getExec(exec), psql.Delete("course").Where(sq.Eq{"id": ids}))
	return n, errors.Wrap(err, "deleting courses")
}
