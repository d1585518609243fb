package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/enrollment"
)

var enrollmentColumns = []string{
	"id", "course_id", "amount", "trainee_count", "paid_amount", "enrollment_date",
	"daily_stat_id", "created_at", "updated_at",
}

type enrollmentRow struct {
	ID             string      `db:"id"`
	CourseID       string      `db:"course_id"`
	Amount         float64     `db:"amount"`
	TraineeCount   int         `db:"trainee_count"`
	PaidAmount     float64     `db:"paid_amount"`
	EnrollmentDate time.Time   `db:"enrollment_date"`
	DailyStatID    null.String `db:"daily_stat_id"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      null.Time   `db:"updated_at"`
}

func (row enrollmentRow) enrollment() enrollment.Enrollment {
	return enrollment.Enrollment{
		ID:             row.ID,
		CourseID:       row.CourseID,
		Amount:         row.Amount,
		TraineeCount:   row.TraineeCount,
		PaidAmount:     row.PaidAmount,
		EnrollmentDate: row.EnrollmentDate,
		DailyStatID:    row.DailyStatID,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

type enrollmentRepository struct {
	repository
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db core.DB) enrollment.Repository {
	return &enrollmentRepository{repository{db: db}}
}

func (repo *enrollmentRepository) CreateEnrollment(
	ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor,
) (enrollment.Enrollment, error) {
	if enr.ID == "" {
		enr.ID = uuid.New().String()
	}
	q := psql.Insert("enrollment").Columns(enrollmentColumns...).Values(
		enr.ID, enr.CourseID, enr.Amount, enr.TraineeCount, enr.PaidAmount,
		enr.EnrollmentDate, enr.DailyStatID, enr.CreatedAt, null.TimeFrom(enr.UpdatedAt),
	)
	if _, err := execQuery(ctx, repo.getExec(exec), q); err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

func (repo *enrollmentRepository) QueryEnrollments(
	ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor,
) ([]enrollment.Enrollment, error) {
	q := psql.Select(enrollmentColumns...).From("enrollment")
	if filter != nil {
		if filter.CourseID != "" {
			q = q.Where(sq.Eq{"course_id": filter.CourseID})
		}
		if !filter.DateFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"enrollment_date": filter.DateFrom})
		}
		if !filter.DateTo.IsZero() {
			q = q.Where(sq.Lt{"enrollment_date": filter.DateTo})
		}
	}
	q = orderBy(q, ordering)

	var rows []enrollmentRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enrollment.Enrollment, len(rows))
	for i, row := range rows {
		enrs[i] = row.enrollment()
	}
	return enrs, nil
}

func (repo *enrollmentRepository) getOne(
	ctx context.Context, where sq.Eq, exec ...core.DBExecutor,
) (enrollment.Enrollment, error) {
	q := psql.Select(enrollmentColumns...).From("enrollment").Where(where).Limit(1)

	var rows []enrollmentRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	if len(rows) == 0 {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	return rows[0].enrollment(), nil
}

func (repo *enrollmentRepository) GetEnrollment(
	ctx context.Context, id string, exec ...core.DBExecutor,
) (enrollment.Enrollment, error) {
	return repo.getOne(ctx, sq.Eq{"id": id}, exec...)
}

func (repo *enrollmentRepository) GetEnrollmentByDailyStat(
	ctx context.Context, statID string, exec ...core.DBExecutor,
) (enrollment.Enrollment, error) {
	return repo.getOne(ctx, sq.Eq{"daily_stat_id": statID}, exec...)
}

func (repo *enrollmentRepository) DeleteEnrollmentByDailyStat(
	ctx context.Context, statID string, exec ...core.DBExecutor,
) error {
	q := psql.Delete("enrollment").Where(sq.Eq{"daily_stat_id": statID})
	_, err := execQuery(ctx, repo.getExec(exec), q)
	return errors.Wrap(err, "deleting enrollment by daily stat")
}

func (repo *enrollmentRepository) DeleteEnrollmentsByID(
	ctx context.Context, ids []string, exec ...core.DBExecutor,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := execQuery(ctx, repo.getExec(exec), psql.Delete("enrollment").Where(sq.Eq{"id": ids}))
	return n, errors.Wrap(err, "deleting enrollments")
}
