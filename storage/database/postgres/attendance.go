package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/attendance"
)

var attendanceColumns = []string{
	"id", "employee_id", "date", "check_in", "check_out", "status", "notes", "created_at", "updated_at",
}

type attendanceRow struct {
	ID         string    `db:"id"`
	EmployeeID string    `db:"employee_id"`
	Date       time.Time `db:"date"`
	CheckIn    null.Time `db:"check_in"`
	CheckOut   null.Time `db:"check_out"`
	Status     string    `db:"status"`
	Notes      string    `db:"notes"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  null.Time `db:"updated_at"`
}

func (row attendanceRow) record() attendance.Record {
	return attendance.Record{
		ID:         row.ID,
		EmployeeID: row.EmployeeID,
		Date:       row.Date,
		CheckIn:    row.CheckIn,
		CheckOut:   row.CheckOut,
		Status:     attendance.Status(row.Status),
		Notes:      row.Notes,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

type attendanceRepository struct {
	repository
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db core.DB) attendance.Repository {
	return &attendanceRepository{repository{db: db}}
}

func (repo *attendanceRepository) CreateRecord(
	ctx context.Context, rec attendance.Record, exec ...core.DBExecutor,
) (attendance.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	q := psql.Insert("attendance").Columns(attendanceColumns...).Values(
		rec.ID, rec.EmployeeID, rec.Date, rec.CheckIn, rec.CheckOut,
		string(rec.Status), rec.Notes, rec.CreatedAt, null.TimeFrom(rec.UpdatedAt),
	)
	if _, err := execQuery(ctx, repo.getExec(exec), q); err != nil {
		return attendance.Record{}, errors.Wrap(err, "creating attendance record")
	}
	return rec, nil
}

func (repo *attendanceRepository) QueryRecords(
	ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor,
) ([]attendance.Record, error) {
	q := psql.Select(attendanceColumns...).From("attendance")
	if filter != nil {
		if filter.EmployeeID != "" {
			q = q.Where(sq.Eq{"employee_id": filter.EmployeeID})
		}
		if filter.Status != "" {
			q = q.Where(sq.Eq{"status": string(filter.Status)})
		}
		if from, to := filter.Window(); !from.IsZero() {
			q = q.Where(sq.GtOrEq{"date": from}).Where(sq.Lt{"date": to})
		}
	}
	q = orderBy(q, ordering)

	var rows []attendanceRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	recs := make([]attendance.Record, len(rows))
	for i, row := range rows {
		recs[i] = row.record()
	}
	return recs, nil
}

func (repo *attendanceRepository) GetRecord(
	ctx context.Context, id string, exec ...core.DBExecutor,
) (attendance.Record, error) {
	q := psql.Select(attendanceColumns...).From("attendance").Where(sq.Eq{"id": id})

	var rows []attendanceRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return attendance.Record{}, errors.Wrap(err, "getting attendance record")
	}
	if len(rows) == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return rows[0].record(), nil
}

func (repo *attendanceRepository) UpdateRecord(
	ctx context.Context, rec attendance.Record, exec ...core.DBExecutor,
) (attendance.Record, error) {
	q := psql.Update("attendance").
		Set("date", rec.Date).
		Set("check_in", rec.CheckIn).
		Set("check_out", rec.CheckOut).
		Set("status", string(rec.Status)).
		Set("notes", rec.Notes).
		Set("updated_at", null.TimeFrom(rec.UpdatedAt)).
		Where(sq.Eq{"id": rec.ID})
	n, err := execQuery(ctx, repo.getExec(exec), q)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	if n == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return rec, nil
}

func (repo *attendanceRepository) DeleteRecordsByID(
	ctx context.Context, ids []string, exec ...core.DBExecutor,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := execQuery(ctx, repo.getExec(exec), psql.Delete("attendance").Where(sq.Eq{"id": ids}))
	return n, errors.Wrap(err, "deleting attendance records")
}
