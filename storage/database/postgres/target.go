package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/target"
)

var targetColumns = []string{
	"id", "employee_id", "target_type", "period", "month", "year",
	"target_value", "base_value", "current_value", "status", "created_at", "updated_at",
}

type targetRow struct {
	ID         string `db:"id"`
	EmployeeID string `db:"employee_id"`
	Type       string `db:"target_type"`
	Period     string `db:"period"`
	Month      int    `db:"month"`
	Year       int    `db:"year"`

	TargetValue  float64 `db:"target_value"`
	BaseValue    float64 `db:"base_value"`
	CurrentValue float64 `db:"current_value"`
	Status       string  `db:"status"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (row targetRow) target() target.EmployeeTarget {
	return target.EmployeeTarget{
		ID:           row.ID,
		EmployeeID:   row.EmployeeID,
		Type:         target.Type(row.Type),
		Period:       target.Period(row.Period),
		Month:        row.Month,
		Year:         row.Year,
		TargetValue:  row.TargetValue,
		BaseValue:    row.BaseValue,
		CurrentValue: row.CurrentValue,
		Status:       target.Status(row.Status),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

var alertColumns = []string{
	"id", "employee_id", "target_id", "alert_type", "percentage", "message", "is_read", "created_at",
}

type alertRow struct {
	ID         string    `db:"id"`
	EmployeeID string    `db:"employee_id"`
	TargetID   string    `db:"target_id"`
	AlertType  string    `db:"alert_type"`
	Percentage float64   `db:"percentage"`
	Message    string    `db:"message"`
	IsRead     bool      `db:"is_read"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row alertRow) alert() target.Alert {
	return target.Alert{
		ID:         row.ID,
		EmployeeID: row.EmployeeID,
		TargetID:   row.TargetID,
		AlertType:  target.AlertType(row.AlertType),
		Percentage: row.Percentage,
		Message:    row.Message,
		IsRead:     row.IsRead,
		CreatedAt:  row.CreatedAt,
	}
}

type targetRepository struct {
	repository
}

var _ target.Repository = (*targetRepository)(nil)

func NewTargetRepository(db core.DB) target.Repository {
	return &targetRepository{repository{db: db}}
}

func (repo *targetRepository) CreateTarget(
	ctx context.Context, t target.EmployeeTarget, exec ...core.DBExecutor,
) (target.EmployeeTarget, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	q := psql.Insert("employee_target").Columns(targetColumns...).Values(
		t.ID, t.EmployeeID, string(t.Type), string(t.Period), t.Month, t.Year,
		t.TargetValue, t.BaseValue, t.CurrentValue, string(t.Status),
		t.CreatedAt, null.TimeFrom(t.UpdatedAt),
	)
	if _, err := execQuery(ctx, repo.getExec(exec), q); err != nil {
		return target.EmployeeTarget{}, errors.Wrap(err, "creating target")
	}
	return t, nil
}

func (repo *targetRepository) QueryTargets(
	ctx context.Context, filter *target.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor,
) ([]target.EmployeeTarget, error) {
	q := psql.Select(targetColumns...).From("employee_target")
	if filter != nil {
		if filter.EmployeeID != "" {
			q = q.Where(sq.Eq{"employee_id": filter.EmployeeID})
		}
		if filter.Type != "" {
			q = q.Where(sq.Eq{"target_type": string(filter.Type)})
		}
		if filter.Period != "" {
			q = q.Where(sq.Eq{"period": string(filter.Period)})
		}
		if filter.Month != 0 {
			q = q.Where(sq.Eq{"month": filter.Month})
		}
		if filter.Year != 0 {
			q = q.Where(sq.Eq{"year": filter.Year})
		}
		if filter.Status != "" {
			q = q.Where(sq.Eq{"status": string(filter.Status)})
		}
	}
	q = orderBy(q, ordering)

	var rows []targetRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return nil, errors.Wrap(err, "querying targets")
	}
	targets := make([]target.EmployeeTarget, len(rows))
	for i, row := range rows {
		targets[i] = row.target()
	}
	return targets, nil
}

func (repo *targetRepository) GetTarget(
	ctx context.Context, id string, exec ...core.DBExecutor,
) (target.EmployeeTarget, error) {
	q := psql.Select(targetColumns...).From("employee_target").Where(sq.Eq{"id": id})

	var rows []targetRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return target.EmployeeTarget{}, errors.Wrap(err, "getting target")
	}
	if len(rows) == 0 {
		return target.EmployeeTarget{}, target.ErrNotFound
	}
	return rows[0].target(), nil
}

func (repo *targetRepository) UpdateTarget(
	ctx context.Context, t target.EmployeeTarget, exec ...core.DBExecutor,
) (target.EmployeeTarget, error) {
	q := psql.Update("employee_target").
		Set("target_value", t.TargetValue).
		Set("base_value", t.BaseValue).
		Set("current_value", t.CurrentValue).
		Set("status", string(t.Status)).
		Set("updated_at", null.TimeFrom(t.UpdatedAt)).
		Where(sq.Eq{"id": t.ID})
	n, err := execQuery(ctx, repo.getExec(exec), q)
	if err != nil {
		return target.EmployeeTarget{}, errors.Wrap(err, "updating target")
	}
	if n == 0 {
		return target.EmployeeTarget{}, target.ErrNotFound
	}
	return t, nil
}

func (repo *targetRepository) DeleteTargetsByID(
	ctx context.Context, ids []string, exec ...core.DBExecutor,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := execQuery(ctx, repo.getExec(exec), psql.Delete("employee_target").Where(sq.Eq{"id": ids}))
	return n, errors.Wrap(err, "deleting targets")
}

func (repo *targetRepository) CreateAlert(
	ctx context.Context, alert target.Alert, exec ...core.DBExecutor,
) (target.Alert, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	q := psql.Insert("target_alert").Columns(alertColumns...).Values(
		alert.ID, alert.EmployeeID, alert.TargetID, string(alert.AlertType),
		alert.Percentage, alert.Message, alert.IsRead, alert.CreatedAt,
	)
	if _, err := execQuery(ctx, repo.getExec(exec), q); err != nil {
		return target.Alert{}, errors.Wrap(err, "creating alert")
	}
	return alert, nil
}

func (repo *targetRepository) QueryAlerts(
	ctx context.Context, filter *target.AlertQueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor,
) ([]target.Alert, error) {
	q := psql.Select(alertColumns...).From("target_alert")
	if filter != nil {
		if filter.EmployeeID != "" {
			q = q.Where(sq.Eq{"employee_id": filter.EmployeeID})
		}
		if filter.TargetID != "" {
			q = q.Where(sq.Eq{"target_id": filter.TargetID})
		}
		if filter.AlertType != "" {
			q = q.Where(sq.Eq{"alert_type": string(filter.AlertType)})
		}
		if filter.IsRead != nil {
			q = q.Where(sq.Eq{"is_read": *filter.IsRead})
		}
	}
	q = orderBy(q, ordering)

	var rows []alertRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return nil, errors.Wrap(err, "querying alerts")
	}
	alerts := make([]target.Alert, len(rows))
	for i, row := range rows {
		alerts[i] = row.alert()
	}
	return alerts, nil
}

func (repo *targetRepository) AlertExists(
	ctx context.Context, targetID string, typ target.AlertType, exec ...core.DBExecutor,
) (bool, error) {
	q := psql.Select("1").From("target_alert").
		Where(sq.Eq{"target_id": targetID, "alert_type": string(typ)}).
		Limit(1)

	query, args, err := q.ToSql()
	if err != nil {
		return false, errors.Wrap(err, "building query")
	}
	rows, err := repo.getExec(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return false, errors.Wrap(err, "checking alert")
	}
	defer func() { _ = rows.Close() }()
	exists := rows.Next()
	return exists, errors.Wrap(rows.Err(), "checking alert")
}

func (repo *targetRepository) MarkAlertsRead(
	ctx context.Context, employeeID string, ids []string, exec ...core.DBExecutor,
) (int, error) {
	q := psql.Update("target_alert").
		Set("is_read", true).
		Where(sq.Eq{"employee_id": employeeID, "is_read": false})
	if len(ids) > 0 {
		q = q.Where(sq.Eq{"id": ids})
	}
	n, err := execQuery(ctx, repo.getExec(exec), q)
	return n, errors.Wrap(err, "marking alerts read")
}
