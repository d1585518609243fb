package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/dailystat"
)

var dailyStatColumns = []string{
	"id", "employee_id", "date", "course_id", "course_fee",
	"confirmed_customers", "registered_customers", "targeted_customers", "services_sold", "sales_amount",
	"fee_breakdown", "calculated_revenue", "notes", "status",
	"reviewed_by", "reviewed_at", "review_notes", "created_at", "updated_at",
}

type dailyStatRow struct {
	ID         string      `db:"id"`
	EmployeeID string      `db:"employee_id"`
	Date       time.Time   `db:"date"`
	CourseID   null.String `db:"course_id"`
	CourseFee  float64     `db:"course_fee"`

	ConfirmedCustomers  int     `db:"confirmed_customers"`
	RegisteredCustomers int     `db:"registered_customers"`
	TargetedCustomers   int     `db:"targeted_customers"`
	ServicesSold        int     `db:"services_sold"`
	SalesAmount         float64 `db:"sales_amount"`

	FeeBreakdown      dailystat.FeeBreakdown `db:"fee_breakdown"`
	CalculatedRevenue float64                `db:"calculated_revenue"`

	Notes       string      `db:"notes"`
	Status      string      `db:"status"`
	ReviewedBy  null.String `db:"reviewed_by"`
	ReviewedAt  null.Time   `db:"reviewed_at"`
	ReviewNotes null.String `db:"review_notes"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (row dailyStatRow) dailyStat() dailystat.DailyStat {
	return dailystat.DailyStat{
		ID:                  row.ID,
		EmployeeID:          row.EmployeeID,
		Date:                row.Date,
		CourseID:            row.CourseID,
		CourseFee:           row.CourseFee,
		ConfirmedCustomers:  row.ConfirmedCustomers,
		RegisteredCustomers: row.RegisteredCustomers,
		TargetedCustomers:   row.TargetedCustomers,
		ServicesSold:        row.ServicesSold,
		SalesAmount:         row.SalesAmount,
		FeeBreakdown:        row.FeeBreakdown,
		CalculatedRevenue:   row.CalculatedRevenue,
		Notes:               row.Notes,
		Status:              dailystat.Status(row.Status),
		ReviewedBy:          row.ReviewedBy,
		ReviewedAt:          row.ReviewedAt,
		ReviewNotes:         row.ReviewNotes,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt.Time,
	}
}

func dailyStatValues(ds dailystat.DailyStat) []interface{} {
	return []interface{}{
		ds.ID, ds.EmployeeID, ds.Date, ds.CourseID, ds.CourseFee,
		ds.ConfirmedCustomers, ds.RegisteredCustomers, ds.TargetedCustomers, ds.ServicesSold, ds.SalesAmount,
		ds.FeeBreakdown, ds.CalculatedRevenue, ds.Notes, string(ds.Status),
		ds.ReviewedBy, ds.ReviewedAt, ds.ReviewNotes, ds.CreatedAt, null.TimeFrom(ds.UpdatedAt),
	}
}

func dailyStatConditions(filter *dailystat.QueryFilter) []sq.Sqlizer {
	if filter == nil {
		return nil
	}
	var conds []sq.Sqlizer
	if filter.EmployeeID != "" {
		conds = append(conds, sq.Eq{"employee_id": filter.EmployeeID})
	}
	if filter.Status != "" {
		conds = append(conds, sq.Eq{"status": string(filter.Status)})
	}
	if filter.CourseID != "" {
		conds = append(conds, sq.Eq{"course_id": filter.CourseID})
	}
	from, to := filter.Window()
	if from.IsZero() {
		from, to = filter.DateFrom, filter.DateTo
	}
	if !from.IsZero() {
		conds = append(conds, sq.GtOrEq{"date": from})
	}
	if !to.IsZero() {
		conds = append(conds, sq.Lt{"date": to})
	}
	return conds
}

type dailyStatRepository struct {
	repository
}

var _ dailystat.Repository = (*dailyStatRepository)(nil)

func NewDailyStatRepository(db core.DB) dailystat.Repository {
	return &dailyStatRepository{repository{db: db}}
}

func (repo *dailyStatRepository) CreateDailyStat(
	ctx context.Context, ds dailystat.DailyStat, exec ...core.DBExecutor,
) (dailystat.DailyStat, error) {
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}
	q := psql.Insert("daily_stat").Columns(dailyStatColumns...).Values(dailyStatValues(ds)...)
	if _, err := execQuery(ctx, repo.getExec(exec), q); err != nil {
		return dailystat.DailyStat{}, errors.Wrap(err, "creating daily stat")
	}
	return ds, nil
}

func (repo *dailyStatRepository) QueryDailyStats(
	ctx context.Context, filter *dailystat.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor,
) ([]dailystat.DailyStat, error) {
	q := psql.Select(dailyStatColumns...).From("daily_stat")
	for _, cond := range dailyStatConditions(filter) {
		q = q.Where(cond)
	}
	q = orderBy(q, ordering)

	var rows []dailyStatRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return nil, errors.Wrap(err, "querying daily stats")
	}
	stats := make([]dailystat.DailyStat, len(rows))
	for i, row := range rows {
		stats[i] = row.dailyStat()
	}
	return stats, nil
}

func (repo *dailyStatRepository) GetDailyStat(
	ctx context.Context, id string, exec ...core.DBExecutor,
) (dailystat.DailyStat, error) {
	q := psql.Select(dailyStatColumns...).From("daily_stat").Where(sq.Eq{"id": id})

	var rows []dailyStatRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return dailystat.DailyStat{}, errors.Wrap(err, "getting daily stat")
	}
	if len(rows) == 0 {
		return dailystat.DailyStat{}, dailystat.ErrNotFound
	}
	return rows[0].dailyStat(), nil
}

func (repo *dailyStatRepository) UpdateDailyStat(
	ctx context.Context, ds dailystat.DailyStat, exec ...core.DBExecutor,
) (dailystat.DailyStat, error) {
	vals := dailyStatValues(ds)
	q := psql.Update("daily_stat").Where(sq.Eq{"id": ds.ID})
	for i, col := range dailyStatColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		q = q.Set(col, vals[i])
	}
	n, err := execQuery(ctx, repo.getExec(exec), q)
	if err != nil {
		return dailystat.DailyStat{}, errors.Wrap(err, "updating daily stat")
	}
	if n == 0 {
		return dailystat.DailyStat{}, dailystat.ErrNotFound
	}
	return ds, nil
}

func (repo *dailyStatRepository) DeleteDailyStatsByID(
	ctx context.Context, ids []string, exec ...core.DBExecutor,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := execQuery(ctx, repo.getExec(exec), psql.Delete("daily_stat").Where(sq.Eq{"id": ids}))
	return n, errors.Wrap(err, "deleting daily stats")
}

func (repo *dailyStatRepository) CountByStatus(
	ctx context.Context, filter *dailystat.QueryFilter, exec ...core.DBExecutor,
) (dailystat.ReviewSummary, error) {
	q := psql.Select("status", "COUNT(*) AS count").From("daily_stat").GroupBy("status")
	for _, cond := range dailyStatConditions(filter) {
		q = q.Where(cond)
	}

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return dailystat.ReviewSummary{}, errors.Wrap(err, "counting daily stats")
	}

	var summary dailystat.ReviewSummary
	for _, row := range rows {
		summary.Total += row.Count
		switch dailystat.Status(row.Status) {
		case dailystat.StatusPending:
			summary.Pending = row.Count
		case dailystat.StatusApproved:
			summary.Approved = row.Count
		case dailystat.StatusRejected:
			summary.Rejected = row.Count
		}
	}
	return summary, nil
}
