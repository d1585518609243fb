package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/employee"
)

var employeeColumns = []string{
	"id", "name", "username", "email", "phone", "is_active", "roles", "permissions",
	"password_hash", "created_at", "updated_at", "last_login",
}

type employeeRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	Phone        string         `db:"phone"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	Permissions  pq.StringArray `db:"permissions"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (row employeeRow) employee() employee.Employee {
	emp := employee.Employee{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		Phone:        row.Phone,
		Roles:        row.Roles,
		Permissions:  row.Permissions,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
	emp.SetActive(row.IsActive)
	return emp
}

func employeeValues(emp employee.Employee) []interface{} {
	return []interface{}{
		emp.ID, emp.Name, emp.Username, emp.Email, emp.Phone, emp.Active(),
		pq.StringArray(emp.Roles), pq.StringArray(emp.Permissions), emp.PasswordHash,
		emp.CreatedAt, null.TimeFrom(emp.UpdatedAt), null.NewTime(emp.LastLogin, !emp.LastLogin.IsZero()),
	}
}

type employeeRepository struct {
	repository
}

var _ employee.Repository = (*employeeRepository)(nil)

func NewEmployeeRepository(db core.DB) employee.Repository {
	return &employeeRepository{repository{db: db}}
}

func (repo *employeeRepository) CheckUsernameUniqueness(
	ctx context.Context, username, email string, excluded []employee.Employee, exec ...core.DBExecutor,
) error {
	var or sq.Or
	if username != "" {
		or = append(or, sq.Eq{"username": username})
	}
	if email != "" {
		or = append(or, sq.Eq{"email": email})
	}
	if len(or) == 0 {
		return nil
	}

	q := psql.Select("username", "email").From("employee").Where(or)
	if len(excluded) > 0 {
		ids := make([]string, len(excluded))
		for i, emp := range excluded {
			ids[i] = emp.ID
		}
		q = q.Where(sq.NotEq{"id": ids})
	}

	var rows []struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return err
	}
	for _, row := range rows {
		if username != "" && row.Username == username {
			return employee.ErrUsernameExists
		}
		if email != "" && row.Email == email {
			return employee.ErrEmailExists
		}
	}
	return nil
}

func (repo *employeeRepository) CreateEmployee(
	ctx context.Context, emp employee.Employee, exec ...core.DBExecutor,
) (employee.Employee, error) {
	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}
	q := psql.Insert("employee").Columns(employeeColumns...).Values(employeeValues(emp)...)
	if _, err := execQuery(ctx, repo.getExec(exec), q); err != nil {
		return employee.Employee{}, errors.Wrap(err, "creating employee")
	}
	return emp, nil
}

func (repo *employeeRepository) QueryEmployees(
	ctx context.Context, filter *employee.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor,
) ([]employee.Employee, error) {
	q := psql.Select(employeeColumns...).From("employee")
	if filter != nil {
		if filter.Search != "" {
			pat := "%" + filter.Search + "%"
			q = q.Where(sq.Or{
				sq.ILike{"name": pat},
				sq.ILike{"username": pat},
				sq.ILike{"email": pat},
			})
		}
		if len(filter.Roles) > 0 {
			q = q.Where(sq.Expr("roles && ?", pq.StringArray(filter.Roles)))
		}
		if filter.IsActive != nil {
			q = q.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"created_at": filter.CreatedFrom})
		}
		if !filter.CreatedTo.IsZero() {
			q = q.Where(sq.Lt{"created_at": filter.CreatedTo})
		}
	}
	q = orderBy(q, ordering)

	var rows []employeeRow
	if err := selectAll(ctx, repo.getExec(exec), q, &rows); err != nil {
		return nil, errors.Wrap(err, "querying employees")
	}
	emps := make([]employee.Employee, len(rows))
	for i, row := range rows {
		emps[i] = row.employee()
	}
	return emps, nil
}

func (repo *employeeRepository) GetEmployee(
	ctx context.Context, filter employee.GetFilter, exec ...core.DBExecutor,
) (employee.Employee, error) {
	q := psql.Select(employeeColumns...).From("employee")
	switch {
	case filter.ID != "":
		q = q.Where(sq.Eq{"id": filter.ID})
	case filter.Username != "":
		q = q.Where(sq.Eq{"username": filter.Username})
	case filter.Email != "":
		q = q.Where(sq.Eq{"email": filter.Email})
	case len(filter.UsernameOrEmail) == 2:
		q = q.Where(sq.Or{
			sq.Eq{"username": filter.UsernameOrEmail[0]},
			sq.Eq{"email": filter.UsernameOrEmail[1]},
		})
	default:
		return employee.Employee{}, employee.ErrNotFound
	}

	var rows []employeeRow
	if err := selectAll(ctx, repo.getExec(exec), q.Limit(1), &rows); err != nil {
		return employee.Employee{}, errors.Wrap(err, "getting employee")
	}
	if len(rows) == 0 {
		return employee.Employee{}, employee.ErrNotFound
	}
	return rows[0].employee(), nil
}

func (repo *employeeRepository) UpdateEmployee(
	ctx context.Context, emp employee.Employee, exec ...core.DBExecutor,
) (employee.Employee, error) {
	vals := employeeValues(emp)
	q := psql.Update("employee").Where(sq.Eq{"id": emp.ID})
	for i, col := range employeeColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		q = q.Set(col, vals[i])
	}
	n, err := execQuery(ctx, repo.getExec(exec), q)
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "updating employee")
	}
	if n == 0 {
		return employee.Employee{}, employee.ErrNotFound
	}
	return emp, nil
}

func (repo *employeeRepository) UpdateOrCreateEmployee(
	ctx context.Context, emp employee.Employee, exec ...core.DBExecutor,
) (employee.Employee, error) {
	if emp.ID == "" {
		return repo.CreateEmployee(ctx, emp, exec...)
	}
	updated, err := repo.UpdateEmployee(ctx, emp, exec...)
	if errors.Cause(err) == employee.ErrNotFound {
		return repo.CreateEmployee(ctx, emp, exec...)
	}
	return updated, err
}

func (repo *employeeRepository) DeleteEmployeesByID(
	ctx context.Context, ids []string, exec ...core.DBExecutor,
) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := execQuery(ctx, repo.getExec(exec), psql.Delete("employee").Where(sq.Eq{"id": ids}))
	return n, errors.Wrap(err, "deleting employees")
}
