package inmem

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/employee"
)

type employeeRepository struct {
	db *DB
}

var _ employee.Repository = (*employeeRepository)(nil)

func NewEmployeeRepository(db *DB) employee.Repository {
	return &employeeRepository{db: db}
}

func (repo *employeeRepository) CheckUsernameUniqueness(
	_ context.Context, username, email string, excluded []employee.Employee, _ ...core.DBExecutor,
) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	isExcluded := func(id string) bool {
		for _, emp := range excluded {
			if emp.ID == id {
				return true
			}
		}
		return false
	}
	for _, emp := range repo.db.employees {
		if isExcluded(emp.ID) {
			continue
		}
		if username != "" && emp.Username == username {
			return employee.ErrUsernameExists
		}
		if email != "" && emp.Email == email {
			return employee.ErrEmailExists
		}
	}
	return nil
}

func (repo *employeeRepository) CreateEmployee(
	_ context.Context, emp employee.Employee, _ ...core.DBExecutor,
) (employee.Employee, error) {
	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.employees[emp.ID] = emp
	return emp, nil
}

func matchEmployee(emp employee.Employee, filter *employee.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(emp.Name), search) &&
			!strings.Contains(strings.ToLower(emp.Username), search) &&
			!strings.Contains(strings.ToLower(emp.Email), search) {
			return false
		}
	}
	if len(filter.Roles) > 0 {
		var found bool
	roles:
		for _, role := range filter.Roles {
			for _, r := range emp.Roles {
				if r == role {
					found = true
					break roles
				}
			}
		}
		if !found {
			return false
		}
	}
	if filter.IsActive != nil && emp.Active() != *filter.IsActive {
		return false
	}
	if !filter.CreatedFrom.IsZero() && emp.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && !emp.CreatedAt.Before(filter.CreatedTo) {
		return false
	}
	return true
}

func (repo *employeeRepository) QueryEmployees(
	_ context.Context, filter *employee.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor,
) ([]employee.Employee, error) {
	repo.db.mu.RLock()
	emps := make([]employee.Employee, 0, len(repo.db.employees))
	for _, emp := range repo.db.employees {
		if matchEmployee(emp, filter) {
			emps = append(emps, emp)
		}
	}
	repo.db.mu.RUnlock()

	sort.Slice(emps, func(i, j int) bool {
		a, b := emps[i], emps[j]
		for _, ord := range ordering {
			switch ord.Field {
			case "name":
				if a.Name != b.Name {
					return (a.Name < b.Name) == ord.Ascending
				}
			case "username":
				if a.Username != b.Username {
					return (a.Username < b.Username) == ord.Ascending
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
	return emps, nil
}

func (repo *employeeRepository) GetEmployee(
	_ context.Context, filter employee.GetFilter, _ ...core.DBExecutor,
) (employee.Employee, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if emp, ok := repo.db.employees[filter.ID]; ok {
			return emp, nil
		}
		return employee.Employee{}, employee.ErrNotFound
	}
	for _, emp := range repo.db.employees {
		switch {
		case filter.Username != "":
			if emp.Username == filter.Username {
				return emp, nil
			}
		case filter.Email != "":
			if emp.Email == filter.Email {
				return emp, nil
			}
		case len(filter.UsernameOrEmail) == 2:
			if emp.Username == filter.UsernameOrEmail[0] || emp.Email == filter.UsernameOrEmail[1] {
				return emp, nil
			}
		}
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (repo *employeeRepository) UpdateEmployee(
	_ context.Context, emp employee.Employee, _ ...core.DBExecutor,
) (employee.Employee, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.employees[emp.ID]; !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	repo.db.employees[emp.ID] = emp
	return emp, nil
}

func (repo *employeeRepository) UpdateOrCreateEmployee(
	ctx context.Context, emp employee.Employee, exec ...core.DBExecutor,
) (employee.Employee, error) {
	if emp.ID == "" {
		return repo.CreateEmployee(ctx, emp, exec...)
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.employees[emp.ID] = emp
	return emp, nil
}

func (repo *employeeRepository) DeleteEmployeesByID(
	_ context.Context, ids []string, _ ...core.DBExecutor,
) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	var n int
	for _, id := range ids {
		if _, ok := repo.db.employees[id]; ok {
			delete(repo.db.employees, id)
			n++
		}
	}
	return n, nil
}
