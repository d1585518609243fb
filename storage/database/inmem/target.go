package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/target"
)

type targetRepository struct {
	db *DB
}

var _ target.Repository = (*targetRepository)(nil)

func NewTargetRepository(db *DB) target.Repository {
	return &targetRepository{db: db}
}

func (repo *targetRepository) CreateTarget(
	_ context.Context, t target.EmployeeTarget, _ ...core.DBExecutor,
) (target.EmployeeTarget, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.targets[t.ID] = t
	return t, nil
}

func (repo *targetRepository) QueryTargets(
	_ context.Context, filter *target.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor,
) ([]target.EmployeeTarget, error) {
	repo.db.mu.RLock()
	targets := make([]target.EmployeeTarget, 0, len(repo.db.targets))
	for _, t := range repo.db.targets {
		if filter != nil {
			if filter.EmployeeID != "" && t.EmployeeID != filter.EmployeeID {
				continue
			}
			if filter.Type != "" && t.Type != filter.Type {
				continue
			}
			if filter.Period != "" && t.Period != filter.Period {
				continue
			}
			if filter.Month != 0 && t.Month != filter.Month {
				continue
			}
			if filter.Year != 0 && t.Year != filter.Year {
				continue
			}
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
		}
		targets = append(targets, t)
	}
	repo.db.mu.RUnlock()

	sort.Slice(targets, func(i, j int) bool {
		a, b := targets[i], targets[j]
		for _, ord := range ordering {
			switch ord.Field {
			case "year":
				if a.Year != b.Year {
					return (a.Year < b.Year) == ord.Ascending
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
	return targets, nil
}

func (repo *targetRepository) GetTarget(
	_ context.Context, id string, _ ...core.DBExecutor,
) (target.EmployeeTarget, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if t, ok := repo.db.targets[id]; ok {
		return t, nil
	}
	return target.EmployeeTarget{}, target.ErrNotFound
}

func (repo *targetRepository) UpdateTarget(
	_ context.Context, t target.EmployeeTarget, _ ...core.DBExecutor,
) (target.EmployeeTarget, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.targets[t.ID]; !ok {
		return target.EmployeeTarget{}, target.ErrNotFound
	}
	repo.db.targets[t.ID] = t
	return t, nil
}

func (repo *targetRepository) DeleteTargetsByID(
	_ context.Context, ids []string, _ ...core.DBExecutor,
) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	var n int
	for _, id := range ids {
		if _, ok := repo.db.targets[id]; ok {
			delete(repo.db.targets, id)
			n++
			for aid, alert := range repo.db.alerts {
				if alert.TargetID == id {
					delete(repo.db.alerts, aid)
				}
			}
		}
	}
	return n, nil
}

func (repo *targetRepository) CreateAlert(
	_ context.Context, alert target.Alert, _ ...core.DBExecutor,
) (target.Alert, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.alerts[alert.ID] = alert
	return alert, nil
}

func (repo *targetRepository) QueryAlerts(
	_ context.Context, filter *target.AlertQueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor,
) ([]target.Alert, error) {
	repo.db.mu.RLock()
	alerts := make([]target.Alert, 0, len(repo.db.alerts))
	for _, alert := range repo.db.alerts {
		if filter != nil {
			if filter.EmployeeID != "" && alert.EmployeeID != filter.EmployeeID {
				continue
			}
			if filter.TargetID != "" && alert.TargetID != filter.TargetID {
				continue
			}
			if filter.AlertType != "" && alert.AlertType != filter.AlertType {
				continue
			}
			if filter.IsRead != nil && alert.IsRead != *filter.IsRead {
				continue
			}
		}
		alerts = append(alerts, alert)
	}
	repo.db.mu.RUnlock()

	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		for _, ord := range ordering {
			if ord.Field == "created_at" && !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt) == ord.Ascending
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return alerts, nil
}

func (repo *targetRepository) AlertExists(
	_ context.Context, targetID string, typ target.AlertType, _ ...core.DBExecutor,
) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	for _, alert := range repo.db.alerts {
		if alert.TargetID == targetID && alert.AlertType == typ {
			return true, nil
		}
	}
	return false, nil
}

func (repo *targetRepository) MarkAlertsRead(
	_ context.Context, employeeID string, ids []string, _ ...core.DBExecutor,
) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	inIDs := func(id string) bool {
		if len(ids) == 0 {
			return true
		}
		for _, i := range ids {
			if i == id {
				return true
			}
		}
		return false
	}
	var n int
	for id, alert := range repo.db.alerts {
		if alert.EmployeeID != employeeID || alert.IsRead || !inIDs(id) {
			continue
		}
		alert.IsRead = true
		repo.db.alerts[id] = alert
		n++
	}
	return n, nil
}
