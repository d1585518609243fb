package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/dailystat"
)

type dailyStatRepository struct {
	db *DB
}

var _ dailystat.Repository = (*dailyStatRepository)(nil)

func NewDailyStatRepository(db *DB) dailystat.Repository {
	return &dailyStatRepository{db: db}
}

func (repo *dailyStatRepository) CreateDailyStat(
	_ context.Context, ds dailystat.DailyStat, _ ...core.DBExecutor,
) (dailystat.DailyStat, error) {
	if ds.ID == "" {
		ds.ID = uuid.New().String()
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.dailyStats[ds.ID] = ds
	return ds, nil
}

func matchDailyStat(ds dailystat.DailyStat, filter *dailystat.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.EmployeeID != "" && ds.EmployeeID != filter.EmployeeID {
		return false
	}
	if filter.Status != "" && ds.Status != filter.Status {
		return false
	}
	if filter.CourseID != "" && (!ds.CourseID.Valid || ds.CourseID.String != filter.CourseID) {
		return false
	}
	from, to := filter.Window()
	if from.IsZero() {
		from, to = filter.DateFrom, filter.DateTo
	}
	if !from.IsZero() && ds.Date.Before(from) {
		return false
	}
	if !to.IsZero() && !ds.Date.Before(to) {
		return false
	}
	return true
}

func (repo *dailyStatRepository) QueryDailyStats(
	_ context.Context, filter *dailystat.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor,
) ([]dailystat.DailyStat, error) {
	repo.db.mu.RLock()
	stats := make([]dailystat.DailyStat, 0, len(repo.db.dailyStats))
	for _, ds := range repo.db.dailyStats {
		if matchDailyStat(ds, filter) {
			stats = append(stats, ds)
		}
	}
	repo.db.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		for _, ord := range ordering {
			switch ord.Field {
			case "date":
				if !a.Date.Equal(b.Date) {
					return a.Date.Before(b.Date) == ord.Ascending
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
	return stats, nil
}

func (repo *dailyStatRepository) GetDailyStat(
	_ context.Context, id string, _ ...core.DBExecutor,
) (dailystat.DailyStat, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if ds, ok := repo.db.dailyStats[id]; ok {
		return ds, nil
	}
	return dailystat.DailyStat{}, dailystat.ErrNotFound
}

func (repo *dailyStatRepository) UpdateDailyStat(
	_ context.Context, ds dailystat.DailyStat, _ ...core.DBExecutor,
) (dailystat.DailyStat, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.dailyStats[ds.ID]; !ok {
		return dailystat.DailyStat{}, dailystat.ErrNotFound
	}
	repo.db.dailyStats[ds.ID] = ds
	return ds, nil
}

func (repo *dailyStatRepository) DeleteDailyStatsByID(
	_ context.Context, ids []string, _ ...core.DBExecutor,
) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	var n int
	for _, id := range ids {
		if _, ok := repo.db.dailyStats[id]; ok {
			delete(repo.db.dailyStats, id)
			n++
		}
	}
	return n, nil
}

func (repo *dailyStatRepository) CountByStatus(
	_ context.Context, filter *dailystat.QueryFilter, _ ...core.DBExecutor,
) (dailystat.ReviewSummary, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var summary dailystat.ReviewSummary
	for _, ds := range repo.db.dailyStats {
		if !matchDailyStat(ds, filter) {
			continue
		}
		summary.Total++
		switch ds.Status {
		case dailystat.StatusPending:
			summary.Pending++
		case dailystat.StatusApproved:
			summary.Approved++
		case dailystat.StatusRejected:
			summary.Rejected++
		}
	}
	return summary, nil
}
