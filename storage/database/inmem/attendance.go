package inmem

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateRecord(
	_ context.Context, rec attendance.Record, _ ...core.DBExecutor,
) (attendance.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.records[rec.ID] = rec
	return rec, nil
}

func (repo *attendanceRepository) QueryRecords(
	_ context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor,
) ([]attendance.Record, error) {
	repo.db.mu.RLock()
	recs := make([]attendance.Record, 0, len(repo.db.records))
	for _, rec := range repo.db.records {
		if filter != nil {
			if filter.EmployeeID != "" && rec.EmployeeID != filter.EmployeeID {
				continue
			}
			if filter.Status != "" && rec.Status != filter.Status {
				continue
			}
			if from, to := filter.Window(); !from.IsZero() {
				if rec.Date.Before(from) || !rec.Date.Before(to) {
					continue
				}
			}
		}
		recs = append(recs, rec)
	}
	repo.db.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		for _, ord := range ordering {
			if ord.Field == "date" && !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date) == ord.Ascending
			}
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
	return recs, nil
}

func (repo *attendanceRepository) GetRecord(
	_ context.Context, id string, _ ...core.DBExecutor,
) (attendance.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if rec, ok := repo.db.records[id]; ok {
		return rec, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) UpdateRecord(
	_ context.Context, rec attendance.Record, _ ...core.DBExecutor,
) (attendance.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.records[rec.ID]; !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	repo.db.records[rec.ID] = rec
	return rec, nil
}

func (repo *attendanceRepository) DeleteRecordsByID(
	_ context.Context, ids []string, _ ...core.DBExecutor,
) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	var n int
	for _, id := range ids {
		if _, ok := repo.db.records[id]; ok {
			delete(repo.db.records, id)
			n++
		}
	}
	return n, nil
}
