package course_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/course"
	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/storage/database/inmem"
)

type noopRecalc struct{}

func (noopRecalc) Recalculate(context.Context, string, ...core.DBExecutor) error { return nil }

func setup(t *testing.T) (*course.Service, *dailystat.Service) {
	t.Helper()
	db := inmem.NewDB()
	crsRepo := inmem.NewCourseRepository(db)
	enrRepo := inmem.NewEnrollmentRepository(db)
	statRepo := inmem.NewDailyStatRepository(db)
	return course.NewService(crsRepo, enrRepo),
		dailystat.NewService(nil, statRepo, enrRepo, noopRecalc{})
}

func TestService_Stats(t *testing.T) {
	crsSvc, statSvc := setup(t)
	ctx := context.Background()

	crs, err := crsSvc.Create(ctx, course.NewCourse{
		Name:     "Bookkeeping Basics",
		Category: "finance",
		Price:    100,
		FeeTiers: []course.FeeTier{
			{Label: "group", Amount: 80, TraineeCount: 5},
		},
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// stats of an unknown course
	if _, err := crsSvc.Stats(ctx, "nope"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("Stats() error = %v, want %v", err, course.ErrNotFound)
	}

	// a fresh course has no lines
	stats, err := crsSvc.Stats(ctx, crs.ID)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.EnrollmentCount != 0 {
		t.Errorf("Stats() count = %d, want 0", stats.EnrollmentCount)
	}

	// approved daily stats feed the course's revenue
	submit := func(confirmed int) dailystat.DailyStat {
		ds, err := statSvc.Submit(ctx, "emp1", dailystat.NewDailyStat{
			Date:               time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC),
			CourseID:           crs.ID,
			CourseFee:          crs.Price,
			ConfirmedCustomers: confirmed,
		})
		if err != nil {
			t.Fatalf("Submit() failed: %v", err)
		}
		return ds
	}
	ds1 := submit(3)
	ds2 := submit(2)
	submit(4) // stays pending
	if _, err := statSvc.Approve(ctx, ds1.ID, "rev1", ""); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if _, err := statSvc.Approve(ctx, ds2.ID, "rev1", ""); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	stats, err = crsSvc.Stats(ctx, crs.ID)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.EnrollmentCount != 2 {
		t.Errorf("Stats() count = %d, want 2", stats.EnrollmentCount)
	}
	if stats.TotalTrainees != 5 {
		t.Errorf("Stats() trainees = %d, want 5", stats.TotalTrainees)
	}
	if stats.TotalRevenue != 500 {
		t.Errorf("Stats() revenue = %v, want 500", stats.TotalRevenue)
	}
}
