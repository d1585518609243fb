package main

import (
	"fmt"
	"log"
	"os"

	"github.com/taleemhub/backoffice/apps/api/echo"
	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/attendance"
	"github.com/taleemhub/backoffice/core/course"
	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/core/enrollment"
	"github.com/taleemhub/backoffice/core/target"
	emailsvc "github.com/taleemhub/backoffice/services/email"
	logsvc "github.com/taleemhub/backoffice/services/logger"
	"github.com/taleemhub/backoffice/storage/database"
	"github.com/taleemhub/backoffice/storage/database/postgres"
)

func main() {
	std := log.New(os.Stdout, fmt.Sprintf("%s API : ", core.Conf.AppName), log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!(core.Conf.Debug || core.Conf.TestMode))

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	txDB := database.NewDB(db)
	empRepo := postgres.NewEmployeeRepository(txDB)
	crsRepo := postgres.NewCourseRepository(txDB)
	enrRepo := postgres.NewEnrollmentRepository(txDB)
	statRepo := postgres.NewDailyStatRepository(txDB)
	tgtRepo := postgres.NewTargetRepository(txDB)
	attRepo := postgres.NewAttendanceRepository(txDB)
	empSvc := employee.NewService(empRepo, mailSvc)
	crsSvc := course.NewService(crsRepo, enrRepo)
	enrSvc := enrollment.NewService(enrRepo)
	tgtSvc := target.NewService(txDB, tgtRepo, statRepo, empRepo, mailSvc)
	statSvc := dailystat.NewService(txDB, statRepo, enrRepo, tgtSvc)
	attSvc := attendance.NewService(attRepo)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:       fmt.Sprintf(":%d", core.Conf.Server.Port),
			Logger:        logger,
			EmployeeSvc:   empSvc,
			CourseSvc:     crsSvc,
			EnrollmentSvc: enrSvc,
			DailyStatSvc:  statSvc,
			TargetSvc:     tgtSvc,
			AttendanceSvc: attSvc,
		},
	)
	if err := app.Start(); err != nil {
		logger.Fatal("server error", err)
	}
}
