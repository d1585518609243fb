package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core"
	"github.com/taleemhub/backoffice/core/attendance"
	"github.com/taleemhub/backoffice/core/course"
	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
	"github.com/taleemhub/backoffice/core/enrollment"
	"github.com/taleemhub/backoffice/core/target"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger        core.Logger
		EmployeeSvc   *employee.Service
		CourseSvc     *course.Service
		EnrollmentSvc *enrollment.Service
		DailyStatSvc  *dailystat.Service
		TargetSvc     *target.Service
		AttendanceSvc *attendance.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerEmployeeAPI(v1, jwt, s.opts.EmployeeSvc)
	registerCourseAPI(v1, jwt, s.opts.CourseSvc)
	registerEnrollmentAPI(v1, jwt, s.opts.EnrollmentSvc)
	registerDailyStatAPI(v1, jwt, s.opts.DailyStatSvc, s.opts.EmployeeSvc)
	registerTargetAPI(v1, jwt, s.opts.TargetSvc)
	registerAttendanceAPI(v1, jwt, s.opts.AttendanceSvc, s.opts.EmployeeSvc)
}

// Start runs the server until it fails or an interrupt/shutdown signal arrives,
// then drains in-flight requests within the configured timeout.
func (s *server) Start() error {
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- s.app.Start(s.opts.Address)
	}()

	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")
	case sig := <-s.shutdown:
		s.opts.Logger.Info("shutdown started", map[string]interface{}{"signal": sig.String()})
		defer s.opts.Logger.Info("shutdown complete")

		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Stop(ctx); err != nil {
			_ = s.app.Close()
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}
	return nil
}

// signalShutdown sends an application shutdown signal.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Taleem API!")
}
