package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core/attendance"
	"github.com/taleemhub/backoffice/core/employee"
)

type attendanceApi struct {
	svc    *attendance.Service
	empSvc *employee.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, empSvc *employee.Service) {
	api := attendanceApi{svc: svc, empSvc: empSvc}

	ag := g.Group("/attendance", jwt)

	ag.POST("", api.create)
	ag.GET("", api.query)
	ag.GET("/summary", api.summary)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update, reviewerMiddleware())
	ag.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// staff may only record their own attendance
	if !claims.IsReviewer() {
		data.EmployeeID = claims.Subject
	}

	if err := data.Validate(); err != nil {
		return err
	}

	rec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating attendance record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []attendance.Record{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsReviewer() {
		filter.EmployeeID = claims.Subject
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	recs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	var query SummaryRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to SummaryRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsReviewer() || query.EmployeeID == "" {
		query.EmployeeID = claims.Subject
	}

	summary, err := api.svc.Summary(ctx.Request().Context(), query.EmployeeID, query.Month, query.Year)
	if err != nil {
		return errors.Wrap(err, "computing attendance summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding attendance record by ID")
	}
	if !claims.IsReviewer() && rec.EmployeeID != claims.Subject {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	var data attendance.UpdateRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	rec, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating attendance record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting attendance record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type SummaryRequest struct {
	EmployeeID string `query:"employee_id"`
	Month      int    `query:"month"`
	Year       int    `query:"year"`
}
