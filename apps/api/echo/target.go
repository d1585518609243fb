package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core/target"
)

type targetApi struct {
	svc *target.Service
}

func registerTargetAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *target.Service) {
	api := targetApi{svc: svc}

	tg := g.Group("/targets", jwt)

	tg.POST("", api.create, adminMiddleware())
	tg.GET("", api.query)

	// threshold alerts
	tg.GET("/alerts", api.queryAlerts)
	tg.POST("/alerts/read", api.markAlertsRead)

	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update, adminMiddleware())
	tg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

func (api *targetApi) create(ctx echo.Context) error {
	var data target.NewTarget
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTarget")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating target")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *targetApi) query(ctx echo.Context) error {
	filter := new(target.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []target.EmployeeTarget{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// staff only see their own targets
	if !claims.IsReviewer() {
		filter.EmployeeID = claims.Subject
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	targets, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying targets")
	}
	if targets == nil {
		targets = []target.EmployeeTarget{}
	}
	return ctx.JSON(http.StatusOK, targets)
}

func (api *targetApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == target.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding target by ID")
	}
	if !claims.IsReviewer() && t.EmployeeID != claims.Subject {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *targetApi) update(ctx echo.Context) error {
	var data target.UpdateTarget
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTarget")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating target")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *targetApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting target")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *targetApi) queryAlerts(ctx echo.Context) error {
	filter := new(target.AlertQueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []target.Alert{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// staff only see their own alerts
	if !claims.IsReviewer() {
		filter.EmployeeID = claims.Subject
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	alerts, err := api.svc.Alerts(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying alerts")
	}
	if alerts == nil {
		alerts = []target.Alert{}
	}
	return ctx.JSON(http.StatusOK, alerts)
}

func (api *targetApi) markAlertsRead(ctx echo.Context) error {
	var data MarkAlertsReadRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAlertsReadRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	n, err := api.svc.MarkAlertsRead(ctx.Request().Context(), claims.Subject, data.IDs...)
	if err != nil {
		return errors.Wrap(err, "marking alerts read")
	}
	return ctx.JSON(http.StatusOK, MarkAlertsReadResponse{Marked: n})
}

type (
	MarkAlertsReadRequest struct {
		IDs []string `json:"ids"`
	}

	MarkAlertsReadResponse struct {
		Marked int `json:"marked"`
	}
)
