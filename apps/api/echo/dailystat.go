package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/taleemhub/backoffice/core/dailystat"
	"github.com/taleemhub/backoffice/core/employee"
)

type dailyStatApi struct {
	svc    *dailystat.Service
	empSvc *employee.Service
}

func registerDailyStatAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *dailystat.Service, empSvc *employee.Service) {
	api := dailyStatApi{svc: svc, empSvc: empSvc}

	sg := g.Group("/daily-stats", jwt)

	sg.POST("", api.submit)
	sg.GET("", api.query)

	// reviewer dashboard
	sg.GET("/review", api.review, reviewerMiddleware())
	sg.GET("/review/summary", api.reviewSummary, reviewerMiddleware())
	sg.POST("/bulk-approve", api.bulkApprove, reviewerMiddleware())

	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy, adminMiddleware())
	sg.POST("/:id/approve", api.approve, reviewerMiddleware())
	sg.POST("/:id/reject", api.reject, reviewerMiddleware())
	sg.POST("/:id/unapprove", api.unapprove, reviewerMiddleware())
}

// Handlers

func (api *dailyStatApi) submit(ctx echo.Context) error {
	var data dailystat.NewDailyStat
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDailyStat")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ds, err := api.svc.Submit(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "submitting daily stat")
	}
	return ctx.JSON(http.StatusCreated, ds)
}

func (api *dailyStatApi) query(ctx echo.Context) error {
	filter := new(dailystat.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []dailystat.DailyStat{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// staff only see their own submissions
	if !claims.IsReviewer() {
		filter.EmployeeID = claims.Subject
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	stats, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying daily stats")
	}
	if stats == nil {
		stats = []dailystat.DailyStat{}
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *dailyStatApi) review(ctx echo.Context) error {
	filter := new(dailystat.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []dailystat.DailyStat{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	stats, err := api.svc.ListForReview(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "listing daily stats for review")
	}
	if stats == nil {
		stats = []dailystat.DailyStat{}
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *dailyStatApi) reviewSummary(ctx echo.Context) error {
	var query ReviewSummaryRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to ReviewSummaryRequest")
	}

	summary, err := api.svc.ReviewStats(ctx.Request().Context(), query.Month, query.Year)
	if err != nil {
		return errors.Wrap(err, "counting daily stats")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *dailyStatApi) retrieve(ctx echo.Context) error {
	ds, err := api.getVisibleStat(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ds)
}

func (api *dailyStatApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ds, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == dailystat.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding daily stat by ID")
	}
	// only the submitter may edit their stat
	if ds.EmployeeID != claims.Subject {
		return errHttpNotFound
	}

	var data dailystat.UpdateDailyStat
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDailyStat")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ds, err = api.svc.Update(ctx.Request().Context(), ds.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating daily stat")
	}
	return ctx.JSON(http.StatusOK, ds)
}

func (api *dailyStatApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting daily stat")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *dailyStatApi) approve(ctx echo.Context) error {
	var data ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ds, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data.Notes)
	if err != nil {
		return errors.Wrap(err, "approving daily stat")
	}
	return ctx.JSON(http.StatusOK, ds)
}

func (api *dailyStatApi) reject(ctx echo.Context) error {
	var data ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ds, err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data.Notes)
	if err != nil {
		return errors.Wrap(err, "rejecting daily stat")
	}
	return ctx.JSON(http.StatusOK, ds)
}

func (api *dailyStatApi) unapprove(ctx echo.Context) error {
	var data ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ds, err := api.svc.Unapprove(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data.Notes)
	if err != nil {
		return errors.Wrap(err, "unapproving daily stat")
	}
	return ctx.JSON(http.StatusOK, ds)
}

func (api *dailyStatApi) bulkApprove(ctx echo.Context) error {
	var data BulkApproveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkApproveRequest")
	}
	if len(data.IDs) == 0 {
		return ctx.JSON(http.StatusOK, BulkApproveResponse{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	count, err := api.svc.BulkApprove(ctx.Request().Context(), data.IDs, claims.Subject, data.Notes)
	if err != nil {
		return errors.Wrap(err, "bulk approving daily stats")
	}
	return ctx.JSON(http.StatusOK, BulkApproveResponse{Approved: count})
}

// getVisibleStat loads the stat and hides other employees' stats from staff.
func (api *dailyStatApi) getVisibleStat(ctx echo.Context) (dailystat.DailyStat, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return dailystat.DailyStat{}, errors.Wrap(err, "getting context claims")
	}

	ds, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == dailystat.ErrNotFound {
			return dailystat.DailyStat{}, errHttpNotFound
		}
		return dailystat.DailyStat{}, errors.Wrap(err, "finding daily stat by ID")
	}
	if !claims.IsReviewer() && ds.EmployeeID != claims.Subject {
		return dailystat.DailyStat{}, errHttpNotFound
	}
	return ds, nil
}

type (
	ReviewRequest struct {
		Notes string `json:"review_notes"`
	}

	ReviewSummaryRequest struct {
		Month int `query:"month"`
		Year  int `query:"year"`
	}

	BulkApproveRequest struct {
		IDs   []string `json:"ids"`
		Notes string   `json:"review_notes"`
	}

	BulkApproveResponse struct {
		Approved int `json:"approved"`
	}
)
