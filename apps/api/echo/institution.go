package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/philip-ks/eduforge/core/auth"
	"github.com/philip-ks/eduforge/core/request"
	"github.com/philip-ks/eduforge/core/tenant"
	"github.com/philip-ks/eduforge/core/user"
)

// maxStudentPageSize caps institution-side student listings.
const maxStudentPageSize = 200

type institutionApi struct {
	userSvc *user.Service
	reqSvc  *request.Service
}

type (
	InstitutionOverview struct {
		Students           int `json:"students"`
		OpenRequests       int `json:"open_requests"`
		InProgressRequests int `json:"in_progress_requests"`
		ClosedRequests     int `json:"closed_requests"`
	}

	UpdateRequestStatus struct {
		Status string `json:"status"`
	}
)

func registerInstitutionAPI(g *echo.Group, authMid echo.MiddlewareFunc, userSvc *user.Service, reqSvc *request.Service) {
	api := institutionApi{userSvc: userSvc, reqSvc: reqSvc}

	ig := g.Group("/institution", authMid, institutionMiddleware())
	ig.GET("/overview", api.overview)
	ig.GET("/students", api.queryStudents)
	ig.POST("/students", api.createStudent)
	ig.GET("/requests", api.queryRequests)
	ig.GET("/requests/:id", api.retrieveRequest)
	ig.PATCH("/requests/:id/status", api.updateRequestStatus)
}

// scope resolves the caller's tenant scope. Every repository call below goes
// through it; an institution user can never read another institution's rows.
func (api *institutionApi) scope(ctx echo.Context) (tenant.Scope, error) {
	ident, err := ContextIdentity(ctx)
	if err != nil {
		return tenant.Scope{}, err
	}
	return tenant.ScopeFor(ident), nil
}

func (api *institutionApi) overview(ctx echo.Context) error {
	scope, err := api.scope(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	students, err := api.userSvc.CountStudents(rctx, scope)
	if err != nil {
		return errors.Wrap(err, "counting students")
	}
	open, err := api.reqSvc.Count(rctx, scope, request.StatusOpen)
	if err != nil {
		return errors.Wrap(err, "counting open requests")
	}
	inProgress, err := api.reqSvc.Count(rctx, scope, request.StatusInProgress)
	if err != nil {
		return errors.Wrap(err, "counting in-progress requests")
	}
	closed, err := api.reqSvc.Count(rctx, scope, request.StatusClosed)
	if err != nil {
		return errors.Wrap(err, "counting closed requests")
	}

	return ctx.JSON(http.StatusOK, InstitutionOverview{
		Students:           students,
		OpenRequests:       open,
		InProgressRequests: inProgress,
		ClosedRequests:     closed,
	})
}

func (api *institutionApi) queryStudents(ctx echo.Context) error {
	scope, err := api.scope(ctx)
	if err != nil {
		return err
	}

	filter := new(user.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	filter.Limit = queryLimit(ctx, maxStudentPageSize)

	students, err := api.userSvc.QueryStudents(ctx.Request().Context(), scope, *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []user.User{}
	}
	return ctx.JSON(http.StatusOK, students)
}

// createStudent registers a student account under the caller's institution.
// Role and institution come from the caller, never from the payload.
func (api *institutionApi) createStudent(ctx echo.Context) error {
	ident, err := ContextIdentity(ctx)
	if err != nil {
		return err
	}

	var data user.NewUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	data.Role = auth.RoleStudent
	data.InstitutionID = ident.InstitutionID.String

	rctx := ctx.Request().Context()
	if err = data.Validate(rctx, api.userSvc); err != nil {
		return err
	}
	usr, err := api.userSvc.Create(rctx, data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *institutionApi) queryRequests(ctx echo.Context) error {
	scope, err := api.scope(ctx)
	if err != nil {
		return err
	}

	filter := request.QueryFilter{
		Status: ctx.QueryParam("status"),
		Limit:  queryLimit(ctx, maxStudentPageSize),
	}
	reqs, err := api.reqSvc.Query(ctx.Request().Context(), scope, filter)
	if err != nil {
		return errors.Wrap(err, "querying requests")
	}
	if reqs == nil {
		reqs = []request.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *institutionApi) retrieveRequest(ctx echo.Context) error {
	scope, err := api.scope(ctx)
	if err != nil {
		return err
	}
	req, err := api.reqSvc.GetByID(ctx.Request().Context(), scope, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *institutionApi) updateRequestStatus(ctx echo.Context) error {
	scope, err := api.scope(ctx)
	if err != nil {
		return err
	}

	var data UpdateRequestStatus
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRequestStatus")
	}

	req, err := api.reqSvc.UpdateStatus(ctx.Request().Context(), scope, ctx.Param("id"), data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}

// queryLimit parses the `limit` query param, capped at max; max applies when
// absent or invalid.
func queryLimit(ctx echo.Context, max int) int {
	raw := ctx.QueryParam("limit")
	if raw == "" {
		return max
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > max {
		return max
	}
	return limit
}
