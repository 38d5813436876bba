package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/philip-ks/eduforge/core/auth"
	"github.com/philip-ks/eduforge/core/request"
	"github.com/philip-ks/eduforge/core/student"
	"github.com/philip-ks/eduforge/core/user"
)

type studentApi struct {
	svc     *student.Service
	reqSvc  *request.Service
	userSvc *user.Service
}

type (
	// StudentProfile joins the student record with its account contacts
	// and enrolled program.
	StudentProfile struct {
		student.Student
		Email   string          `json:"email"`
		Phone   null.String     `json:"phone"`
		Program student.Program `json:"program"`
	}

	StudentHome struct {
		Profile        StudentProfile              `json:"profile"`
		Attendance     []student.AttendanceSummary `json:"attendance"`
		Fees           *student.FeeSummary         `json:"fees"`
		LibraryIssues  []student.LibraryIssue      `json:"library_issues"`
		RecentRequests []request.Request           `json:"recent_requests"`
	}
)

func registerStudentAPI(g *echo.Group, authMid echo.MiddlewareFunc, svc *student.Service, reqSvc *request.Service, userSvc *user.Service) {
	api := studentApi{svc: svc, reqSvc: reqSvc, userSvc: userSvc}

	sg := g.Group("/student", authMid, roleMiddleware(auth.RoleStudent))
	sg.GET("/me", api.me)
	sg.GET("/home", api.home)
	sg.GET("/courses", api.courses)
	sg.GET("/attendance", api.attendance)
	sg.GET("/fees", api.fees)
	sg.GET("/library", api.library)
	sg.GET("/settings", api.settings)
	sg.PUT("/settings", api.updateSettings)
	sg.GET("/requests", api.queryRequests)
	sg.POST("/requests", api.createRequest)
}

func (api *studentApi) profile(ctx echo.Context) (StudentProfile, error) {
	stu, err := contextStudent(ctx, api.svc)
	if err != nil {
		return StudentProfile{}, err
	}
	rctx := ctx.Request().Context()
	usr, err := api.userSvc.GetByID(rctx, stu.UserID)
	if err != nil {
		return StudentProfile{}, errors.Wrap(err, "finding account")
	}
	prog, err := api.svc.Program(rctx, stu.ProgramID)
	if err != nil && errors.Cause(err) != student.ErrNotFound {
		return StudentProfile{}, errors.Wrap(err, "finding program")
	}
	return StudentProfile{Student: stu, Email: usr.Email, Phone: usr.Phone, Program: prog}, nil
}

func (api *studentApi) me(ctx echo.Context) error {
	profile, err := api.profile(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *studentApi) home(ctx echo.Context) error {
	profile, err := api.profile(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	attendance, err := api.svc.SummarizeAttendance(rctx, profile.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}

	var fees *student.FeeSummary
	feeSum, err := api.svc.SummarizeFees(rctx, profile.ID)
	switch errors.Cause(err) {
	case nil:
		fees = &feeSum
	case student.ErrFeeAccountNotFound:
		// no account yet; home still renders
	default:
		return errors.Wrap(err, "summarizing fees")
	}

	issues, err := api.svc.LibraryIssues(rctx, profile.ID, 5)
	if err != nil {
		return errors.Wrap(err, "querying library issues")
	}
	reqs, err := api.reqSvc.ByStudent(rctx, profile.ID)
	if err != nil {
		return errors.Wrap(err, "querying requests")
	}
	if len(reqs) > 5 {
		reqs = reqs[:5]
	}

	return ctx.JSON(http.StatusOK, StudentHome{
		Profile:        profile,
		Attendance:     attendance,
		Fees:           fees,
		LibraryIssues:  issues,
		RecentRequests: reqs,
	})
}

func (api *studentApi) courses(ctx echo.Context) error {
	stu, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	enrollments, err := api.svc.Courses(ctx.Request().Context(), stu.ID)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if enrollments == nil {
		enrollments = []student.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *studentApi) attendance(ctx echo.Context) error {
	stu, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	summaries, err := api.svc.SummarizeAttendance(ctx.Request().Context(), stu.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	if summaries == nil {
		summaries = []student.AttendanceSummary{}
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *studentApi) fees(ctx echo.Context) error {
	stu, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	summary, err := api.svc.SummarizeFees(ctx.Request().Context(), stu.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *studentApi) library(ctx echo.Context) error {
	stu, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	issues, err := api.svc.LibraryIssues(ctx.Request().Context(), stu.ID, 0)
	if err != nil {
		return errors.Wrap(err, "querying library issues")
	}
	if issues == nil {
		issues = []student.LibraryIssue{}
	}
	return ctx.JSON(http.StatusOK, issues)
}

func (api *studentApi) settings(ctx echo.Context) error {
	stu, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	settings, err := api.svc.GetSettings(ctx.Request().Context(), stu.ID)
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *studentApi) updateSettings(ctx echo.Context) error {
	stu, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}

	var data student.UpdateSettings
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	settings, err := api.svc.UpdateSettings(ctx.Request().Context(), stu.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, settings)
}

func (api *studentApi) queryRequests(ctx echo.Context) error {
	stu, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	reqs, err := api.reqSvc.ByStudent(ctx.Request().Context(), stu.ID)
	if err != nil {
		return errors.Wrap(err, "querying requests")
	}
	if reqs == nil {
		reqs = []request.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *studentApi) createRequest(ctx echo.Context) error {
	stu, err := contextStudent(ctx, api.svc)
	if err != nil {
		return err
	}

	var data request.NewRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}

	req, err := api.reqSvc.Create(ctx.Request().Context(), stu, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, req)
}
