package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core"
	"github.com/shulehq/shule/core/access"
	"github.com/shulehq/shule/core/attendance"
	"github.com/shulehq/shule/core/report"
	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/user"
)

type attendanceApi struct {
	svc       *attendance.Service
	stdSvc    *student.Service
	reportSvc *report.Service
	validate  *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := attendanceApi{
		svc:       deps.AttendanceSvc,
		stdSvc:    deps.StudentSvc,
		reportSvc: deps.ReportSvc,
		validate:  deps.Validate,
	}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.mark)
	ag.GET("/student/:studentId", api.listByStudent)
	ag.GET("/date/:date", api.listByDate, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
	ag.GET("/summary/:studentId", api.summary)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := access.Check(claims.Role, access.ActionCreate, access.ResourceAttendance); err != nil {
		return err
	}

	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// the referenced student must resolve
	if _, err := api.stdSvc.GetByID(ctx.Request().Context(), data.StudentID); err != nil {
		return err
	}

	att, err := api.svc.Mark(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *attendanceApi) listByStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	std, err := api.stdSvc.GetByID(ctx.Request().Context(), ctx.Param("studentId"))
	if err != nil {
		return err
	}
	if err := access.CheckOwnership(claims.Subject, claims.Role, std.UserID); err != nil {
		return err
	}

	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.StudentID = std.ID

	records, total, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "filtering attendance")
	}
	if records == nil {
		records = []attendance.Attendance{}
	}
	filter.Clean()
	return ctx.JSON(http.StatusOK, AttendanceListResponse{
		Records:         records,
		TotalAttendance: total,
		TotalPages:      totalPages(total, filter.Limit),
		CurrentPage:     filter.Page,
	})
}

func (api *attendanceApi) listByDate(ctx echo.Context) error {
	day, err := time.ParseInLocation(attendance.DateLayout, ctx.Param("date"), time.UTC)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{
			Field: "date",
			Error: "date must be formatted as " + attendance.DateLayout,
		})
	}

	records, err := api.svc.QueryByDate(ctx.Request().Context(), day)
	if err != nil {
		return errors.Wrap(err, "querying attendance by date")
	}
	if records == nil {
		records = []attendance.Attendance{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	std, err := api.stdSvc.GetByID(ctx.Request().Context(), ctx.Param("studentId"))
	if err != nil {
		return err
	}
	if err := access.CheckOwnership(claims.Subject, claims.Role, std.UserID); err != nil {
		return err
	}

	summary, err := api.reportSvc.AttendanceSummary(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "computing attendance summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

type AttendanceListResponse struct {
	Records         []attendance.Attendance `json:"records"`
	TotalAttendance int                     `json:"totalAttendance"`
	TotalPages      int                     `json:"totalPages"`
	CurrentPage     int                     `json:"currentPage"`
}
