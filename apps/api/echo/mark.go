package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/access"
	"github.com/shulehq/shule/core/mark"
	"github.com/shulehq/shule/core/report"
	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/subject"
)

type markApi struct {
	svc       *mark.Service
	stdSvc    *student.Service
	subSvc    *subject.Service
	reportSvc *report.Service
	validate  *validator.Validate
}

func registerMarkAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := markApi{
		svc:       deps.MarkSvc,
		stdSvc:    deps.StudentSvc,
		subSvc:    deps.SubjectSvc,
		reportSvc: deps.ReportSvc,
		validate:  deps.Validate,
	}

	mg := g.Group("/marks", jwt)
	mg.GET("", api.list)
	mg.POST("", api.create)
	mg.GET("/average/:studentId", api.average)
}

func (api *markApi) list(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(mark.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	// students only ever see their own marks, whatever the query says
	if access.Scoped(claims.Role, access.ResourceMark) {
		std, err := api.stdSvc.GetByUserID(ctx.Request().Context(), claims.Subject)
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return ctx.JSON(http.StatusOK, MarkListResponse{Marks: []mark.Mark{}})
			}
			return errors.Wrap(err, "finding own student record")
		}
		filter.StudentID = std.ID
	}

	marks, total, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "filtering marks")
	}
	if marks == nil {
		marks = []mark.Mark{}
	}
	filter.Clean()
	return ctx.JSON(http.StatusOK, MarkListResponse{
		Marks:       marks,
		TotalMarks:  total,
		TotalPages:  totalPages(total, filter.Limit),
		CurrentPage: filter.Page,
	})
}

func (api *markApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := access.Check(claims.Role, access.ActionCreate, access.ResourceMark); err != nil {
		return err
	}

	var data mark.NewMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMark")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// the referenced student and subject must resolve
	if _, err := api.stdSvc.GetByID(ctx.Request().Context(), data.StudentID); err != nil {
		return err
	}
	subjects, err := api.subSvc.GetByID(ctx.Request().Context(), data.SubjectID)
	if err != nil {
		return errors.Wrap(err, "resolving subject")
	}
	if len(subjects) == 0 {
		return subject.ErrNotFound
	}

	mk, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mk)
}

func (api *markApi) average(ctx echo.Context) error {
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

	rep, ok, err := api.reportSvc.StudentAverage(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "computing student average")
	}
	if !ok {
		return errNoMarksFound
	}
	return ctx.JSON(http.StatusOK, rep)
}

type MarkListResponse struct {
	Marks       []mark.Mark `json:"marks"`
	TotalMarks  int         `json:"totalMarks"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
}
