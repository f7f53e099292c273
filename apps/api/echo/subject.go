package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/access"
	"github.com/shulehq/shule/core/subject"
)

type subjectApi struct {
	svc      *subject.Service
	validate *validator.Validate
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := subjectApi{
		svc:      deps.SubjectSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/subjects", jwt)
	sg.GET("", api.list)
	sg.POST("", api.create)
}

func (api *subjectApi) list(ctx echo.Context) error {
	filter := new(subject.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	subjects, total, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "filtering subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	filter.Clean()
	return ctx.JSON(http.StatusOK, SubjectListResponse{
		Subjects:      subjects,
		TotalSubjects: total,
		TotalPages:    totalPages(total, filter.Limit),
		CurrentPage:   filter.Page,
	})
}

func (api *subjectApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := access.Check(claims.Role, access.ActionCreate, access.ResourceSubject); err != nil {
		return err
	}

	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

type SubjectListResponse struct {
	Subjects      []subject.Subject `json:"subjects"`
	TotalSubjects int               `json:"totalSubjects"`
	TotalPages    int               `json:"totalPages"`
	CurrentPage   int               `json:"currentPage"`
}
