package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/access"
	"github.com/shulehq/shule/core/student"
)

type studentApi struct {
	svc      *student.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		svc:      deps.StudentSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/students", jwt)
	sg.GET("", api.list)
	sg.POST("", api.create)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
	sg.PUT("/:id/assign-subjects", api.assignSubjects)
}

func (api *studentApi) list(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// students only ever see their own record, whatever the query says
	if access.Scoped(claims.Role, access.ResourceStudent) {
		std, err := api.svc.GetByUserID(ctx.Request().Context(), claims.Subject)
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return ctx.JSON(http.StatusOK, StudentListResponse{Students: []student.Student{}})
			}
			return errors.Wrap(err, "finding own student record")
		}
		return ctx.JSON(http.StatusOK, StudentListResponse{
			Students:      []student.Student{std},
			TotalStudents: 1,
			TotalPages:    1,
			CurrentPage:   1,
		})
	}

	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	students, total, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "filtering students")
	}
	if students == nil {
		students = []student.Student{}
	}
	filter.Clean()
	return ctx.JSON(http.StatusOK, StudentListResponse{
		Students:      students,
		TotalStudents: total,
		TotalPages:    totalPages(total, filter.Limit),
		CurrentPage:   filter.Page,
	})
}

func (api *studentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := access.Check(claims.Role, access.ActionCreate, access.ResourceStudent); err != nil {
		return err
	}

	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, StudentCreatedResponse{
		Message: "student created; default login password: " + student.DefaultPassword,
		Student: std,
	})
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err := access.CheckOwnership(claims.Subject, claims.Role, std.UserID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := access.Check(claims.Role, access.ActionUpdate, access.ResourceStudent); err != nil {
		return err
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate, orig, api.svc); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := access.Check(claims.Role, access.ActionDelete, access.ResourceStudent); err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) assignSubjects(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := access.Check(claims.Role, access.ActionUpdate, access.ResourceStudent); err != nil {
		return err
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data student.AssignSubjects
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignSubjects")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.AssignSubjects(ctx.Request().Context(), orig, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

type (
	StudentListResponse struct {
		Students      []student.Student `json:"students"`
		TotalStudents int               `json:"totalStudents"`
		TotalPages    int               `json:"totalPages"`
		CurrentPage   int               `json:"currentPage"`
	}

	StudentCreatedResponse struct {
		Message string          `json:"message"`
		Student student.Student `json:"student"`
	}
)
