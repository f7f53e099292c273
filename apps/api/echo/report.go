package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule/core/report"
	"github.com/shulehq/shule/core/student"
	"github.com/shulehq/shule/core/user"
)

type reportApi struct {
	svc    *report.Service
	stdSvc *student.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := reportApi{
		svc:    deps.ReportSvc,
		stdSvc: deps.StudentSvc,
	}

	g.GET("/dashboard", api.dashboard, jwt)
	g.GET("/analytics", api.analytics, jwt, roleMiddleware(user.RoleAdmin, user.RoleTeacher))
}

// dashboard serves a role-dependent payload: students get their own
// figures, staff get the aggregate counts.
func (api *reportApi) dashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if claims.Role == user.RoleStudent {
		std, err := api.stdSvc.GetByUserID(ctx.Request().Context(), claims.Subject)
		if err != nil {
			return err
		}
		dash, err := api.svc.StudentDashboard(ctx.Request().Context(), std)
		if err != nil {
			return errors.Wrap(err, "assembling student dashboard")
		}
		return ctx.JSON(http.StatusOK, dash)
	}

	dash, err := api.svc.StaffDashboard(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "assembling staff dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *reportApi) analytics(ctx echo.Context) error {
	analytics, err := api.svc.Analytics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "assembling analytics")
	}
	return ctx.JSON(http.StatusOK, analytics)
}
