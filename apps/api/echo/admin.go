package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/admin"
)

type adminAPI struct {
	conf     *core.Config
	svc      admin.Service
	validate *validator.Validate
}

func registerAdminAPI(app *echo.Echo, deps ServerDeps) {
	api := adminAPI{
		conf:     deps.Conf,
		svc:      deps.AdminSvc,
		validate: deps.Validate,
	}
	jwt := jwtMiddleware(deps.Conf)

	app.POST("/AdminReg", api.register)
	app.POST("/AdminLogin", api.login)
	app.GET("/Admin/:id", api.retrieve)
	app.GET("/Admins", api.list, jwt)
	app.PUT("/Admin/:id", api.update, jwt)
	app.DELETE("/Admin/:id", api.destroy, jwt)
	app.GET("/AdminDashboard/:id", api.dashboard, jwt)
}

func (api adminAPI) register(ctx echo.Context) error {
	var data admin.NewAdmin
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	adm, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, adm)
}

type (
	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	loginResponse struct {
		admin.Admin
		Token string `json:"token"`
	}
)

func (api adminAPI) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if core.CleanString(data.Email) == "" || data.Password == "" {
		return errMissingCredentials
	}

	adm, err := authenticate(ctx, data.Email, data.Password, api.svc)
	if err != nil {
		return err
	}

	token, err := GenerateToken(api.conf, GetAdminClaims(api.conf, adm))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, loginResponse{Admin: adm, Token: token})
}

func (api adminAPI) retrieve(ctx echo.Context) error {
	adm, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, adm)
}

func (api adminAPI) list(ctx echo.Context) error {
	adms, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, adms)
}

func (api adminAPI) update(ctx echo.Context) error {
	var data admin.UpdateAdmin
	if err := ctx.Bind(&data); err != nil {
		return err
	}

	adm, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if err = data.Validate(ctx.Request().Context(), adm, api.validate, api.svc); err != nil {
		return err
	}

	adm, err = api.svc.Update(ctx.Request().Context(), adm.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, adm)
}

// destroy removes the account along with every record of its school.
// A partial cascade failure returns a 500 and keeps the account record so the
// call can simply be retried.
func (api adminAPI) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Admin and all related data deleted successfully"})
}

func (api adminAPI) dashboard(ctx echo.Context) error {
	counts, err := api.svc.Dashboard(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, counts)
}
