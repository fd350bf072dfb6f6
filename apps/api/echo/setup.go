package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/user"
)

type setupApi struct {
	deps ServerDeps
}

// registerSetupAPI wires the first-run bootstrap endpoints. They are not
// authenticated: before setup there is no account to authenticate with.
func registerSetupAPI(g *echo.Group, deps ServerDeps) {
	api := setupApi{deps: deps}

	sg := g.Group("/setup")
	sg.GET("/status", api.status)
	sg.POST("/initialize", api.initialize)
}

func (api *setupApi) status(ctx echo.Context) error {
	status, err := api.deps.UserSvc.SetupStatus(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting setup status")
	}
	return ctx.JSON(http.StatusOK, status)
}

func (api *setupApi) initialize(ctx echo.Context) error {
	var data user.SetupRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetupRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	admin, _, err := api.deps.UserSvc.Initialize(ctx.Request().Context(), data)
	if err != nil {
		if errors.Is(err, user.ErrAlreadyInitialized) {
			return err
		}
		return errors.Wrap(err, "initializing platform")
	}

	access, refresh, err := GenerateTokenPair(api.deps.Conf, admin)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		User:         admin,
	})
}
