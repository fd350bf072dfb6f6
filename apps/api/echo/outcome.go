package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/outcome"
)

type outcomeApi struct {
	deps ServerDeps
}

// registerOutcomeAPI wires the CO/PO endpoints. COs and mappings are written
// by the owning teacher or an admin; POs are admin territory.
func registerOutcomeAPI(g *echo.Group, deps ServerDeps) {
	api := outcomeApi{deps: deps}

	g.GET("/subjects/:id/cos", api.queryCOs)
	g.POST("/subjects/:id/cos", api.createCO, teacherMiddleware)
	g.PUT("/cos/:id", api.updateCO, teacherMiddleware)
	g.DELETE("/cos/:id", api.deleteCO, teacherMiddleware)

	g.GET("/programs/:id/pos", api.queryPOs)
	g.POST("/programs/:id/pos", api.createPO, adminMiddleware)

	g.GET("/cos/:id/mappings", api.queryMappings)
	g.POST("/cos/:id/mappings", api.createMapping, teacherMiddleware)
	g.PUT("/co-po-mappings/:id", api.updateMapping, teacherMiddleware)
	g.DELETE("/co-po-mappings/:id", api.deleteMapping, teacherMiddleware)
}

// Handlers

func (api *outcomeApi) queryCOs(ctx echo.Context) error {
	cos, err := api.deps.OutcomeSvc.QueryAllCOs(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if cos == nil {
		cos = []outcome.CO{}
	}
	return ctx.JSON(http.StatusOK, cos)
}

func (api *outcomeApi) createCO(ctx echo.Context) error {
	var data outcome.NewCO
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCO")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	co, err := api.deps.OutcomeSvc.CreateCO(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, co)
}

func (api *outcomeApi) updateCO(ctx echo.Context) error {
	var data outcome.UpdateCO
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCO")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	co, err := api.deps.OutcomeSvc.UpdateCO(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, co)
}

func (api *outcomeApi) deleteCO(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	if err = api.deps.OutcomeSvc.DeleteCO(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"deleted": true})
}

func (api *outcomeApi) queryPOs(ctx echo.Context) error {
	pos, err := api.deps.OutcomeSvc.QueryAllPOs(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if pos == nil {
		pos = []outcome.PO{}
	}
	return ctx.JSON(http.StatusOK, pos)
}

func (api *outcomeApi) createPO(ctx echo.Context) error {
	var data outcome.NewPO
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPO")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	po, err := api.deps.OutcomeSvc.CreatePO(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, po)
}

func (api *outcomeApi) queryMappings(ctx echo.Context) error {
	mappings, err := api.deps.OutcomeSvc.QueryAllMappings(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if mappings == nil {
		mappings = []outcome.COPOMapping{}
	}
	return ctx.JSON(http.StatusOK, mappings)
}

func (api *outcomeApi) createMapping(ctx echo.Context) error {
	var data outcome.NewMapping
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMapping")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	m, err := api.deps.OutcomeSvc.CreateMapping(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *outcomeApi) updateMapping(ctx echo.Context) error {
	var data outcome.UpdateMapping
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMapping")
	}
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	m, err := api.deps.OutcomeSvc.UpdateMappingWeight(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *outcomeApi) deleteMapping(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	if err = api.deps.OutcomeSvc.DeleteMapping(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"deleted": true})
}
