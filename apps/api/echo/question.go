package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/question"
)

type questionApi struct {
	deps ServerDeps
}

// registerQuestionAPI wires the question bank endpoints. A subject's bank is
// private to its owning teacher and admins, reads included.
func registerQuestionAPI(g *echo.Group, deps ServerDeps) {
	api := questionApi{deps: deps}

	g.GET("/subjects/:id/questions", api.query, teacherMiddleware)
	g.POST("/subjects/:id/questions", api.create, teacherMiddleware)

	qg := g.Group("/questions", teacherMiddleware)
	qg.GET("/:id", api.retrieve)
	qg.PUT("/:id", api.update)
	qg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *questionApi) query(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}

	filter := question.QueryFilter{
		Type:       question.QuestionType(ctx.QueryParam("type")),
		Difficulty: question.Difficulty(ctx.QueryParam("difficulty")),
		COID:       ctx.QueryParam("co_id"),
	}
	if tags := ctx.QueryParam("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}

	questions, err := api.deps.QuestionSvc.Filter(ctx.Request().Context(), actor, ctx.Param("id"), filter)
	if err != nil {
		return err
	}
	if questions == nil {
		questions = []question.Question{}
	}
	return ctx.JSON(http.StatusOK, questions)
}

func (api *questionApi) create(ctx echo.Context) error {
	var data question.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	q, err := api.deps.QuestionSvc.Create(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) retrieve(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	q, err := api.deps.QuestionSvc.GetByID(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) update(ctx echo.Context) error {
	var data question.UpdateQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuestion")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	q, err := api.deps.QuestionSvc.Update(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *questionApi) destroy(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return err
	}
	if err = api.deps.QuestionSvc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"deleted": true})
}
