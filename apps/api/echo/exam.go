package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/exam"
)

// heartbeatInterval keeps idle SSE connections from being reaped by proxies.
const heartbeatInterval = 25 * time.Second

type examApi struct {
	deps ServerDeps
}

func registerExamAPI(g *echo.Group, deps ServerDeps) {
	api := examApi{deps: deps}

	g.GET("/exams", api.query)
	g.GET("/exams/:id", api.retrieve)
	g.GET("/exams/:id/events", api.events)
}

// Handlers

func (api *examApi) query(ctx echo.Context) error {
	exams, err := api.deps.ExamSvc.QueryAll(ctx.Request().Context(), ctx.QueryParam("subject_id"))
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	if exams == nil {
		exams = []exam.Exam{}
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *examApi) retrieve(ctx echo.Context) error {
	ex, err := api.deps.ExamSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ex)
}

// events streams the exam's room events over SSE until the client disconnects.
func (api *examApi) events(ctx echo.Context) error {
	ex, err := api.deps.ExamSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	sub := api.deps.Broadcaster.Join(ex.ID)
	defer sub.Leave()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case evt, ok := <-sub.Events():
			if !ok {
				return nil
			}
			data, err := json.Marshal(evt.Data)
			if err != nil {
				api.deps.Logger.Error("marshaling room event", err)
				continue
			}
			fmt.Fprintf(res, "event: %s\ndata: %s\n\n", evt.Name, data)
			res.Flush()
		case <-heartbeat.C:
			fmt.Fprint(res, ": ping\n\n")
			res.Flush()
		}
	}
}
