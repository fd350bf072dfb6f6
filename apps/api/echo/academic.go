package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core/academic"
)

type academicApi struct {
	deps ServerDeps
}

// registerAcademicAPI wires the institute hierarchy endpoints. Reads are open
// to any authenticated user; writes are restricted to admins.
func registerAcademicAPI(g *echo.Group, deps ServerDeps) {
	api := academicApi{deps: deps}

	g.GET("/departments", api.queryDepartments)
	g.POST("/departments", api.createDepartment, adminMiddleware)
	g.GET("/departments/:id", api.retrieveDepartment)

	g.GET("/programs", api.queryPrograms)
	g.POST("/programs", api.createProgram, adminMiddleware)
	g.GET("/programs/:id", api.retrieveProgram)

	g.GET("/courses", api.queryCourses)
	g.POST("/courses", api.createCourse, adminMiddleware)
	g.GET("/courses/:id", api.retrieveCourse)

	g.GET("/subjects", api.querySubjects)
	g.POST("/subjects", api.createSubject, adminMiddleware)
	g.GET("/subjects/:id", api.retrieveSubject)
}

// Handlers

func (api *academicApi) queryDepartments(ctx echo.Context) error {
	depts, err := api.deps.AcademicSvc.QueryAllDepartments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if depts == nil {
		depts = []academic.Department{}
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *academicApi) createDepartment(ctx echo.Context) error {
	var data academic.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	dept, err := api.deps.AcademicSvc.CreateDepartment(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *academicApi) retrieveDepartment(ctx echo.Context) error {
	dept, err := api.deps.AcademicSvc.GetDepartmentByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *academicApi) queryPrograms(ctx echo.Context) error {
	progs, err := api.deps.AcademicSvc.QueryAllPrograms(ctx.Request().Context(), ctx.QueryParam("dept_id"))
	if err != nil {
		return errors.Wrap(err, "querying programs")
	}
	if progs == nil {
		progs = []academic.Program{}
	}
	return ctx.JSON(http.StatusOK, progs)
}

func (api *academicApi) createProgram(ctx echo.Context) error {
	var data academic.NewProgram
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgram")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	prog, err := api.deps.AcademicSvc.CreateProgram(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *academicApi) retrieveProgram(ctx echo.Context) error {
	prog, err := api.deps.AcademicSvc.GetProgramByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *academicApi) queryCourses(ctx echo.Context) error {
	courses, err := api.deps.AcademicSvc.QueryAllCourses(ctx.Request().Context(), ctx.QueryParam("program_id"))
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []academic.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *academicApi) createCourse(ctx echo.Context) error {
	var data academic.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	crs, err := api.deps.AcademicSvc.CreateCourse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *academicApi) retrieveCourse(ctx echo.Context) error {
	crs, err := api.deps.AcademicSvc.GetCourseByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *academicApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.deps.AcademicSvc.QueryAllSubjects(ctx.Request().Context(), ctx.QueryParam("course_id"))
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []academic.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *academicApi) createSubject(ctx echo.Context) error {
	var data academic.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	data.Clean()
	if err := api.deps.Validate.Struct(&data); err != nil {
		return err
	}

	sub, err := api.deps.AcademicSvc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *academicApi) retrieveSubject(ctx echo.Context) error {
	sub, err := api.deps.AcademicSvc.GetSubjectByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}
