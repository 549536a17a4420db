package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core/school"
)

// schoolAPI serves the dependent records of one school. Every route is
// protected; the school scope is always the authenticated account's ID taken
// from the token claims, never from the request body.
type schoolAPI struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(app *echo.Echo, deps ServerDeps) {
	api := schoolAPI{
		svc:      deps.SchoolSvc,
		validate: deps.Validate,
	}
	jwt := jwtMiddleware(deps.Conf)

	app.POST("/ClassAdd", api.createClass, jwt)
	app.GET("/Classes", api.listClasses, jwt)
	app.POST("/StudentReg", api.createStudent, jwt)
	app.GET("/Students", api.listStudents, jwt)
	app.POST("/TeacherReg", api.createTeacher, jwt)
	app.GET("/Teachers", api.listTeachers, jwt)
	app.POST("/SubjectAdd", api.createSubject, jwt)
	app.GET("/Subjects", api.listSubjects, jwt)
	app.POST("/NoticeAdd", api.createNotice, jwt)
	app.GET("/Notices", api.listNotices, jwt)
	app.POST("/ComplainAdd", api.createComplaint, jwt)
	app.GET("/Complains", api.listComplaints, jwt)
}

func (api schoolAPI) createClass(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api schoolAPI) listClasses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api schoolAPI) createStudent(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	std, err := api.svc.CreateStudent(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api schoolAPI) listStudents(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	students, err := api.svc.QueryStudents(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api schoolAPI) createTeacher(ctx echo.Context) error {
	var data school.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	tch, err := api.svc.CreateTeacher(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api schoolAPI) listTeachers(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	teachers, err := api.svc.QueryTeachers(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api schoolAPI) createSubject(ctx echo.Context) error {
	var data school.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api schoolAPI) listSubjects(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api schoolAPI) createNotice(ctx echo.Context) error {
	var data school.NewNotice
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	ntc, err := api.svc.CreateNotice(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ntc)
}

func (api schoolAPI) listNotices(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	notices, err := api.svc.QueryNotices(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, notices)
}

func (api schoolAPI) createComplaint(ctx echo.Context) error {
	var data school.NewComplaint
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	cpl, err := api.svc.CreateComplaint(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cpl)
}

func (api schoolAPI) listComplaints(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	complaints, err := api.svc.QueryComplaints(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, complaints)
}
