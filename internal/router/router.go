// Package router assembles the gin engine and its route table.
package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-api/internal/handler"
	"github.com/noah-isme/academy-api/internal/middleware"
	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/service"
	"github.com/noah-isme/academy-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Students    *handler.StudentHandler
	Courses     *handler.CourseHandler
	Payments    *handler.PaymentHandler
	Assignments *handler.AssignmentHandler
	Submissions *handler.SubmissionHandler
	Dashboard   *handler.DashboardHandler
	Metrics     *handler.MetricsHandler
}

// Deps carries what New needs besides the handlers.
type Deps struct {
	Handlers       Handlers
	Tokens         middleware.TokenValidator
	Metrics        *service.MetricsService
	Logger         *zap.Logger
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
}

// New builds the engine with the shared middleware chain and all routes.
func New(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.WithResponseMeta())

	h := deps.Handlers
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if deps.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.APIPrefix)
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Tokens))

	admin := middleware.RequireRoles(models.RoleAdmin)
	student := middleware.RequireRoles(models.RoleStudent)

	secured.GET("/auth/profile", h.Auth.Profile)

	students := secured.Group("/students")
	students.POST("/update-fees", admin, h.Students.UpdateFees)
	students.POST("/assign-course", admin, h.Students.AssignCourse)
	students.POST("/remove-course", admin, h.Students.RemoveCourse)
	students.POST("", admin, h.Students.Create)
	students.GET("", admin, h.Students.List)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", admin, h.Students.Update)
	students.DELETE("/:id", admin, h.Students.Delete)

	courses := secured.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.GET("/:id", h.Courses.Get)
	courses.POST("", admin, h.Courses.Create)
	courses.PUT("/:id", admin, h.Courses.Update)
	courses.DELETE("/:id", admin, h.Courses.Delete)

	payments := secured.Group("/payments")
	payments.POST("", admin, h.Payments.Create)
	payments.GET("/student", student, h.Payments.Student)
	payments.GET("/all", admin, h.Payments.All)
	payments.GET("/export", admin, h.Payments.Export)

	assignments := secured.Group("/assignments")
	assignments.POST("", admin, h.Assignments.Create)
	assignments.GET("", admin, h.Assignments.List)
	assignments.GET("/student", student, h.Assignments.ListForStudent)
	assignments.GET("/:id", h.Assignments.Get)
	assignments.PUT("/:id", admin, h.Assignments.Update)
	assignments.DELETE("/:id", admin, h.Assignments.Delete)

	submissions := secured.Group("/submissions")
	submissions.POST("/submit", student, h.Submissions.Submit)
	submissions.GET("/student", student, h.Submissions.ListForStudent)
	submissions.GET("", admin, h.Submissions.List)
	submissions.GET("/:id", h.Submissions.Get)
	submissions.PUT("/:id/status", admin, h.Submissions.UpdateStatus)

	secured.GET("/dashboard/stats", admin, h.Dashboard.Stats)

	return r
}
