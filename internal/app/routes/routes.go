package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentms/internal/app/controllers"
	"github.com/yigit/studentms/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	studentController *controllers.StudentController,
	departmentController *controllers.DepartmentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Departments are public: the registration form needs them before
	// the caller has an account.
	v1.GET("/departments", departmentController.GetDepartments)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.GET("/me", authController.GetProfile)
	}

	// --- Admin routes ---
	// RequireAdmin consults the stored role on each request, so these
	// routes track demotions immediately.
	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RequireAdmin())
	{
		admin.GET("/dashboard", studentController.GetDashboard)

		students := admin.Group("/students")
		{
			students.GET("", studentController.GetStudents)
			students.GET("/search", studentController.SearchStudents)
			students.POST("", studentController.CreateStudent)
			students.GET("/:id", studentController.GetStudent)
			students.PUT("/:id", studentController.UpdateStudent)
			students.DELETE("/:id", studentController.DeleteStudent)
		}

		departments := admin.Group("/departments")
		{
			departments.POST("", departmentController.CreateDepartment)
			departments.PUT("/:id", departmentController.UpdateDepartment)
			departments.DELETE("/:id", departmentController.DeleteDepartment)
		}
	}
}
