package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/studentms/internal/app/models/dto"
	"github.com/yigit/studentms/internal/app/services"
	"github.com/yigit/studentms/internal/middleware"
)

// StudentController handles student record administration endpoints
type StudentController struct {
	studentService services.IStudentService
	authService    services.IAuthService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.IStudentService, authService services.IAuthService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		authService:    authService,
		logger:         logger,
	}
}

// GetDashboard returns record totals and the first students in name order
// @Summary Admin dashboard
// @Description Returns student and department totals plus the first student records in name order.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard summary"
// @Failure 403 {object} dto.ErrorResponse "Access denied"
// @Router /admin/dashboard [get]
func (c *StudentController) GetDashboard(ctx *gin.Context) {
	resp, err := c.studentService.GetDashboard(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// GetStudents lists student records with optional filters
// @Summary List students
// @Description Lists student records. Supports search over name, username, course, hometown and department name, plus departmentId, minCgpa and semester filters.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search term"
// @Param departmentId query int false "Department ID"
// @Param minCgpa query string false "Minimum CGPA"
// @Param semester query int false "Semester"
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse} "Matching students"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter value"
// @Router /admin/students [get]
func (c *StudentController) GetStudents(ctx *gin.Context) {
	var filter dto.StudentFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid filter value")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.studentService.GetStudents(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// SearchStudents lists the students enrolled in a named department
// @Summary Search students by department
// @Description Returns the student records whose department matches the given name.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param department query string true "Department name"
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse} "Matching students"
// @Failure 400 {object} dto.ErrorResponse "Missing department name"
// @Router /admin/students/search [get]
func (c *StudentController) SearchStudents(ctx *gin.Context) {
	resp, err := c.studentService.SearchByDepartment(ctx.Request.Context(), ctx.Query("department"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// GetStudent returns a single student record
// @Summary Get student
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student record"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := c.pathID(ctx)
	if !ok {
		return
	}

	resp, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// CreateStudent adds a new student record
// @Summary Create student
// @Description Adds a student record. The sign-in account appears on the student's first login.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student data"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse} "Created student"
// @Failure 400 {object} dto.ErrorResponse "Invalid student data"
// @Failure 409 {object} dto.ErrorResponse "Username already taken"
// @Router /admin/students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.studentService.CreateStudent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(resp))
}

// UpdateStudent edits a student record
// @Summary Update student
// @Description Replaces a student record's fields. A role change follows through to the student's sign-in account.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Student data"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Updated student"
// @Failure 400 {object} dto.ErrorResponse "Invalid student data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := c.pathID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.studentService.UpdateStudent(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// DeleteStudent removes a student record
// @Summary Delete student
// @Description Removes a student record. An admin deleting their own record also loses the sign-in account and is signed out.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteStudentResponse} "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /admin/students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := c.pathID(ctx)
	if !ok {
		return
	}

	actorUsername := ctx.GetString(middleware.ContextUsername)

	selfDeleted, err := c.studentService.DeleteStudent(ctx.Request.Context(), id, actorUsername)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if selfDeleted {
		// The acting user just removed their own account; end the
		// session server-side as well.
		if userID := ctx.GetInt64(middleware.ContextUserID); userID > 0 {
			if err := c.authService.Logout(ctx.Request.Context(), userID); err != nil {
				c.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to revoke sessions after self-delete")
			}
		}
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.DeleteStudentResponse{
		Message:     "Student deleted",
		SelfDeleted: selfDeleted,
	}))
}

func (c *StudentController) pathID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid ID parameter")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
