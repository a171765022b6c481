package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/quizora/testroom-backend/internal/response"
	"github.com/quizora/testroom-backend/internal/service"
	"github.com/quizora/testroom-backend/internal/validator"
)

// AdminHandler handles admin-only teacher account management.
type AdminHandler struct {
	userService *service.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// ListTeachers godoc
// GET /api/v1/admin/teachers
func (h *AdminHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.userService.ListTeachers(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"teachers": teachers})
}

// CreateTeacher godoc
// POST /api/v1/admin/teachers
func (h *AdminHandler) CreateTeacher(c *gin.Context) {
	var req model.CreateTeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	teacher, err := h.userService.CreateTeacher(c.Request.Context(), &req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"teacher": teacher})
}

// DeleteTeacher godoc
// DELETE /api/v1/admin/teachers/:id
func (h *AdminHandler) DeleteTeacher(c *gin.Context) {
	teacherID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteTeacher(c.Request.Context(), teacherID); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
