package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizora/testroom-backend/internal/middleware"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/quizora/testroom-backend/internal/response"
	"github.com/quizora/testroom-backend/internal/service"
	"github.com/quizora/testroom-backend/internal/validator"
)

// TestHandler handles the teacher's test catalog endpoints.
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// Create godoc
// POST /api/v1/teacher/tests
// Creates a test with its full variant tree in one request.
func (h *TestHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	detail, err := h.testService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"test": detail})
}

// List godoc
// GET /api/v1/teacher/tests
// Lists the teacher's tests.
func (h *TestHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	tests, err := h.testService.List(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Get godoc
// GET /api/v1/teacher/tests/:id
// Returns one of the teacher's tests with the full tree and answer keys.
func (h *TestHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	detail, err := h.testService.Get(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"test": detail})
}

// Delete godoc
// DELETE /api/v1/teacher/tests/:id
// Removes a test and everything under it.
func (h *TestHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	testID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), claims.UserID, testID); err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
