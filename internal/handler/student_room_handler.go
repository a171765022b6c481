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

// StudentRoomHandler handles the student side of a room: joining, taking
// the test, and reading the graded result.
type StudentRoomHandler struct {
	roomService       *service.RoomService
	enrollmentService *service.EnrollmentService
	resultService     *service.ResultService
}

// NewStudentRoomHandler creates a new StudentRoomHandler.
func NewStudentRoomHandler(
	roomService *service.RoomService,
	enrollmentService *service.EnrollmentService,
	resultService *service.ResultService,
) *StudentRoomHandler {
	return &StudentRoomHandler{
		roomService:       roomService,
		enrollmentService: enrollmentService,
		resultService:     resultService,
	}
}

// Info godoc
// GET /api/v1/student/rooms/:id
// Returns the room's public info so the join page can show its name and
// whether it is still open.
func (h *StudentRoomHandler) Info(c *gin.Context) {
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	room, err := h.roomService.Get(c.Request.Context(), roomID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"room": gin.H{
			"id":     room.ID,
			"name":   room.Name,
			"status": room.Status,
		},
	})
}

// Join godoc
// POST /api/v1/student/rooms/:id/join
// Enrolls the student, assigning a random variant. Joining again returns
// the existing enrollment.
func (h *StudentRoomHandler) Join(c *gin.Context) {
	claims := middleware.GetClaims(c)
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	enrollment, err := h.enrollmentService.Join(c.Request.Context(), claims.UserID, roomID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// Paper godoc
// GET /api/v1/student/rooms/:id/questions
// Returns the assigned variant's questions, answer key stripped, plus any
// answers already saved.
func (h *StudentRoomHandler) Paper(c *gin.Context) {
	claims := middleware.GetClaims(c)
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	paper, err := h.enrollmentService.GetPaper(c.Request.Context(), claims.UserID, roomID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// Submit godoc
// POST /api/v1/student/rooms/:id/answers
// Replaces the student's full answer set. Allowed any number of times
// while the room is open.
func (h *StudentRoomHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	enrollment, err := h.enrollmentService.Submit(c.Request.Context(), claims.UserID, roomID, &req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollment": enrollment})
}

// Result godoc
// GET /api/v1/student/rooms/:id/result
// Returns the student's own graded result once the room has closed.
func (h *StudentRoomHandler) Result(c *gin.Context) {
	claims := middleware.GetClaims(c)
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.resultService.GetForStudent(c.Request.Context(), claims.UserID, roomID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
