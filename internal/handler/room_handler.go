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

// RoomHandler handles the teacher's room lifecycle endpoints.
type RoomHandler struct {
	roomService   *service.RoomService
	resultService *service.ResultService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(roomService *service.RoomService, resultService *service.ResultService) *RoomHandler {
	return &RoomHandler{roomService: roomService, resultService: resultService}
}

// Create godoc
// POST /api/v1/teacher/rooms
// Opens a room for one of the teacher's tests.
func (h *RoomHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.CreateRoomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	room, err := h.roomService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"room": room})
}

// List godoc
// GET /api/v1/teacher/rooms
// Lists the teacher's rooms with test summary and student counts.
func (h *RoomHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)

	rooms, err := h.roomService.ListByTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

// Get godoc
// GET /api/v1/teacher/rooms/:id
// Returns one of the teacher's rooms.
func (h *RoomHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	room, err := h.roomService.GetOwned(c.Request.Context(), claims.UserID, roomID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"room": room})
}

// Close godoc
// POST /api/v1/teacher/rooms/:id/close
// Closes the room and grades every enrollment before responding. The
// grading report lists any enrollments that could not be graded.
func (h *RoomHandler) Close(c *gin.Context) {
	claims := middleware.GetClaims(c)
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	room, report, err := h.roomService.Close(c.Request.Context(), claims.UserID, roomID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"room":    room,
		"grading": report,
	})
}

// Results godoc
// GET /api/v1/teacher/rooms/:id/results
// Returns every graded result of the room with student names.
func (h *RoomHandler) Results(c *gin.Context) {
	claims := middleware.GetClaims(c)
	roomID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	results, err := h.resultService.ListForTeacher(c.Request.Context(), claims.UserID, roomID)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}
