package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizora/testroom-backend/internal/model"
	"github.com/quizora/testroom-backend/internal/response"
	"github.com/quizora/testroom-backend/internal/service"
)

// pathUUID parses a UUID path parameter, writing the error response on
// failure. The caller returns immediately when ok is false.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failFromError maps service errors onto the response envelope. Anything
// unrecognized is a 500.
func failFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrUserExists)
	case errors.Is(err, service.ErrRoomAlreadyClosed):
		response.Fail(c, http.StatusConflict, response.ErrRoomAlreadyClosed)
	case errors.Is(err, service.ErrRoomClosed):
		response.Fail(c, http.StatusBadRequest, response.ErrRoomClosed)
	case errors.Is(err, service.ErrNotEnrolled):
		response.Fail(c, http.StatusBadRequest, response.ErrNotEnrolled)
	case errors.Is(err, service.ErrNoVariants):
		response.Fail(c, http.StatusBadRequest, response.ErrNoVariants)
	case errors.Is(err, service.ErrResultNotReady):
		response.Fail(c, http.StatusNotFound, response.ErrResultNotReady)
	case errors.Is(err, service.ErrUnknownQuestion),
		errors.Is(err, model.ErrAnswerShape),
		errors.Is(err, service.ErrQuestionShape):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"detail": err.Error()})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
