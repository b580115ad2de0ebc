package bridge

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wachiwi/camera-preview/pkg/preview"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusOf maps an adapter error onto an HTTP status: bad input 400,
// missing container 404, other preconditions 409, capability gaps 501,
// device failures 502.
func statusOf(err error) int {
	var pe *preview.Error
	if !errors.As(err, &pe) {
		return http.StatusInternalServerError
	}
	switch pe.Code {
	case preview.CodeInvalidArgument, preview.CodeInvalidFocusCoordinates,
		preview.CodeConflictingSizeSpec, preview.CodeUnsupportedZoomLevel:
		return http.StatusBadRequest
	case preview.CodeContainerNotFound:
		return http.StatusNotFound
	}
	switch pe.Code.Category() {
	case preview.CategoryCapability:
		return http.StatusNotImplemented
	case preview.CategoryDevice:
		return http.StatusBadGateway
	default:
		return http.StatusConflict
	}
}

func writeError(c *gin.Context, err error) int {
	status := statusOf(err)
	body := errorBody{Code: "INTERNAL", Message: err.Error()}
	var pe *preview.Error
	if errors.As(err, &pe) {
		body.Code = string(pe.Code)
		body.Message = pe.Message
	}
	c.AbortWithStatusJSON(status, body)
	return status
}

func invalidArgument(msg string, err error) error {
	return &preview.Error{Code: preview.CodeInvalidArgument, Message: msg, Underlying: err}
}
