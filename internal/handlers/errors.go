package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

var kindStatus = map[services.Kind]int{
	services.KindNotFound:         http.StatusNotFound,
	services.KindConflict:         http.StatusConflict,
	services.KindInvalidOperation: http.StatusBadRequest,
	services.KindValidation:       http.StatusBadRequest,
	services.KindUnauthorized:     http.StatusUnauthorized,
}

var statusKind = map[int]services.Kind{
	http.StatusBadRequest:   services.KindValidation,
	http.StatusUnauthorized: services.KindUnauthorized,
	http.StatusNotFound:     services.KindNotFound,
	http.StatusConflict:     services.KindConflict,
}

// StatusCode is the HTTP status err is rendered with.
func StatusCode(err error) int {
	status, _ := describe(err)
	return status
}

func describe(err error) (int, errorDetail) {
	if e, ok := services.AsError(err); ok {
		status, known := kindStatus[e.Kind]
		if !known {
			status = http.StatusInternalServerError
		}
		return status, errorDetail{Kind: string(e.Kind), Message: e.Error()}
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorDetail{Kind: string(services.KindValidation), Message: ve.Error()}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		kind, ok := statusKind[he.Code]
		if !ok {
			kind = "http_error"
		}
		return he.Code, errorDetail{Kind: string(kind), Message: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, errorDetail{Kind: "internal_error", Message: "internal server error"}
}

// ErrorHandler renders every failure as {"success": false, "error": {...}}.
// Internal errors are logged and their message is not exposed.
func ErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, detail := describe(err)
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, errorResponse{Success: false, Error: detail})
		}
		if err != nil {
			logger.WithError(err).Error("failed to write error response")
		}
	}
}
