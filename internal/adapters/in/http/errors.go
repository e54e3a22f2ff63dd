package http

import (
	"errors"
	"fmt"
	"net/http"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/logger"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorHandler renders every error returned by a handler or middleware.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := toErrorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.FromCtx(c.Request().Context(), log).Error("Request failed",
				zap.Int("status", status),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.FromCtx(c.Request().Context(), log).Warn("Failed to write error response", zap.Error(err))
		}
	}
}

func toErrorResponse(err error) (int, errorResponse) {
	var (
		httpErr     *echo.HTTPError
		requestErr  *openapi3filter.RequestError
		rejectedErr *errs.ProviderRejectedError
	)

	switch {
	case errors.As(err, &httpErr):
		if httpErr.Internal != nil && errors.Is(httpErr.Internal, errs.ErrUnauthorized) {
			return http.StatusUnauthorized, errorResponse{Code: "unauthorized", Message: "authentication required"}
		}
		return httpErr.Code, errorResponse{Code: codeForStatus(httpErr.Code), Message: fmt.Sprint(httpErr.Message)}
	case errors.As(err, &requestErr):
		body := errorResponse{Code: "invalid_request", Message: requestErr.Error()}
		if requestErr.Parameter != nil {
			body.Field = requestErr.Parameter.Name
		}
		return http.StatusBadRequest, body
	case errors.Is(err, errs.ErrInvalidStatusCode):
		return http.StatusUnprocessableEntity, errorResponse{Code: "invalid_status_code", Message: err.Error(), Field: "to_status_code"}
	case errs.IsValidation(err):
		return http.StatusBadRequest, errorResponse{Code: "validation_failed", Message: err.Error(), Field: errs.FieldOf(err)}
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, errorResponse{Code: "unauthorized", Message: err.Error()}
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, errorResponse{Code: "forbidden", Message: err.Error()}
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound, errorResponse{Code: "not_found", Message: err.Error()}
	case errors.Is(err, errs.ErrConcurrencyConflict):
		return http.StatusConflict, errorResponse{Code: "conflict", Message: err.Error()}
	case errors.As(err, &rejectedErr):
		return http.StatusUnprocessableEntity, errorResponse{Code: "provider_rejected", Message: rejectedErr.Message}
	case errors.Is(err, errs.ErrProviderUnavailable):
		return http.StatusBadGateway, errorResponse{Code: "provider_unavailable", Message: "delivery provider is unavailable"}
	}
	return http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: "internal server error"}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if status >= http.StatusInternalServerError {
		return "internal_error"
	}
	return "error"
}
