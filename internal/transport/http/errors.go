package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/lib/logger/sl"
	"premium_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

const envProd = "prod"

// NewHTTPErrorHandler renders every error returned by a handler or
// middleware, panics included once Recover has converted them.
func NewHTTPErrorHandler(log *slog.Logger, env string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if env != envProd {
			body.Error = err.Error()
		}

		l := log.With(
			slog.String("method", c.Request().Method),
			slog.String("uri", c.Request().RequestURI),
			slog.Int("status", status),
			sl.Err(err),
		)
		switch {
		case status >= http.StatusInternalServerError:
			l.Error("request failed")
		case status == http.StatusNotFound && c.Path() == "":
			l.Debug("route not found")
		default:
			l.Warn("request rejected")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error("failed to write error response", sl.Err(err))
		}
	}
}

func render(err error) (int, response.ErrorResponse) {
	if appErr, ok := apperror.As(err); ok {
		return appErr.Status, response.ErrorResponse{
			Message: appErr.Message,
			Code:    appErr.Code,
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code == http.StatusRequestEntityTooLarge {
			return he.Code, response.ErrorResponse{
				Message: "File size too large",
				Code:    apperror.CodeFileTooLarge,
			}
		}

		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}

		return he.Code, response.ErrorResponse{Message: msg}
	}

	return http.StatusInternalServerError, response.ErrorResponse{
		Message: "Internal server error",
	}
}

func invalidRequest(err error) *apperror.AppError {
	e := apperror.BadRequest(apperror.CodeInvalidRequest, "Invalid request format")
	e.Err = err

	return e
}
