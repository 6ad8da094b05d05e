package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "bandroom/internal/errors"
	"bandroom/internal/session"
	"bandroom/internal/view"
)

// NewErrorHandler returns the echo error handler. Domain errors keep their
// status; anything unexpected is logged and reported as a 500. Requests
// under /api get JSON, everything else gets the error page.
func NewErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message, code := classify(err)
		if status >= http.StatusInternalServerError {
			req := c.Request()
			log.ErrorContext(req.Context(), "request failed",
				"err", err,
				"method", req.Method,
				"uri", req.RequestURI,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
		}

		var writeErr error
		switch {
		case c.Request().Method == http.MethodHead:
			writeErr = c.NoContent(status)
		case strings.HasPrefix(c.Request().URL.Path, "/api/"):
			writeErr = c.JSON(status, apperrors.ErrorResponse{Error: message, Code: code})
		default:
			writeErr = c.Render(status, "error", view.Page{
				Title:   http.StatusText(status),
				Session: session.FromContext(c),
				Data:    pageMessage(err, message),
			})
		}
		if writeErr != nil {
			log.ErrorContext(c.Request().Context(), "write error response", "err", writeErr)
		}
	}
}

func classify(err error) (status int, message, code string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		code = strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
		switch m := he.Message.(type) {
		case apperrors.ErrorResponse:
			return status, m.Error, m.Code
		case string:
			return status, m, code
		default:
			return status, http.StatusText(status), code
		}
	}

	httpErr := apperrors.MapErrorToHTTP(err)
	return httpErr.StatusCode, httpErr.Message, httpErr.Code
}

// pageMessage prefers the visitor-facing wording for domain errors.
func pageMessage(err error, fallback string) string {
	if notice, ok := apperrors.NoticeFor(err); ok {
		return notice.Message
	}
	return fallback
}
