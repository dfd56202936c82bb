package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the echo.HTTPErrorHandler of the API. Framework errors
// keep their status and answer with the same {"error": ...} body as the
// handlers; unknown routes read "Not found".
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := msgInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch code {
		case http.StatusNotFound:
			msg = msgNotFound
		default:
			if s, ok := he.Message.(string); ok {
				msg = s
			} else {
				msg = http.StatusText(code)
			}
		}
	} else {
		slog.Error("unhandled error", "method", c.Request().Method, "path", c.Request().URL.Path, "err", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = errorJSON(c, code, msg)
	}
	if err != nil {
		slog.Error("write error response", "err", err)
	}
}
