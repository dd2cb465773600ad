package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/skyvis/internal/backend"
	"github.com/samcharles93/skyvis/internal/scene"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// writeRunError maps a simulation failure onto an HTTP status. Kernel
// failures carry the substrate status code.
func writeRunError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, scene.ErrInvalidScene):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return writeError(c, http.StatusServiceUnavailable, "cancelled_error", err.Error(), "", "cancelled")
	}
	status := backend.StatusCode(err)
	code := "execution_failed"
	if status == backend.CodeUnavailable {
		code = "backend_unavailable"
	}
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"error": ResponseError{
			Message: err.Error(),
			Type:    "server_error",
			Code:    code,
			Status:  &status,
		},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var v T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, newInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return v, nil
}

// queryBool reads a boolean query parameter, falling back to def when absent.
func queryBool(c *echo.Context, name string, def bool) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, newInvalidRequest(fmt.Sprintf("%s: expected a boolean, got %q", name, raw))
	}
	return v, nil
}

func queryInt(c *echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, newInvalidRequest(fmt.Sprintf("%s: expected an integer, got %q", name, raw))
	}
	return v, nil
}
