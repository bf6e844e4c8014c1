package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

func writeEnvelope(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

// SuccessResponse writes a 200 with the payload.
func SuccessResponse(c echo.Context, data interface{}) error {
	return writeEnvelope(c, http.StatusOK, data)
}

// ListResponse writes a 200 with rows and a total.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return writeEnvelope(c, http.StatusOK, &ListDataResponse{
		Rows:  rows,
		Total: total,
	})
}

// BadRequestResponse writes a 400 carrying the validation details.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return writeEnvelope(c, http.StatusBadRequest, data)
}

// AppErrorResponse writes an AppError with its own status; anything else
// becomes an opaque 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return writeEnvelope(c, appErr.Status, []*AppError{appErr})
	}
	return writeEnvelope(c, http.StatusInternalServerError, "Something went wrong")
}
