// Package handler contains the HTTP handlers of the API.
package handler

import (
	"net/http"
	"strings"
	"time"

	"tracker/internal/delivery/api/response"
	"tracker/internal/delivery/api/validator"
	"tracker/internal/domain/entity"
	domainerrors "tracker/internal/domain/errors"
	"tracker/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// decode binds and validates req. When it returns false the error response
// has already been written and err is what the handler should return.
func decode(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, response.BindingError(c, "Malformed request body")
	}
	if err := c.Validate(req); err != nil {
		if fields := validator.FieldErrors(err); fields != nil {
			return false, response.BadRequestWithDetails(c, domainerrors.ErrValidationFailed.ErrorCode(), domainerrors.ErrValidationFailed.Message(), fields)
		}

		return false, response.BadRequest(c, domainerrors.ErrValidationFailed.ErrorCode(), err.Error())
	}

	return true, nil
}

// pathID parses the :id route parameter. Malformed ids are reported as
// not found, the same as ids owned by someone else.
func pathID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))

	return id, err == nil
}

func notFound(c echo.Context, subject string) error {
	return response.Error(c, http.StatusNotFound, domainerrors.ErrNotFound.ErrorCode(), subject+" not found", nil)
}

// Date is a calendar day on the wire, "2006-01-02".
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(entity.DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t

	return nil
}

// parseBound accepts RFC3339 timestamps or bare dates.
func parseBound(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(entity.DateLayout, raw)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// createdBetween reads the start and end query parameters.
func createdBetween(c echo.Context) (usecase.CreatedBetween, error) {
	start, err := parseBound(c.QueryParam("start"))
	if err != nil {
		return usecase.CreatedBetween{}, domainerrors.ErrValidationFailed.WithDetails("start must be RFC3339 or YYYY-MM-DD")
	}
	end, err := parseBound(c.QueryParam("end"))
	if err != nil {
		return usecase.CreatedBetween{}, domainerrors.ErrValidationFailed.WithDetails("end must be RFC3339 or YYYY-MM-DD")
	}

	return usecase.CreatedBetween{Start: start, End: end}, nil
}
