package handler

import (
	"net/http"

	"tracker/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// HealthCheck reports liveness only.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, HealthResponse{Status: "ok"})
}
