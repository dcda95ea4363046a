package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rts-transit/rapidride/internal/repository"
)

// AlertHandler manages service alerts. Reading is public; posting and
// deleting require the ADMIN role.
type AlertHandler struct {
	Alerts *repository.AlertRepo
}

func NewAlertHandler(a *repository.AlertRepo) *AlertHandler {
	return &AlertHandler{Alerts: a}
}

type createAlertReq struct {
	Message string `json:"message"`
}

type alertResp struct {
	ID       uint64    `json:"id"`
	Message  string    `json:"message"`
	IssuedAt time.Time `json:"issued_at"`
}

// List returns all alerts, newest first.
func (h *AlertHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	alerts, err := h.Alerts.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]alertResp, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertResp{ID: a.ID, Message: a.Message, IssuedAt: a.IssuedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// Create posts a new alert on behalf of the authenticated admin.
func (h *AlertHandler) Create(c echo.Context) error {
	uid, ok := contextUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createAlertReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Alerts.Create(ctx, strings.TrimSpace(req.Message), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create alert failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Delete removes an alert by id.
func (h *AlertHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid alert id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Alerts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "alert not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
