package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "bandroom/internal/errors"
	"bandroom/internal/model"
	"bandroom/internal/service"
	"bandroom/internal/session"
)

// APIHandler serves the read-only JSON endpoints.
type APIHandler struct {
	roomService service.RoomService
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(roomService service.RoomService) *APIHandler {
	return &APIHandler{roomService: roomService}
}

// MeResponse describes the caller's session.
type MeResponse struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// ListRooms godoc
// @Summary List rooms
// @Description Room keys are never included.
// @Tags rooms
// @Produce json
// @Success 200 {array} model.Room
// @Failure 500 {object} errors.ErrorResponse
// @Router /rooms [get]
func (h *APIHandler) ListRooms(c echo.Context) error {
	rooms := []model.Room{}
	for room, err := range h.roomService.ListRooms(c.Request().Context()) {
		if err != nil {
			return err
		}
		rooms = append(rooms, room)
	}
	return c.JSON(http.StatusOK, rooms)
}

// GetRoom godoc
// @Summary Get a room
// @Tags rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} model.Room
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /rooms/{id} [get]
func (h *APIHandler) GetRoom(c echo.Context) error {
	room, err := h.roomService.GetRoomByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			return err
		}
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, room)
}

// Me godoc
// @Summary Current session
// @Tags session
// @Produce json
// @Success 200 {object} MeResponse
// @Router /me [get]
func (h *APIHandler) Me(c echo.Context) error {
	s := session.FromContext(c)
	resp := MeResponse{Authenticated: s.Authenticated()}
	if resp.Authenticated {
		resp.Username = s.Username
		if !s.ExpiresAt.IsZero() {
			expires := s.ExpiresAt
			resp.ExpiresAt = &expires
		}
	}
	return c.JSON(http.StatusOK, resp)
}
