package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "bandroom/internal/errors"
	"bandroom/internal/model"
	"bandroom/internal/service"
	"bandroom/internal/session"
)

const (
	landingPath = "/the_band_room"
	browsePath  = "/browse_rooms"
	loginPath   = "/login"
)

// RoomHandler serves the room pages.
type RoomHandler struct {
	roomService service.RoomService
	pages       *Pages
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(roomService service.RoomService, pages *Pages) *RoomHandler {
	return &RoomHandler{roomService: roomService, pages: pages}
}

// RoomForm is the create-room form.
type RoomForm struct {
	BandName    string `form:"band_name" validate:"max=255"`
	RoomKey     string `form:"room_key" validate:"max=255"`
	BandNotes   string `form:"band_notes" validate:"max=5000"`
	SocialMedia string `form:"social_media" validate:"max=512"`
}

// OpenRoomForm is the band name and key pair used to open a room.
type OpenRoomForm struct {
	BandName string `form:"band_name"`
	RoomKey  string `form:"room_key"`
}

// UpdateRoomForm is the edit-room form.
type UpdateRoomForm struct {
	BandName    string `form:"band_name" validate:"max=255"`
	BandNotes   string `form:"band_notes" validate:"max=5000"`
	SocialMedia string `form:"social_media" validate:"max=512"`
}

// DeleteRoomForm carries the key confirming a delete.
type DeleteRoomForm struct {
	RoomKey string `form:"room_key"`
}

var errFieldTooLong = apperrors.Notice{Category: apperrors.CategoryError, Message: "One of the fields is too long"}

// Landing shows the create-room and open-room forms.
func (h *RoomHandler) Landing(c echo.Context) error {
	return h.pages.Render(c, http.StatusOK, "add_room", "", nil)
}

// AddRoom creates a room from the landing form.
func (h *RoomHandler) AddRoom(c echo.Context) error {
	var form RoomForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		return h.pages.Redirect(c, landingPath, errFieldTooLong)
	}

	_, err := h.roomService.CreateRoom(c.Request().Context(), model.RoomInput{
		BandName:    form.BandName,
		RoomKey:     form.RoomKey,
		BandNotes:   form.BandNotes,
		SocialMedia: form.SocialMedia,
	}, session.FromContext(c))
	if err != nil {
		return h.pages.Fail(c, landingPath, err)
	}

	return h.pages.Success(c, browsePath, "Room created successfully")
}

// BrowseRooms lists every room.
func (h *RoomHandler) BrowseRooms(c echo.Context) error {
	var rooms []model.Room
	for room, err := range h.roomService.ListRooms(c.Request().Context()) {
		if err != nil {
			return err
		}
		rooms = append(rooms, room)
	}
	return h.pages.Render(c, http.StatusOK, "browse_rooms", "Rooms", rooms)
}

// MyRoom shows a single room. An unknown or malformed id goes back to the room list.
func (h *RoomHandler) MyRoom(c echo.Context) error {
	room, err := h.roomService.GetRoomByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.pages.Fail(c, browsePath, err)
	}
	return h.pages.Render(c, http.StatusOK, "my_room", room.BandName, room)
}

// OpenRoom finds a room by band name and key and redirects to it.
func (h *RoomHandler) OpenRoom(c echo.Context) error {
	var form OpenRoomForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	room, err := h.roomService.GetRoomByNameAndKey(c.Request().Context(), form.BandName, form.RoomKey)
	if err != nil {
		return h.pages.Fail(c, landingPath, err)
	}
	if room == nil {
		return h.pages.Fail(c, landingPath, apperrors.ErrRoomNotFound)
	}
	return c.Redirect(http.StatusSeeOther, "/my_room/"+room.ID)
}

// EditRoom shows the edit form to logged in visitors.
func (h *RoomHandler) EditRoom(c echo.Context) error {
	if !session.FromContext(c).Authenticated() {
		return h.pages.Fail(c, loginPath, apperrors.ErrUnauthorized)
	}

	room, err := h.roomService.GetRoomByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.pages.Fail(c, browsePath, err)
	}
	return h.pages.Render(c, http.StatusOK, "edit_room", "Edit "+room.BandName, room)
}

// UpdateRoom saves the edit form for logged in visitors.
func (h *RoomHandler) UpdateRoom(c echo.Context) error {
	if !session.FromContext(c).Authenticated() {
		return h.pages.Fail(c, loginPath, apperrors.ErrUnauthorized)
	}

	id := c.Param("id")
	roomPath := "/my_room/" + id

	var form UpdateRoomForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		return h.pages.Redirect(c, "/edit_room/"+id, errFieldTooLong)
	}

	err := h.roomService.UpdateRoom(c.Request().Context(), id, model.RoomUpdate{
		BandName:    form.BandName,
		BandNotes:   form.BandNotes,
		SocialMedia: form.SocialMedia,
	})
	if err != nil {
		return h.pages.Fail(c, browsePath, err)
	}

	return h.pages.Success(c, roomPath, "Room updated")
}

// DeleteRoom removes a room when the visitor is logged in and supplies a valid key.
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
	id := c.Param("id")

	var form DeleteRoomForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	err := h.roomService.DeleteRoom(c.Request().Context(), id, form.RoomKey, session.FromContext(c))
	switch {
	case err == nil:
		return h.pages.Success(c, browsePath, "Room deleted")
	case errors.Is(err, apperrors.ErrUnauthorized):
		return h.pages.Fail(c, loginPath, err)
	case errors.Is(err, apperrors.ErrInvalidKey):
		return h.pages.Fail(c, "/my_room/"+id, err)
	default:
		return h.pages.Fail(c, browsePath, err)
	}
}
