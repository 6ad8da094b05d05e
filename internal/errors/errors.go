package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrKeyConflict is returned when a room key is already taken.
	ErrKeyConflict = errors.New("room key unavailable")
	// ErrRoomNotFound is returned when no room has the requested id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidRoomID is returned when a room id is not a valid identifier encoding.
	ErrInvalidRoomID = errors.New("invalid room id")
	// ErrInvalidKey is returned when a supplied room key matches no room.
	ErrInvalidKey = errors.New("invalid room key")
	// ErrRoomKeyRequired is returned when a room is created without a key.
	ErrRoomKeyRequired = errors.New("room key required")
	// ErrUnauthorized is returned when an operation needs a logged in session.
	ErrUnauthorized = errors.New("login required")
	// ErrUserAlreadyExists is returned when a username is taken.
	ErrUserAlreadyExists = errors.New("username already exists")
	// ErrAlreadyLoggedIn is returned when login or register runs inside an authenticated session.
	ErrAlreadyLoggedIn = errors.New("already logged in")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return NewHTTPError(http.StatusNotFound, ErrRoomNotFound.Error(), "ROOM_NOT_FOUND")
	case errors.Is(err, ErrInvalidRoomID):
		return NewHTTPError(http.StatusNotFound, ErrInvalidRoomID.Error(), "INVALID_ROOM_ID")
	case errors.Is(err, ErrKeyConflict):
		return NewHTTPError(http.StatusConflict, ErrKeyConflict.Error(), "KEY_CONFLICT")
	case errors.Is(err, ErrInvalidKey):
		return NewHTTPError(http.StatusForbidden, ErrInvalidKey.Error(), "INVALID_KEY")
	case errors.Is(err, ErrRoomKeyRequired):
		return NewHTTPError(http.StatusBadRequest, ErrRoomKeyRequired.Error(), "ROOM_KEY_REQUIRED")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthorized.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrUserAlreadyExists.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrAlreadyLoggedIn):
		return NewHTTPError(http.StatusConflict, ErrAlreadyLoggedIn.Error(), "ALREADY_LOGGED_IN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// Notice categories, used as CSS classes by the page templates.
const (
	CategorySuccess = "success"
	CategoryError   = "error"
)

// Notice is a one-shot message shown to the visitor on the next page.
type Notice struct {
	Category string
	Message  string
}

// NoticeFor translates a domain error into the message shown to the visitor.
// The second return value is false for errors that are not part of the domain taxonomy.
func NoticeFor(err error) (Notice, bool) {
	msg := ""
	switch {
	case errors.Is(err, ErrKeyConflict):
		msg = "Sorry that room key is unavailable"
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrInvalidRoomID):
		msg = "Sorry, that room could not be found"
	case errors.Is(err, ErrInvalidKey):
		msg = "Invalid room key"
	case errors.Is(err, ErrRoomKeyRequired):
		msg = "Please choose a room key"
	case errors.Is(err, ErrUnauthorized):
		msg = "You must be logged in to do that"
	case errors.Is(err, ErrUserAlreadyExists):
		msg = "Username already exists"
	case errors.Is(err, ErrAlreadyLoggedIn):
		msg = "You are already logged in"
	case errors.Is(err, ErrInvalidCredentials):
		msg = "Invalid username/password combination"
	default:
		return Notice{}, false
	}
	return Notice{Category: CategoryError, Message: msg}, true
}
