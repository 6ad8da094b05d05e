package router

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"bandroom/internal/auth"
	"bandroom/internal/config"
	"bandroom/internal/handler"
	"bandroom/internal/logging"
	"bandroom/internal/session"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Log         *slog.Logger
	Renderer    echo.Renderer
	JWT         *auth.JWTService
	Tokens      auth.TokenStoreInterface
	RoomHandler *handler.RoomHandler
	AuthHandler *handler.AuthHandler
	APIHandler  *handler.APIHandler
	Health      func(c echo.Context) error
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, d Deps) {
	e.Renderer = d.Renderer
	e.HTTPErrorHandler = handler.NewErrorHandler(d.Log)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(d.Log))
	e.Use(middleware.Recover())
	e.Use(session.Middleware(d.JWT, d.Tokens, cfg.CookieSecure))

	health := d.Health
	if health == nil {
		health = func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		}
	}
	e.GET("/healthz", health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/rooms", d.APIHandler.ListRooms)
	api.GET("/rooms/:id", d.APIHandler.GetRoom)
	api.GET("/me", d.APIHandler.Me)

	// HTML pages; forms carry a CSRF token when enabled
	pages := e.Group("")
	if cfg.CSRFEnabled {
		pages.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "form:_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   cfg.CookieSecure,
			CookieSameSite: http.SameSiteLaxMode,
		}))
	}

	pages.GET("/", d.RoomHandler.Landing)
	pages.GET("/the_band_room", d.RoomHandler.Landing)
	pages.POST("/add_room", d.RoomHandler.AddRoom)
	pages.GET("/browse_rooms", d.RoomHandler.BrowseRooms)
	pages.GET("/my_room/:id", d.RoomHandler.MyRoom)
	pages.POST("/my_room", d.RoomHandler.OpenRoom)
	pages.GET("/edit_room/:id", d.RoomHandler.EditRoom)
	pages.POST("/update_room/:id", d.RoomHandler.UpdateRoom)
	pages.POST("/delete_room/:id", d.RoomHandler.DeleteRoom)

	pages.GET("/login", d.AuthHandler.LoginPage)
	pages.POST("/login", d.AuthHandler.Login)
	pages.GET("/register", d.AuthHandler.RegisterPage)
	pages.POST("/register", d.AuthHandler.Register)
	pages.GET("/logout", d.AuthHandler.Logout)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
