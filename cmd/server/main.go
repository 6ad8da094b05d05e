package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/pflag"

	"bandroom/docs"
	"bandroom/internal/auth"
	"bandroom/internal/cache"
	"bandroom/internal/config"
	"bandroom/internal/handler"
	"bandroom/internal/logging"
	"bandroom/internal/router"
	"bandroom/internal/service"
	"bandroom/internal/session"
	"bandroom/internal/store"
	"bandroom/internal/view"
)

const shutdownTimeout = 10 * time.Second

// @title The Band Room API
// @version 1.0
// @description Read-only JSON view of the band rehearsal rooms.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	addr := pflag.String("addr", "", "listen address, overrides IP and PORT")
	storeDriver := pflag.String("store", "", "store driver (mongo, mysql, sqlite), overrides STORE_DRIVER")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg := config.Load()
	if *storeDriver != "" {
		cfg.StoreDriver = *storeDriver
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := run(cfg, *addr, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, addr string, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.InsecureSecret() {
		log.Warn("SESSION_SECRET is not set; sessions are signed with the built-in development secret")
	}

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, log)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn("redis unreachable; logins will fail until it is back", "addr", cfg.RedisAddr, "error", err)
	}

	jwtService := auth.NewJWTService(cfg.SessionSecret, cfg.SessionTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	roomService := service.NewRoomService(st.Rooms, cfg.DeleteKeyScope)
	authService := service.NewAuthService(st.Users, jwtService, tokenStore)

	renderer, err := view.New()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	pages := handler.NewPages(session.NewNotices(cfg.SessionSecret, cfg.CookieSecure))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Register(e, cfg, router.Deps{
		Log:         log,
		Renderer:    renderer,
		JWT:         jwtService,
		Tokens:      tokenStore,
		RoomHandler: handler.NewRoomHandler(roomService, pages),
		AuthHandler: handler.NewAuthHandler(authService, pages, jwtService.TTL(), cfg.CookieSecure),
		APIHandler:  handler.NewAPIHandler(roomService),
		Health: func(c echo.Context) error {
			if err := st.Ping(c.Request().Context()); err != nil {
				return c.String(http.StatusServiceUnavailable, "store unavailable")
			}
			return c.String(http.StatusOK, "ok")
		},
	})

	if addr == "" {
		addr = cfg.Addr()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "store", cfg.StoreDriver, "delete_key_scope", cfg.DeleteKeyScope)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
