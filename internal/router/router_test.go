package router

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bandroom/internal/auth"
	"bandroom/internal/cache"
	"bandroom/internal/config"
	"bandroom/internal/db"
	"bandroom/internal/handler"
	"bandroom/internal/repository"
	"bandroom/internal/service"
	"bandroom/internal/session"
	"bandroom/internal/view"
)

func newApp(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	gormDB, err := db.NewSQLite(":memory:")
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB, false, log))

	redisSrv := miniredis.RunT(t)
	cacheClient := cache.New(redisSrv.Addr(), "", 0, log)
	t.Cleanup(func() { _ = cacheClient.Close() })

	jwtService := auth.NewJWTService("test-secret", time.Hour)
	tokenStore := auth.NewTokenStore(cacheClient)

	roomService := service.NewRoomService(repository.NewRoomRepository(gormDB), cfg.DeleteKeyScope)
	authService := service.NewAuthService(repository.NewUserRepository(gormDB), jwtService, tokenStore)

	renderer, err := view.New()
	require.NoError(t, err)
	pages := handler.NewPages(session.NewNotices("test-secret", false))

	e := echo.New()
	Register(e, cfg, Deps{
		Log:         log,
		Renderer:    renderer,
		JWT:         jwtService,
		Tokens:      tokenStore,
		RoomHandler: handler.NewRoomHandler(roomService, pages),
		AuthHandler: handler.NewAuthHandler(authService, pages, jwtService.TTL(), false),
		APIHandler:  handler.NewAPIHandler(roomService),
	})
	return e
}

type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func newBrowser(t *testing.T, e *echo.Echo) *browser {
	t.Helper()
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, client: &http.Client{Jar: jar}, base: srv.URL}
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return read(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return read(b.t, resp)
}

func read(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRoutes_RoomLifecycle(t *testing.T) {
	b := newBrowser(t, newApp(t, &config.Config{DeleteKeyScope: config.DeleteKeyBound}))

	status, body := b.post("/register", url.Values{"username": {"alice"}, "password": {"pw"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Registration successful")
	assert.Contains(t, body, "Logged in as alice")

	_, body = b.post("/add_room", url.Values{"band_name": {"Foo"}, "room_key": {"abc"}, "band_notes": {"Tuesdays"}})
	assert.Contains(t, body, "Room created successfully")
	assert.Contains(t, body, "Foo")

	_, body = b.post("/add_room", url.Values{"band_name": {"Bar"}, "room_key": {"abc"}})
	assert.Contains(t, body, "Sorry that room key is unavailable")

	_, body = b.get("/api/rooms")
	var rooms []struct {
		ID        string `json:"id"`
		BandName  string `json:"band_name"`
		CreatedBy string `json:"created_by"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "Foo", rooms[0].BandName)
	assert.Equal(t, "alice", rooms[0].CreatedBy)
	roomID := rooms[0].ID

	_, body = b.post("/my_room", url.Values{"band_name": {"Foo"}, "room_key": {"abc"}})
	assert.Contains(t, body, "Tuesdays")

	_, body = b.get("/logout")
	assert.Contains(t, body, "You have been logged out")

	_, body = b.post("/delete_room/"+roomID, url.Values{"room_key": {"abc"}})
	assert.Contains(t, body, "You must be logged in to do that")

	_, body = b.post("/login", url.Values{"username": {"alice"}, "password": {"pw2"}})
	assert.Contains(t, body, "Invalid username/password combination")

	_, body = b.post("/login", url.Values{"username": {"alice"}, "password": {"pw"}})
	assert.Contains(t, body, "Welcome back, alice")

	_, body = b.post("/delete_room/"+roomID, url.Values{"room_key": {"nope"}})
	assert.Contains(t, body, "Invalid room key")

	_, body = b.post("/delete_room/"+roomID, url.Values{"room_key": {"abc"}})
	assert.Contains(t, body, "Room deleted")

	_, body = b.get("/api/rooms")
	assert.JSONEq(t, `[]`, body)
}

func TestRoutes_HealthAndSession(t *testing.T) {
	b := newBrowser(t, newApp(t, &config.Config{}))

	status, body := b.get("/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	_, body = b.get("/api/me")
	assert.JSONEq(t, `{"authenticated":false}`, body)

	status, body = b.get("/my_room/not-a-uuid")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Sorry, that room could not be found")

	status, _ = b.get("/api/rooms/not-a-uuid")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRoutes_CSRF(t *testing.T) {
	e := newApp(t, &config.Config{CSRFEnabled: true})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/the_band_room", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="_csrf"`)

	form := url.Values{"band_name": {"Foo"}, "room_key": {"abc"}}
	req := httptest.NewRequest(http.MethodPost, "/add_room", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
	assert.Less(t, rec.Code, http.StatusInternalServerError)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())
}
