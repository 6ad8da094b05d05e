package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"bandroom/internal/config"
	apperrors "bandroom/internal/errors"
	"bandroom/internal/logging"
	"bandroom/internal/model"
	"bandroom/internal/service"
	"bandroom/internal/session"
	"bandroom/internal/store"
)

const fetchTimeout = 30 * time.Second

// SeedRoom is one entry of the seed file.
type SeedRoom struct {
	BandName    string `json:"band_name"`
	RoomKey     string `json:"room_key"`
	BandNotes   string `json:"band_notes"`
	SocialMedia string `json:"social_media"`
}

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file loaded before reading the environment")
	source := pflag.StringP("file", "f", "", "JSON array of rooms, a local path or an http(s) URL")
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
	log := logging.New(os.Stderr, cfg.LogLevel, "text")

	if *source == "" {
		log.Error("--file is required")
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), cfg, *source, log); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, source string, log *slog.Logger) error {
	rooms, err := loadRooms(ctx, source)
	if err != nil {
		return err
	}
	log.Info("loaded rooms", "source", source, "count", len(rooms))

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := service.NewRoomService(st.Rooms, cfg.DeleteKeyScope)
	created, skipped, err := seedRooms(ctx, svc, rooms, log)
	if err != nil {
		return err
	}

	log.Info("seed completed", "created", created, "skipped", skipped, "store", cfg.StoreDriver)
	return nil
}

// loadRooms reads the seed array from a file or URL.
func loadRooms(ctx context.Context, source string) ([]SeedRoom, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		rc, err := fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		body = rc
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open seed file: %w", err)
		}
		body = f
	}
	defer body.Close()

	var rooms []SeedRoom
	if err := json.NewDecoder(body).Decode(&rooms); err != nil {
		return nil, fmt.Errorf("parse seed JSON: %w", err)
	}
	return rooms, nil
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("fetch seed file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("seed URL returned status code: %d", resp.StatusCode)
	}
	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

// seedRooms creates each room through the room service. Rooms whose key is
// taken or missing are skipped and counted; any other failure stops the run.
func seedRooms(ctx context.Context, svc service.RoomService, rooms []SeedRoom, log *slog.Logger) (created, skipped int, err error) {
	anonymous := session.Anonymous()
	for i, r := range rooms {
		_, err := svc.CreateRoom(ctx, model.RoomInput{
			BandName:    r.BandName,
			RoomKey:     r.RoomKey,
			BandNotes:   r.BandNotes,
			SocialMedia: r.SocialMedia,
		}, anonymous)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrKeyConflict), errors.Is(err, apperrors.ErrRoomKeyRequired):
			log.Warn("skipping room", "index", i, "band_name", r.BandName, "reason", err)
			skipped++
		default:
			return created, skipped, fmt.Errorf("create room %d (%s): %w", i, r.BandName, err)
		}
	}
	return created, skipped, nil
}
