package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"iter"
	"strings"

	"bandroom/internal/config"
	apperrors "bandroom/internal/errors"
	"bandroom/internal/model"
	"bandroom/internal/repository"
	"bandroom/internal/session"
)

// RoomService enforces the rules for creating, finding, editing and deleting rooms.
type RoomService interface {
	CreateRoom(ctx context.Context, input model.RoomInput, sess *session.Session) (*model.Room, error)
	ListRooms(ctx context.Context) iter.Seq2[model.Room, error]
	GetRoomByID(ctx context.Context, id string) (*model.Room, error)
	// GetRoomByNameAndKey returns (nil, nil) when the key exists but belongs to a different band name.
	GetRoomByNameAndKey(ctx context.Context, bandName, roomKey string) (*model.Room, error)
	// UpdateRoom performs no authorization; callers gate access.
	UpdateRoom(ctx context.Context, id string, update model.RoomUpdate) error
	DeleteRoom(ctx context.Context, id, roomKey string, sess *session.Session) error
}

type roomService struct {
	repo     repository.RoomRepository
	keyScope string
}

// NewRoomService creates a room service. keyScope is config.DeleteKeyBound or config.DeleteKeyAny.
func NewRoomService(repo repository.RoomRepository, keyScope string) RoomService {
	if keyScope != config.DeleteKeyAny {
		keyScope = config.DeleteKeyBound
	}
	return &roomService{repo: repo, keyScope: keyScope}
}

// CreateRoom checks the key is free and inserts the room. The check and the
// insert are separate store calls; the unique index on room_key rejects the
// loser of a concurrent race, which is reported as a key conflict too.
//
// Fields are trimmed of surrounding whitespace before they are stored, so
// "abc " and "abc" are the same key. After trimming, keys are compared byte
// for byte in every store: "ABC" and "abc" are different keys.
func (s *roomService) CreateRoom(ctx context.Context, input model.RoomInput, sess *session.Session) (*model.Room, error) {
	room := &model.Room{
		BandName:    clean(input.BandName),
		RoomKey:     clean(input.RoomKey),
		BandNotes:   clean(input.BandNotes),
		SocialMedia: clean(input.SocialMedia),
	}
	if room.RoomKey == "" {
		return nil, apperrors.ErrRoomKeyRequired
	}
	if sess.Authenticated() {
		room.CreatedBy = sess.Username
	}

	count, err := s.repo.CountByKey(ctx, room.RoomKey)
	if err != nil {
		return nil, fmt.Errorf("count rooms by key: %w", err)
	}
	if count > 0 {
		return nil, apperrors.ErrKeyConflict
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrKeyConflict
		}
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// ListRooms returns every room lazily, in store order.
func (s *roomService) ListRooms(ctx context.Context) iter.Seq2[model.Room, error] {
	return s.repo.All(ctx)
}

// GetRoomByID resolves a room by its identifier.
func (s *roomService) GetRoomByID(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRoomError("find room", err)
	}
	return room, nil
}

// GetRoomByNameAndKey trims both values the way CreateRoom does, then
// requires an exact match on each.
func (s *roomService) GetRoomByNameAndKey(ctx context.Context, bandName, roomKey string) (*model.Room, error) {
	roomKey = clean(roomKey)
	if err := s.probeKey(ctx, roomKey); err != nil {
		return nil, err
	}

	room, err := s.repo.FindByNameAndKey(ctx, clean(bandName), roomKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find room by name and key: %w", err)
	}
	return room, nil
}

// UpdateRoom overwrites band name, notes and social media. ID and room key are untouched.
func (s *roomService) UpdateRoom(ctx context.Context, id string, update model.RoomUpdate) error {
	update = model.RoomUpdate{
		BandName:    clean(update.BandName),
		BandNotes:   clean(update.BandNotes),
		SocialMedia: clean(update.SocialMedia),
	}
	if err := s.repo.UpdateFields(ctx, id, update); err != nil {
		return mapRoomError("update room", err)
	}
	return nil
}

// DeleteRoom removes the room named by id. The visitor must be logged in and
// present a key that exists; with the bound key scope the key must also be
// the key of that very room.
func (s *roomService) DeleteRoom(ctx context.Context, id, roomKey string, sess *session.Session) error {
	if !sess.Authenticated() {
		return apperrors.ErrUnauthorized
	}

	roomKey = clean(roomKey)
	if err := s.probeKey(ctx, roomKey); err != nil {
		return err
	}

	if s.keyScope == config.DeleteKeyBound {
		room, err := s.GetRoomByID(ctx, id)
		if err != nil {
			return err
		}
		if subtle.ConstantTimeCompare([]byte(room.RoomKey), []byte(roomKey)) != 1 {
			return apperrors.ErrInvalidKey
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRoomError("delete room", err)
	}
	return nil
}

// probeKey fails with ErrInvalidKey unless some room holds roomKey.
func (s *roomService) probeKey(ctx context.Context, roomKey string) error {
	if roomKey == "" {
		return apperrors.ErrInvalidKey
	}
	count, err := s.repo.CountByKey(ctx, roomKey)
	if err != nil {
		return fmt.Errorf("count rooms by key: %w", err)
	}
	if count == 0 {
		return apperrors.ErrInvalidKey
	}
	return nil
}

func mapRoomError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ErrRoomNotFound
	case errors.Is(err, repository.ErrInvalidID):
		return apperrors.ErrInvalidRoomID
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// clean trims surrounding whitespace and drops invalid UTF-8 from submitted form values.
func clean(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, ""))
}
