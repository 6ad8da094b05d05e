package repository

import (
	"context"
	"iter"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bandroom/internal/model"
)

// RoomRepository defines room persistence operations.
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	CountByKey(ctx context.Context, roomKey string) (int64, error)
	FindByID(ctx context.Context, id string) (*model.Room, error)
	FindByNameAndKey(ctx context.Context, bandName, roomKey string) (*model.Room, error)
	// All yields every room in store order. Each call starts a fresh query.
	All(ctx context.Context) iter.Seq2[model.Room, error]
	UpdateFields(ctx context.Context, id string, update model.RoomUpdate) error
	Delete(ctx context.Context, id string) error
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository builds a GORM-backed room repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// Create inserts a new room. A taken room key yields ErrDuplicate.
func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return translateGormError(r.db.WithContext(ctx).Create(room).Error)
}

// CountByKey counts the rooms holding roomKey.
func (r *roomRepository) CountByKey(ctx context.Context, roomKey string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Room{}).Where("room_key = ?", roomKey).Count(&count).Error
	return count, err
}

// FindByID finds a room by ID.
func (r *roomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	var room model.Room
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &room, nil
}

// FindByNameAndKey finds the room matching both band name and key exactly.
func (r *roomRepository) FindByNameAndKey(ctx context.Context, bandName, roomKey string) (*model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).
		Where("band_name = ? AND room_key = ?", bandName, roomKey).
		First(&room).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &room, nil
}

func (r *roomRepository) All(ctx context.Context) iter.Seq2[model.Room, error] {
	return func(yield func(model.Room, error) bool) {
		rows, err := r.db.WithContext(ctx).Model(&model.Room{}).Rows()
		if err != nil {
			yield(model.Room{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var room model.Room
			if err := r.db.ScanRows(rows, &room); err != nil {
				yield(model.Room{}, err)
				return
			}
			if !yield(room, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(model.Room{}, err)
		}
	}
}

// UpdateFields overwrites the editable columns. ID and room_key are never part of the update.
func (r *roomRepository) UpdateFields(ctx context.Context, id string, update model.RoomUpdate) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	res := r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"band_name":    update.BandName,
			"band_notes":   update.BandNotes,
			"social_media": update.SocialMedia,
		})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows when nothing changed; tell that apart from a missing row.
		return r.exists(ctx, id)
	}
	return nil
}

// Delete permanently removes a room.
func (r *roomRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Room{})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *roomRepository) exists(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Room{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
