package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room is a band's rehearsal room. RoomKey is a shared secret and never leaves the server as JSON.
type Room struct {
	ID          string    `json:"id" gorm:"type:char(36);primaryKey"`
	BandName    string    `json:"band_name" gorm:"size:255;not null;index"`
	RoomKey     string    `json:"-" gorm:"size:255;not null;uniqueIndex"`
	BandNotes   string    `json:"band_notes" gorm:"type:text"`
	SocialMedia string    `json:"social_media" gorm:"size:512"`
	CreatedBy   string    `json:"created_by,omitempty" gorm:"size:255;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName keeps the collection name shared by every store backend.
func (Room) TableName() string {
	return "band_rooms"
}

// BeforeCreate sets UUID before creating the record.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// RoomInput carries the fields submitted by the create-room form.
type RoomInput struct {
	BandName    string
	RoomKey     string
	BandNotes   string
	SocialMedia string
}

// RoomUpdate carries the editable fields. Each one is written as submitted, empty included.
type RoomUpdate struct {
	BandName    string
	BandNotes   string
	SocialMedia string
}
