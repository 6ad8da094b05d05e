package repository

import (
	"context"
	"errors"
	"iter"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"bandroom/internal/db"
	"bandroom/internal/model"
)

// roomDocument is the band_rooms document shape.
type roomDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	BandName    string             `bson:"band_name"`
	RoomKey     string             `bson:"room_key"`
	BandNotes   string             `bson:"band_notes"`
	SocialMedia string             `bson:"social_media"`
	CreatedBy   string             `bson:"created_by,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d roomDocument) toModel() model.Room {
	return model.Room{
		ID:          d.ID.Hex(),
		BandName:    d.BandName,
		RoomKey:     d.RoomKey,
		BandNotes:   d.BandNotes,
		SocialMedia: d.SocialMedia,
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type mongoRoomRepository struct {
	rooms *mongo.Collection
}

// NewMongoRoomRepository builds a room repository over the band_rooms collection.
func NewMongoRoomRepository(database *mongo.Database) RoomRepository {
	return &mongoRoomRepository{rooms: database.Collection(db.RoomsCollection)}
}

func (r *mongoRoomRepository) Create(ctx context.Context, room *model.Room) error {
	now := time.Now().UTC()
	doc := roomDocument{
		ID:          primitive.NewObjectID(),
		BandName:    room.BandName,
		RoomKey:     room.RoomKey,
		BandNotes:   room.BandNotes,
		SocialMedia: room.SocialMedia,
		CreatedBy:   room.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.rooms.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err)
	}
	*room = doc.toModel()
	return nil
}

func (r *mongoRoomRepository) CountByKey(ctx context.Context, roomKey string) (int64, error) {
	return r.rooms.CountDocuments(ctx, bson.M{"room_key": roomKey})
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoRoomRepository) FindByNameAndKey(ctx context.Context, bandName, roomKey string) (*model.Room, error) {
	return r.findOne(ctx, bson.M{"band_name": bandName, "room_key": roomKey})
}

func (r *mongoRoomRepository) All(ctx context.Context) iter.Seq2[model.Room, error] {
	return func(yield func(model.Room, error) bool) {
		cursor, err := r.rooms.Find(ctx, bson.D{})
		if err != nil {
			yield(model.Room{}, err)
			return
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var doc roomDocument
			if err := cursor.Decode(&doc); err != nil {
				yield(model.Room{}, err)
				return
			}
			if !yield(doc.toModel(), nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(model.Room{}, err)
		}
	}
}

func (r *mongoRoomRepository) UpdateFields(ctx context.Context, id string, update model.RoomUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := r.rooms.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"band_name":    update.BandName,
		"band_notes":   update.BandNotes,
		"social_media": update.SocialMedia,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRoomRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := r.rooms.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRoomRepository) findOne(ctx context.Context, filter bson.M) (*model.Room, error) {
	var doc roomDocument
	if err := r.rooms.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	room := doc.toModel()
	return &room, nil
}

// translateMongoError maps driver errors onto the repository errors.
func translateMongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}
