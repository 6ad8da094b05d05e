package service

import (
	"context"
	"iter"
	"time"

	"github.com/stretchr/testify/mock"

	"bandroom/internal/model"
)

// MockRoomRepository is a mock implementation of RoomRepository.
type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockRoomRepository) CountByKey(ctx context.Context, roomKey string) (int64, error) {
	args := m.Called(ctx, roomKey)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Room), args.Error(1)
}

func (m *MockRoomRepository) FindByNameAndKey(ctx context.Context, bandName, roomKey string) (*model.Room, error) {
	args := m.Called(ctx, bandName, roomKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Room), args.Error(1)
}

func (m *MockRoomRepository) All(ctx context.Context) iter.Seq2[model.Room, error] {
	args := m.Called(ctx)
	return args.Get(0).(iter.Seq2[model.Room, error])
}

func (m *MockRoomRepository) UpdateFields(ctx context.Context, id string, update model.RoomUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockRoomRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreSession(ctx context.Context, tokenID, username string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, username, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetSession(ctx context.Context, tokenID string) (string, error) {
	args := m.Called(ctx, tokenID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenStore) DeleteSession(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func seqOf(rooms ...model.Room) iter.Seq2[model.Room, error] {
	return func(yield func(model.Room, error) bool) {
		for _, room := range rooms {
			if !yield(room, nil) {
				return
			}
		}
	}
}
