package ports

import (
	"context"
	"errors"

	"buttonblitz/internal/domain"
)

var (
	// ErrRoomNotFound is returned when a room id or code does not resolve.
	ErrRoomNotFound = errors.New("room not found")
	// ErrVersionConflict is returned when a write was based on a stale record.
	ErrVersionConflict = errors.New("room version conflict")
)

// RoomFilter narrows ListRooms. Zero fields match everything.
type RoomFilter struct {
	State      domain.RoomState
	PublicOnly bool
	Code       string
	Limit      int
}

// RoomStore persists room records with optimistic concurrency. Every
// record carries the store's Version; UpdateRoom and DeleteRoom succeed only
// when that version is still current.
type RoomStore interface {
	// CreateRoom stores a new record and sets room.Version.
	CreateRoom(ctx context.Context, room *domain.Room) error
	// GetRoom fetches a record by id or returns ErrRoomNotFound.
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	// UpdateRoom replaces the record if room.Version is current, then sets
	// room.Version to the new revision. Stale writes return ErrVersionConflict.
	UpdateRoom(ctx context.Context, room *domain.Room) error
	// DeleteRoom removes the record if version is current.
	DeleteRoom(ctx context.Context, id, version string) error
	// ListRooms returns matching records, newest first.
	ListRooms(ctx context.Context, filter RoomFilter) ([]*domain.Room, error)
}
