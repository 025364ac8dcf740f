package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"buttonblitz/internal/domain"
	"buttonblitz/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	roomsCollection = "rooms"
	roomsPageSize   = 100
)

// StorageRoomStore keeps room records in Nakama storage, owned by the system
// user. Storage object versions double as the CAS token.
type StorageRoomStore struct {
	nk runtime.NakamaModule
}

// NewStorageRoomStore creates a room store backed by nk's storage engine.
func NewStorageRoomStore(nk runtime.NakamaModule) *StorageRoomStore {
	return &StorageRoomStore{nk: nk}
}

func (s *StorageRoomStore) write(ctx context.Context, room *domain.Room, version string) error {
	value, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", room.ID, err)
	}
	acks, err := s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      roomsCollection,
		Key:             room.ID,
		Value:           string(value),
		Version:         version,
		PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return ports.ErrVersionConflict
		}
		return fmt.Errorf("failed to write room %s: %w", room.ID, err)
	}
	if len(acks) > 0 {
		room.Version = acks[0].GetVersion()
	}
	return nil
}

// CreateRoom stores a new record. An existing key is reported as a conflict.
func (s *StorageRoomStore) CreateRoom(ctx context.Context, room *domain.Room) error {
	return s.write(ctx, room, "*")
}

func (s *StorageRoomStore) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: roomsCollection,
		Key:        id,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to read room %s: %w", id, err)
	}
	if len(objects) == 0 {
		return nil, ports.ErrRoomNotFound
	}
	return decodeRoom(objects[0])
}

func (s *StorageRoomStore) UpdateRoom(ctx context.Context, room *domain.Room) error {
	if room.Version == "" {
		return ports.ErrVersionConflict
	}
	return s.write(ctx, room, room.Version)
}

func (s *StorageRoomStore) DeleteRoom(ctx context.Context, id, version string) error {
	err := s.nk.StorageDelete(ctx, []*runtime.StorageDelete{{
		Collection: roomsCollection,
		Key:        id,
		Version:    version,
	}})
	if errors.Is(err, runtime.ErrStorageRejectedVersion) {
		return ports.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("failed to delete room %s: %w", id, err)
	}
	return nil
}

// ListRooms walks the whole collection; the filter is applied in memory.
func (s *StorageRoomStore) ListRooms(ctx context.Context, filter ports.RoomFilter) ([]*domain.Room, error) {
	var out []*domain.Room
	cursor := ""
	for {
		objects, next, err := s.nk.StorageList(ctx, "", "", roomsCollection, roomsPageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list rooms: %w", err)
		}
		for _, obj := range objects {
			room, err := decodeRoom(obj)
			if err != nil {
				continue
			}
			if matchesFilter(room, filter) {
				out = append(out, room)
			}
		}
		if next == "" || len(objects) == 0 {
			break
		}
		cursor = next
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesFilter(r *domain.Room, f ports.RoomFilter) bool {
	if f.State != "" && r.GameState != f.State {
		return false
	}
	if f.PublicOnly && !r.IsPublic {
		return false
	}
	if f.Code != "" && r.RoomCode != f.Code {
		return false
	}
	return true
}

func decodeRoom(obj *api.StorageObject) (*domain.Room, error) {
	var room domain.Room
	if err := json.Unmarshal([]byte(obj.GetValue()), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room %s: %w", obj.GetKey(), err)
	}
	room.Version = obj.GetVersion()
	return &room, nil
}

var _ ports.RoomStore = (*StorageRoomStore)(nil)
