package nakama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"buttonblitz/internal/domain"
	"buttonblitz/internal/ports"

	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/runtime"
)

func testRoom(id, code string, state domain.RoomState, public bool, created time.Time) *domain.Room {
	return &domain.Room{
		ID:        id,
		RoomCode:  code,
		HostID:    "host",
		GameState: state,
		IsPublic:  public,
		Mode:      domain.ModeParty,
		CreatedAt: created,
		Players:   []domain.RoomPlayer{{UserID: "host", Name: "Host", Status: domain.StatusActive}},
	}
}

func TestStorageRoomStoreVersions(t *testing.T) {
	ctx := context.Background()
	store := NewStorageRoomStore(newFakeNakama())

	room := testRoom("r1", "ABCD", domain.RoomLobby, true, time.Now())
	if err := store.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if room.Version == "" {
		t.Fatalf("expected version after create")
	}
	if err := store.CreateRoom(ctx, testRoom("r1", "WXYZ", domain.RoomLobby, true, time.Now())); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("duplicate create: expected conflict, got %v", err)
	}

	a, err := store.GetRoom(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	b, _ := store.GetRoom(ctx, "r1")
	if a.Version != room.Version || a.RoomCode != "ABCD" {
		t.Fatalf("unexpected record %+v", a)
	}

	a.Round = 2
	if err := store.UpdateRoom(ctx, a); err != nil {
		t.Fatalf("UpdateRoom: %v", err)
	}
	b.Round = 3
	if err := store.UpdateRoom(ctx, b); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("stale update: expected conflict, got %v", err)
	}
	if err := store.DeleteRoom(ctx, "r1", b.Version); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("stale delete: expected conflict, got %v", err)
	}
	if err := store.DeleteRoom(ctx, "r1", a.Version); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if _, err := store.GetRoom(ctx, "r1"); !errors.Is(err, ports.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestStorageRoomStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewStorageRoomStore(newFakeNakama())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// More rooms than one storage page.
	for i := 0; i < roomsPageSize+20; i++ {
		id := fmt.Sprintf("room-%03d", i)
		state := domain.RoomLobby
		if i%3 == 0 {
			state = domain.RoomPlaying
		}
		r := testRoom(id, fmt.Sprintf("C%03d", i), state, i%2 == 0, base.Add(time.Duration(i)*time.Minute))
		if err := store.CreateRoom(ctx, r); err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}
	}

	all, err := store.ListRooms(ctx, ports.RoomFilter{})
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if len(all) != roomsPageSize+20 {
		t.Fatalf("expected every room across pages, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Fatalf("rooms not newest first at %d", i)
		}
	}

	lobbies, _ := store.ListRooms(ctx, ports.RoomFilter{State: domain.RoomLobby, PublicOnly: true, Limit: 5})
	if len(lobbies) != 5 {
		t.Fatalf("expected limit 5, got %d", len(lobbies))
	}
	for _, r := range lobbies {
		if r.GameState != domain.RoomLobby || !r.IsPublic || r.Version == "" {
			t.Fatalf("filter leaked %+v", r)
		}
	}
}

func TestAccountAdapterMergesMetadata(t *testing.T) {
	nk := newFakeNakama()
	nk.addUser("u1", "u1", "")
	nk.users["u1"].Metadata = `{"color":"#ff0000","level":3}`
	a := NewNakamaAccountAdapter(nk)

	if err := a.UpdateProfile(context.Background(), "u1", "", "Zed", "", map[string]interface{}{"color": "#00ff00"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(nk.users["u1"].Metadata), &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta["color"] != "#00ff00" || meta["level"] != float64(3) {
		t.Fatalf("metadata not merged: %v", meta)
	}
	if nk.users["u1"].DisplayName != "Zed" {
		t.Fatalf("display name not applied")
	}
}

func TestOnboardingAdapterAppliesOnce(t *testing.T) {
	nk := newFakeNakama()
	nk.addUser("u1", "device", "")
	a := NewNakamaOnboardingAdapter(nk)
	ctx := context.Background()

	applied, err := a.InitProfileOnce(ctx, "u1", ports.Profile{DisplayName: "Happy Fox", Color: "#ff0000"})
	if err != nil || !applied {
		t.Fatalf("first init: applied=%v err=%v", applied, err)
	}
	applied, err = a.InitProfileOnce(ctx, "u1", ports.Profile{DisplayName: "Other", Color: "#00ff00"})
	if err != nil || applied {
		t.Fatalf("second init: applied=%v err=%v", applied, err)
	}
	if got := nk.users["u1"].DisplayName; got != "Happy Fox" {
		t.Fatalf("display name = %q", got)
	}
	if _, err := a.InitProfileOnce(ctx, "", ports.Profile{DisplayName: "x", Color: "y"}); err == nil {
		t.Fatalf("expected error for empty user")
	}
}

func TestIdentityAdapter(t *testing.T) {
	nk := newFakeNakama()
	nk.addUser("u1", "happyfox", "")
	nk.users["u1"].Metadata = `{"color":"#ff0000"}`
	id := NewNakamaIdentityAdapter(nk)

	if _, err := id.CurrentUser(context.Background()); !errors.Is(err, ports.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	ctx := userContext("u1")
	u, err := id.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if u.DisplayName != "happyfox" || u.Color != "#ff0000" {
		t.Fatalf("unexpected user %+v", u)
	}

	avatar := "storage://uploads/u1/k"
	u, err = id.UpdateUser(ctx, ports.UserUpdate{AvatarURL: &avatar})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if u.AvatarURL != avatar || u.Color != "#ff0000" {
		t.Fatalf("unexpected user after update %+v", u)
	}

	color := "#0000ff"
	u, _ = id.UpdateUser(ctx, ports.UserUpdate{Color: &color})
	if u.Color != color {
		t.Fatalf("color = %q", u.Color)
	}
}

func TestUserIDFromToken(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-key"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"valid", sign(jwt.MapClaims{"uid": "u1", "usn": "fox", "exp": now.Add(time.Hour).Unix()}), "u1", false},
		{"expired", sign(jwt.MapClaims{"uid": "u1", "exp": now.Add(-time.Hour).Unix()}), "", true},
		{"missing uid", sign(jwt.MapClaims{"usn": "fox"}), "", true},
		{"garbage", "not-a-token", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := userIDFromToken(tt.token, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUploadAdapter(t *testing.T) {
	nk := newFakeNakama()
	up := NewStorageUploadAdapter(nk)

	url, err := up.Upload(context.Background(), "u1", "me.png", "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(url, "storage://uploads/u1/") {
		t.Fatalf("url = %q", url)
	}
	key := strings.TrimPrefix(url, "storage://uploads/u1/")
	obj, ok := nk.objects[storageKey{uploadsCollection, "u1", key}]
	if !ok {
		t.Fatalf("upload not stored")
	}
	var stored storedUpload
	if err := json.Unmarshal([]byte(obj.Value), &stored); err != nil {
		t.Fatalf("stored value: %v", err)
	}
	if stored.Data != base64.StdEncoding.EncodeToString([]byte{1, 2, 3}) || stored.ContentType != "image/png" {
		t.Fatalf("unexpected stored upload %+v", stored)
	}

	if _, err := up.Upload(context.Background(), "", "x", "image/png", nil); !errors.Is(err, ports.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
	nk.writeErr = runtime.NewError("boom", codeInternal)
	if _, err := up.Upload(context.Background(), "u1", "x", "image/png", []byte{1}); err == nil {
		t.Fatalf("expected write error")
	}
}
