// Package online runs shared rooms over a polled, versioned record. Every
// mutation is re-derived from a freshly fetched record and written with
// compare-and-swap, so concurrent clients never clobber one another. The
// host's poll performs the shared bookkeeping: dropping silent players and
// advancing the round once every active player has finished.
package online

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"buttonblitz/internal/challenge"
	"buttonblitz/internal/domain"
	"buttonblitz/internal/ports"

	"github.com/google/uuid"
)

// Defaults used when Config fields are zero.
const (
	DefaultLivenessTimeout = 20 * time.Second
	DefaultMaxPlayers      = 8
	DefaultListLimit       = 50
	DefaultMutateAttempts  = 4
)

// End reasons written to Room.EndReason.
const (
	EndRoundsComplete   = "rounds_complete"
	EndNotEnoughPlayers = "not_enough_players"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Config tunes a Service.
type Config struct {
	LivenessTimeout time.Duration
	MaxPlayers      int
	ListLimit       int
	Now             func() time.Time
}

// Member identifies a user joining a room.
type Member struct {
	UserID string
	Name   string
}

// RoomOptions are the host-controlled room settings.
type RoomOptions struct {
	IsPublic    bool
	TotalRounds int
	Mode        domain.Mode
}

func (o RoomOptions) validate() error {
	if !o.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSettings, o.Mode)
	}
	if o.TotalRounds != domain.EndlessRounds && o.TotalRounds < 1 {
		return fmt.Errorf("%w: total rounds %d", ErrInvalidSettings, o.TotalRounds)
	}
	return nil
}

// Service implements the online room use-cases.
type Service struct {
	rooms   ports.RoomStore
	catalog *challenge.Catalog
	rng     *rand.Rand
	cfg     Config
}

// NewService constructs a Service. rng may be nil for a time-seeded default.
func NewService(rooms ports.RoomStore, cfg Config, rng *rand.Rand) (*Service, error) {
	if rooms == nil {
		return nil, errors.New("online: room store is required")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.LivenessTimeout <= 0 {
		cfg.LivenessTimeout = DefaultLivenessTimeout
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = DefaultMaxPlayers
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = DefaultListLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cat, err := challenge.NewCatalog(rng)
	if err != nil {
		return nil, err
	}
	return &Service{rooms: rooms, catalog: cat, rng: rng, cfg: cfg}, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

func (s *Service) now() time.Time { return s.cfg.Now().UTC() }

// errDelete asks mutate to remove the record instead of writing it.
var errDelete = errors.New("delete room")

// mutate fetches the room, applies fn to a copy and writes it back with
// compare-and-swap, re-fetching and re-applying on conflict. fn returning
// errDelete removes the record and mutate returns (nil, nil).
func (s *Service) mutate(ctx context.Context, id string, attempts int, fn func(r *domain.Room) error) (*domain.Room, error) {
	for i := 0; i < attempts; i++ {
		cur, err := s.rooms.GetRoom(ctx, id)
		if err != nil {
			return nil, err
		}
		next := cur.Clone()
		switch err := fn(next); {
		case errors.Is(err, errDelete):
			err = s.rooms.DeleteRoom(ctx, id, cur.Version)
			if errors.Is(err, ports.ErrVersionConflict) {
				continue
			}
			return nil, err
		case err != nil:
			return nil, err
		}
		err = s.rooms.UpdateRoom(ctx, next)
		if errors.Is(err, ports.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return next, nil
	}
	return nil, ErrBusy
}

func (s *Service) newCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		b := make([]byte, domain.RoomCodeLength)
		for i := range b {
			b[i] = codeAlphabet[s.rng.Intn(len(codeAlphabet))]
		}
		code := string(b)
		taken, err := s.rooms.ListRooms(ctx, ports.RoomFilter{Code: code, State: domain.RoomLobby, Limit: 1})
		if err != nil {
			return "", err
		}
		if len(taken) == 0 {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

// NormalizeCode upper-cases and validates a join code.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != domain.RoomCodeLength {
		return "", ErrInvalidCode
	}
	for _, c := range code {
		if !strings.ContainsRune(codeAlphabet, c) {
			return "", ErrInvalidCode
		}
	}
	return code, nil
}

func freeColor(r *domain.Room) string {
	used := make(map[string]bool, len(r.Players))
	for _, p := range r.Players {
		used[p.Color] = true
	}
	for _, c := range domain.PlayerColors {
		if !used[c] {
			return c
		}
	}
	return domain.ColorForIndex(len(r.Players))
}

// CreateRoom opens a lobby with host as the only player.
func (s *Service) CreateRoom(ctx context.Context, host Member, opts RoomOptions) (*domain.Room, error) {
	if host.UserID == "" {
		return nil, ports.ErrNotLoggedIn
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	code, err := s.newCode(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	room := &domain.Room{
		ID:          uuid.NewString(),
		RoomCode:    code,
		HostID:      host.UserID,
		GameState:   domain.RoomLobby,
		TotalRounds: opts.TotalRounds,
		Mode:        opts.Mode,
		IsPublic:    opts.IsPublic,
		CreatedAt:   now,
		Players: []domain.RoomPlayer{{
			UserID:   host.UserID,
			Name:     host.Name,
			Color:    domain.PlayerColors[0],
			Status:   domain.StatusActive,
			LastSeen: now,
		}},
	}
	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// JoinByCode adds m to the lobby with the given code. Joining a room one is
// already in refreshes the heartbeat.
func (s *Service) JoinByCode(ctx context.Context, m Member, code string) (*domain.Room, error) {
	if m.UserID == "" {
		return nil, ports.ErrNotLoggedIn
	}
	code, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	found, err := s.rooms.ListRooms(ctx, ports.RoomFilter{Code: code, State: domain.RoomLobby, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrRoomNotFound
	}
	return s.mutate(ctx, found[0].ID, DefaultMutateAttempts, func(r *domain.Room) error {
		if r.GameState != domain.RoomLobby {
			return ErrRoomStarted
		}
		if _, idx, ok := r.Player(m.UserID); ok {
			r.Players[idx].LastSeen = s.now()
			return nil
		}
		if len(r.Players) >= s.cfg.MaxPlayers {
			return ErrRoomFull
		}
		r.Players = append(r.Players, domain.RoomPlayer{
			UserID:   m.UserID,
			Name:     m.Name,
			Color:    freeColor(r),
			Status:   domain.StatusActive,
			LastSeen: s.now(),
		})
		return nil
	})
}

// ListPublic returns open public lobbies, newest first.
func (s *Service) ListPublic(ctx context.Context) ([]*domain.Room, error) {
	rooms, err := s.rooms.ListRooms(ctx, ports.RoomFilter{
		State:      domain.RoomLobby,
		PublicOnly: true,
		Limit:      s.cfg.ListLimit,
	})
	if err != nil {
		return nil, err
	}
	out := rooms[:0]
	for _, r := range rooms {
		if len(r.Players) < s.cfg.MaxPlayers {
			out = append(out, r)
		}
	}
	return out, nil
}

// Leave removes userID. The host role passes to the first remaining player
// and an empty room is deleted, in which case the returned room is nil.
func (s *Service) Leave(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	return s.mutate(ctx, roomID, DefaultMutateAttempts, func(r *domain.Room) error {
		_, idx, ok := r.Player(userID)
		if !ok {
			return ErrNotInRoom
		}
		r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
		if len(r.Players) == 0 {
			return errDelete
		}
		if r.HostID == userID {
			r.HostID = r.Players[0].UserID
		}
		if r.GameState == domain.RoomPlaying && len(r.ActivePlayers()) < domain.MinPlayers {
			finish(r, EndNotEnoughPlayers)
		}
		return nil
	})
}

// UpdateSettings changes lobby options. Host only.
func (s *Service) UpdateSettings(ctx context.Context, roomID, userID string, opts RoomOptions) (*domain.Room, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, roomID, DefaultMutateAttempts, func(r *domain.Room) error {
		if !r.IsHost(userID) {
			return ErrNotHost
		}
		if r.GameState != domain.RoomLobby {
			return ErrRoomStarted
		}
		r.TotalRounds = opts.TotalRounds
		r.Mode = opts.Mode
		r.IsPublic = opts.IsPublic
		return nil
	})
}

// StartGame moves a lobby into play. Host only, re-checked against the
// freshly fetched record.
func (s *Service) StartGame(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	return s.mutate(ctx, roomID, DefaultMutateAttempts, func(r *domain.Room) error {
		if !r.IsHost(userID) {
			return ErrNotHost
		}
		if r.GameState != domain.RoomLobby {
			return ErrRoomStarted
		}
		if len(r.Players) < domain.MinPlayers {
			return ErrTooFewPlayers
		}
		s.beginGame(r)
		return nil
	})
}

func (s *Service) beginGame(r *domain.Room) {
	now := s.now()
	for i := range r.Players {
		r.Players[i].Score = 0
		r.Players[i].Status = domain.StatusActive
		r.Players[i].LastSeen = now
	}
	r.GameState = domain.RoomPlaying
	r.Round = 1
	r.RoundSeq++
	r.EndReason = ""
	r.CurrentChallengeKind = string(s.catalog.Pick("").Kind)
}

func finish(r *domain.Room, reason string) {
	r.GameState = domain.RoomFinished
	r.EndReason = reason
}

// CompleteTask records userID's result for round seq. A repeat for a round
// already recorded is a no-op.
func (s *Service) CompleteTask(ctx context.Context, roomID, userID string, seq int64, points int) (*domain.Room, error) {
	return s.mutate(ctx, roomID, DefaultMutateAttempts, func(r *domain.Room) error {
		p, idx, ok := r.Player(userID)
		if !ok {
			return ErrNotInRoom
		}
		if p.CompletedSeq >= seq {
			r.Players[idx].LastSeen = s.now()
			return nil
		}
		if r.GameState != domain.RoomPlaying {
			return ErrNotPlaying
		}
		if seq != r.RoundSeq {
			return ErrStaleRound
		}
		if p.Status != domain.StatusActive {
			return ErrPlayerOut
		}
		if points > 0 {
			r.Players[idx].Score += points
		}
		r.Players[idx].CompletedSeq = seq
		r.Players[idx].LastSeen = s.now()
		return nil
	})
}

// PlayAgain restarts a finished room with a randomly chosen new host.
// Host only.
func (s *Service) PlayAgain(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	return s.mutate(ctx, roomID, DefaultMutateAttempts, func(r *domain.Room) error {
		if !r.IsHost(userID) {
			return ErrNotHost
		}
		if r.GameState != domain.RoomFinished {
			return ErrNotFinished
		}
		if len(r.Players) < domain.MinPlayers {
			return ErrTooFewPlayers
		}
		r.HostID = r.Players[s.rng.Intn(len(r.Players))].UserID
		s.beginGame(r)
		return nil
	})
}
