package online

import (
	"context"
	"errors"
	"time"

	"buttonblitz/internal/challenge"
	"buttonblitz/internal/domain"
	"buttonblitz/internal/ports"
)

// Status is the client's view of its link to the room store.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Notice is a one-shot message for the polling client.
type Notice string

const (
	NoticeYouAreHost     Notice = "you_are_host"
	NoticeRemoved        Notice = "removed_from_room"
	NoticeNotEnough      Notice = "not_enough_players"
	NoticeGameFinished   Notice = "game_finished"
	NoticeRoundAdvanced  Notice = "round_advanced"
	NoticePlayersDropped Notice = "players_dropped"
)

// PollResult is what a client renders after one poll tick.
type PollResult struct {
	Room    *domain.Room `json:"room,omitempty"`
	Status  Status       `json:"status"`
	IsHost  bool         `json:"is_host"`
	Notices []Notice     `json:"notices,omitempty"`
	// Stale is set when this tick's write lost a race; the next poll retries.
	Stale bool `json:"stale,omitempty"`
}

// Poll is one client tick: heartbeat, host takeover when the host has gone
// quiet, and for the host the shared bookkeeping. Everything is derived from
// the record fetched here and written in a single compare-and-swap; a lost
// race is discarded and redone on the next tick. A vanished room returns
// ErrRoomNotFound; other store failures report StatusDisconnected.
func (s *Service) Poll(ctx context.Context, roomID, userID string) (PollResult, error) {
	cur, err := s.rooms.GetRoom(ctx, roomID)
	if errors.Is(err, ports.ErrRoomNotFound) {
		return PollResult{Status: StatusConnected}, ErrRoomNotFound
	}
	if err != nil {
		return PollResult{Status: StatusDisconnected}, nil
	}

	res := PollResult{Room: cur, Status: StatusConnected}
	if _, _, ok := cur.Player(userID); !ok {
		res.Notices = append(res.Notices, NoticeRemoved)
		return res, nil
	}

	next := cur.Clone()
	notices := s.reconcile(next, userID)
	if err := s.rooms.UpdateRoom(ctx, next); err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			res.Stale = true
			res.IsHost = cur.IsHost(userID)
			return res, nil
		}
		return PollResult{Status: StatusDisconnected, Room: cur}, nil
	}
	res.Room = next
	res.IsHost = next.IsHost(userID)
	res.Notices = notices
	return res, nil
}

func (s *Service) stale(p domain.RoomPlayer, now time.Time) bool {
	return now.Sub(p.LastSeen) > s.cfg.LivenessTimeout
}

// reconcile applies one tick's changes for userID to r in place.
func (s *Service) reconcile(r *domain.Room, userID string) []Notice {
	now := s.now()
	var notices []Notice

	_, idx, _ := r.Player(userID)
	r.Players[idx].LastSeen = now

	if !r.IsHost(userID) && s.shouldTakeOver(r, userID, now) {
		r.HostID = userID
		notices = append(notices, NoticeYouAreHost)
	}
	if !r.IsHost(userID) {
		return notices
	}

	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.UserID == userID || !s.stale(p, now) {
			kept = append(kept, p)
		}
	}
	if len(kept) < len(r.Players) {
		notices = append(notices, NoticePlayersDropped)
	}
	r.Players = kept

	if r.GameState != domain.RoomPlaying {
		return notices
	}

	active := r.ActivePlayers()
	if len(active) < domain.MinPlayers {
		finish(r, EndNotEnoughPlayers)
		return append(notices, NoticeNotEnough, NoticeGameFinished)
	}
	for _, p := range active {
		if !p.CompletedRound(r.RoundSeq) {
			return notices
		}
	}
	if r.TotalRounds != domain.EndlessRounds && r.Round >= r.TotalRounds {
		finish(r, EndRoundsComplete)
		return append(notices, NoticeGameFinished)
	}
	r.Round++
	r.RoundSeq++
	r.CurrentChallengeKind = string(s.catalog.Pick(challenge.Kind(r.CurrentChallengeKind)).Kind)
	return append(notices, NoticeRoundAdvanced)
}

// shouldTakeOver reports whether userID is the first live player in a room
// whose host is missing or silent.
func (s *Service) shouldTakeOver(r *domain.Room, userID string, now time.Time) bool {
	if host, _, ok := r.Player(r.HostID); ok && !s.stale(host, now) {
		return false
	}
	for _, p := range r.Players {
		if p.UserID == r.HostID || s.stale(p, now) {
			continue
		}
		return p.UserID == userID
	}
	return false
}
