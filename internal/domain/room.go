package domain

import "time"

// RoomState is the lifecycle of a shared online room.
type RoomState string

const (
	RoomLobby    RoomState = "lobby"
	RoomPlaying  RoomState = "playing"
	RoomFinished RoomState = "finished"
)

// RoomCodeLength is the number of characters in a join code.
const RoomCodeLength = 4

// RoomPlayer is a participant entry in a room record.
type RoomPlayer struct {
	UserID   string       `json:"user_id"`
	Name     string       `json:"name"`
	Color    string       `json:"color"`
	Score    int          `json:"score"`
	Status   PlayerStatus `json:"status"`
	LastSeen time.Time    `json:"last_seen"`
	// CompletedSeq is the RoundSeq this player last finished a task for.
	CompletedSeq int64 `json:"completed_seq"`
}

// CompletedRound reports whether the player finished the task for seq.
func (p RoomPlayer) CompletedRound(seq int64) bool {
	return p.CompletedSeq == seq
}

// Room is the shared record polled by every client in an online game.
type Room struct {
	ID                   string       `json:"id"`
	RoomCode             string       `json:"room_code"`
	HostID               string       `json:"host_id"`
	Players              []RoomPlayer `json:"players"`
	GameState            RoomState    `json:"game_state"`
	Round                int          `json:"round"`
	TotalRounds          int          `json:"total_rounds"`
	Mode                 Mode         `json:"mode"`
	CurrentChallengeKind string       `json:"current_challenge_kind"`
	IsPublic             bool         `json:"is_public"`
	EndReason            string       `json:"end_reason,omitempty"`
	// RoundSeq increases by one on every round advance; completions and
	// advances are keyed to it so replays are idempotent.
	RoundSeq  int64     `json:"round_seq"`
	CreatedAt time.Time `json:"created_at"`
	// Version is the store's opaque revision, not serialized into the value.
	Version string `json:"-"`
}

// Player returns a copy of the entry for userID.
func (r *Room) Player(userID string) (RoomPlayer, int, bool) {
	for i, p := range r.Players {
		if p.UserID == userID {
			return p, i, true
		}
	}
	return RoomPlayer{}, -1, false
}

// ActivePlayers returns entries still taking part in rounds.
func (r *Room) ActivePlayers() []RoomPlayer {
	var out []RoomPlayer
	for _, p := range r.Players {
		if p.Status == StatusActive {
			out = append(out, p)
		}
	}
	return out
}

// IsHost reports whether userID holds the host role.
func (r *Room) IsHost(userID string) bool {
	return userID != "" && r.HostID == userID
}

// Clone returns a deep copy safe to mutate.
func (r *Room) Clone() *Room {
	c := *r
	c.Players = append([]RoomPlayer(nil), r.Players...)
	return &c
}
