package app

import (
	"time"

	"buttonblitz/internal/challenge"
	"buttonblitz/internal/domain"
)

// EventKind identifies emitted game events for dispatch to clients.
type EventKind string

const (
	EventGameStarted       EventKind = "game_started"
	EventChallengeStarted  EventKind = "challenge_started"
	EventChallengeResolved EventKind = "challenge_resolved"
	EventTurnPassed        EventKind = "turn_passed"
	EventRoundAdvanced     EventKind = "round_advanced"
	EventPlayerOut         EventKind = "player_out"
	EventPaused            EventKind = "paused"
	EventResumeCountdown   EventKind = "resume_countdown"
	EventResumed           EventKind = "resumed"
	EventGameEnded         EventKind = "game_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type GameStartedPayload struct {
	Players     []PlayerResult `json:"players"`
	TotalRounds int            `json:"total_rounds"`
	FirstPlayer string         `json:"first_player"`
}

type ChallengeStartedPayload struct {
	PlayerID    string         `json:"player_id"`
	Round       int            `json:"round"`
	Kind        challenge.Kind `json:"kind"`
	Instruction string         `json:"instruction"`
	Hint        string         `json:"hint,omitempty"` // empty when hints are off
	Duration    time.Duration  `json:"duration"`
	Generation  uint64         `json:"generation"`
}

type ChallengeResolvedPayload struct {
	PlayerID   string `json:"player_id"`
	Success    bool   `json:"success"`
	Points     int    `json:"points"`
	Score      int    `json:"score"`
	Generation uint64 `json:"generation"`
}

type TurnPassedPayload struct {
	PlayerID     string `json:"player_id"`
	NextPlayerID string `json:"next_player_id"`
	Round        int    `json:"round"`
}

type RoundAdvancedPayload struct {
	Round int `json:"round"`
}

type PlayerOutPayload struct {
	PlayerID string `json:"player_id"`
}

type ResumeCountdownPayload struct {
	Remaining int `json:"remaining"`
}

type GameEndedPayload struct {
	Reason    string         `json:"reason"`
	Standings []PlayerResult `json:"standings"`
	Winners   []string       `json:"winners"`
}

// PlayerResult is a player's public state in events and snapshots.
type PlayerResult struct {
	ID          string              `json:"id"`
	DisplayName string              `json:"display_name"`
	Color       string              `json:"color"`
	Score       int                 `json:"score"`
	Status      domain.PlayerStatus `json:"status"`
}

func playerResults(players []*domain.Player) []PlayerResult {
	out := make([]PlayerResult, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerResult{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Color:       p.Color,
			Score:       p.Score,
			Status:      p.Status,
		})
	}
	return out
}
