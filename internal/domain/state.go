package domain

// Phase represents the lifecycle stage of a pass-and-play session.
type Phase string

const (
	// PhaseSetup is the pre-game state where players are being added.
	PhaseSetup Phase = "setup"
	// PhasePlaying is the active state where challenges run.
	PhasePlaying Phase = "playing"
	// PhasePaused suspends all challenge timers without resetting them.
	PhasePaused Phase = "paused"
	// PhaseComplete is terminal; a new session is needed to play again.
	PhaseComplete Phase = "complete"
)

// EndlessRounds marks a session that only ends when players drop out or quit.
const EndlessRounds = -1

// MinPlayers is the fewest active players a game can run with.
const MinPlayers = 2

// PlayerStatus tracks whether a player still takes turns.
type PlayerStatus string

const (
	StatusActive PlayerStatus = "active"
	StatusOut    PlayerStatus = "out"
)

// Player holds state for a participant. Players are never removed during a
// game; quitting flips Status to StatusOut.
type Player struct {
	ID          string
	DisplayName string
	Color       string
	Score       int
	Status      PlayerStatus
}

// Active reports whether the player still takes turns.
func (p *Player) Active() bool {
	return p != nil && p.Status == StatusActive
}

// Session holds authoritative state for one local game.
type Session struct {
	Players           []*Player // turn order
	ActivePlayerIndex int
	CurrentRound      int // 1-based
	TotalRounds       int // EndlessRounds for endless play
	LastChallengeKind string
	Phase             Phase
	EndReason         string
}

// ActivePlayer returns the player whose turn it is, or nil.
func (s *Session) ActivePlayer() *Player {
	if s.ActivePlayerIndex < 0 || s.ActivePlayerIndex >= len(s.Players) {
		return nil
	}
	return s.Players[s.ActivePlayerIndex]
}

// ActiveCount returns the number of players still taking turns.
func (s *Session) ActiveCount() int {
	n := 0
	for _, p := range s.Players {
		if p.Active() {
			n++
		}
	}
	return n
}

// PlayerByID finds a player and its turn-order index.
func (s *Session) PlayerByID(id string) (*Player, int) {
	for i, p := range s.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// Endless reports whether the session has no round limit.
func (s *Session) Endless() bool {
	return s.TotalRounds == EndlessRounds
}
