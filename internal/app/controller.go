package app

import (
	"errors"
	"fmt"

	"buttonblitz/internal/domain"
)

var (
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrInvalidRounds   = errors.New("total rounds must be positive or endless")
	ErrNotPlaying      = errors.New("game not in playing phase")
	ErrNotPaused       = errors.New("game not paused")
	ErrNotComplete     = errors.New("game not complete")
	ErrNotEndless      = errors.New("game has a round limit")
	ErrGameOver        = errors.New("game already complete")
	ErrUnknownPlayer   = errors.New("player not found")
	ErrPlayerOut       = errors.New("player already out")
	ErrDuplicatePlayer = errors.New("duplicate player id")
)

// Seat describes a player joining a local game.
type Seat struct {
	ID          string
	DisplayName string
	Color       string // empty picks from domain.PlayerColors
}

// Controller holds the turn and round rules. It is stateless; every method
// operates on the domain.Session it is handed and returns the events the
// change produced.
type Controller struct{}

// NewController constructs a Controller.
func NewController() *Controller {
	return &Controller{}
}

// Start creates a session in the playing phase with the first seat active.
func (c *Controller) Start(seats []Seat, totalRounds int) (*domain.Session, []Event, error) {
	if len(seats) < domain.MinPlayers {
		return nil, nil, ErrTooFewPlayers
	}
	if totalRounds <= 0 && totalRounds != domain.EndlessRounds {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidRounds, totalRounds)
	}

	seen := make(map[string]bool, len(seats))
	players := make([]*domain.Player, 0, len(seats))
	for i, seat := range seats {
		if seen[seat.ID] {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, seat.ID)
		}
		seen[seat.ID] = true
		color := seat.Color
		if color == "" {
			color = domain.ColorForIndex(i)
		}
		players = append(players, &domain.Player{
			ID:          seat.ID,
			DisplayName: seat.DisplayName,
			Color:       color,
			Status:      domain.StatusActive,
		})
	}

	s := &domain.Session{
		Players:      players,
		CurrentRound: 1,
		TotalRounds:  totalRounds,
		Phase:        domain.PhasePlaying,
	}
	return s, []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Players:     playerResults(players),
			TotalRounds: totalRounds,
			FirstPlayer: players[0].ID,
		},
	}}, nil
}

// ApplyOutcome credits the active player and moves the turn on. Failures
// are applied with zero points.
func (c *Controller) ApplyOutcome(s *domain.Session, points int) ([]Event, error) {
	if s.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	if p := s.ActivePlayer(); p != nil && points > 0 {
		p.Score += points
	}
	return c.advance(s), nil
}

// advance evaluates completion and passes the turn to the next active
// player, bumping the round when the turn wraps.
func (c *Controller) advance(s *domain.Session) []Event {
	if s.ActiveCount() < domain.MinPlayers {
		return c.complete(s, EndNotEnoughPlayers)
	}

	prev := s.ActivePlayerIndex
	next := prev
	for i := 1; i <= len(s.Players); i++ {
		idx := (prev + i) % len(s.Players)
		if s.Players[idx].Active() {
			next = idx
			break
		}
	}

	var events []Event
	if next <= prev {
		if !s.Endless() && s.CurrentRound >= s.TotalRounds {
			return c.complete(s, EndRoundsComplete)
		}
		s.CurrentRound++
		events = append(events, Event{
			Kind:    EventRoundAdvanced,
			Payload: RoundAdvancedPayload{Round: s.CurrentRound},
		})
	}

	var from string
	if p := s.ActivePlayer(); p != nil {
		from = p.ID
	}
	s.ActivePlayerIndex = next
	return append(events, Event{
		Kind: EventTurnPassed,
		Payload: TurnPassedPayload{
			PlayerID:     from,
			NextPlayerID: s.Players[next].ID,
			Round:        s.CurrentRound,
		},
	})
}

func (c *Controller) complete(s *domain.Session, reason string) []Event {
	s.Phase = domain.PhaseComplete
	s.EndReason = reason
	var winners []string
	for _, p := range domain.Winners(s.Players) {
		winners = append(winners, p.ID)
	}
	return []Event{{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			Reason:    reason,
			Standings: playerResults(domain.Standings(s.Players)),
			Winners:   winners,
		},
	}}
}

// MarkOut takes a player out of the turn order. When the player out is the
// one whose turn it is, their turn is forfeited and play moves on; otherwise
// completion is evaluated at the next outcome. Everyone leaving ends the
// game at once.
func (c *Controller) MarkOut(s *domain.Session, playerID string) ([]Event, error) {
	if s.Phase == domain.PhaseComplete {
		return nil, ErrGameOver
	}
	p, idx := s.PlayerByID(playerID)
	if p == nil {
		return nil, ErrUnknownPlayer
	}
	if !p.Active() {
		return nil, ErrPlayerOut
	}
	p.Status = domain.StatusOut
	events := []Event{{Kind: EventPlayerOut, Payload: PlayerOutPayload{PlayerID: playerID}}}

	switch {
	case s.ActiveCount() == 0:
		events = append(events, c.complete(s, EndNotEnoughPlayers)...)
	case idx == s.ActivePlayerIndex:
		events = append(events, c.advance(s)...)
	}
	return events, nil
}

// Pause suspends play.
func (c *Controller) Pause(s *domain.Session) ([]Event, error) {
	if s.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	s.Phase = domain.PhasePaused
	return []Event{{Kind: EventPaused}}, nil
}

// Resume returns a paused session to play.
func (c *Controller) Resume(s *domain.Session) ([]Event, error) {
	if s.Phase != domain.PhasePaused {
		return nil, ErrNotPaused
	}
	s.Phase = domain.PhasePlaying
	return []Event{{Kind: EventResumed}}, nil
}

// Quit ends the game from any phase. Quitting a finished game is a no-op.
func (c *Controller) Quit(s *domain.Session) []Event {
	if s.Phase == domain.PhaseComplete {
		return nil
	}
	return c.complete(s, EndQuit)
}

// StopEndless ends an endless game with the current standings.
func (c *Controller) StopEndless(s *domain.Session) ([]Event, error) {
	if !s.Endless() {
		return nil, ErrNotEndless
	}
	if s.Phase == domain.PhaseComplete {
		return nil, ErrGameOver
	}
	return c.complete(s, EndStopped), nil
}

// PlayAgain starts a fresh session with the same players, all back in and
// scores reset.
func (c *Controller) PlayAgain(s *domain.Session) (*domain.Session, []Event, error) {
	if s.Phase != domain.PhaseComplete {
		return nil, nil, ErrNotComplete
	}
	seats := make([]Seat, 0, len(s.Players))
	for _, p := range s.Players {
		seats = append(seats, Seat{ID: p.ID, DisplayName: p.DisplayName, Color: p.Color})
	}
	return c.Start(seats, s.TotalRounds)
}
