package bot

import (
	"buttonblitz/internal/app"
)

// Agent represents an autonomous player seated in a session.
type Agent struct {
	ID    string
	Name  string
	Level Level
	Brain Brain
}

// Seat returns the session seat for this agent.
func (a *Agent) Seat(color string) app.Seat {
	return app.Seat{ID: a.ID, DisplayName: a.Name, Color: color}
}

// Play feeds the agent's input into s when it is the agent's turn and
// returns the resulting events.
func (a *Agent) Play(s *app.Session) []app.Event {
	game := s.Game()
	if game == nil {
		return nil
	}
	if p := game.ActivePlayer(); p == nil || p.ID != a.ID {
		return nil
	}
	inst := s.Runtime().Current()
	if inst == nil {
		return nil
	}
	var events []app.Event
	for _, ev := range a.Brain.Next(inst.View(), s.Clock()) {
		events = append(events, s.HandlePointer(ev)...)
	}
	return events
}
