package app

import (
	"errors"
	"math/rand"
	"time"

	"buttonblitz/internal/audio"
	"buttonblitz/internal/challenge"
	"buttonblitz/internal/domain"
	"buttonblitz/internal/input"
)

// ErrNoSession is returned by operations that need a started game.
var ErrNoSession = errors.New("session not started")

// SessionConfig wires a Session. Zero values pick defaults.
type SessionConfig struct {
	Catalog         *challenge.Catalog
	Settings        domain.Settings
	Rand            *rand.Rand
	Audio           audio.Factory
	FeedbackDelay   time.Duration
	ResumeCountdown int // seconds; negative disables the countdown
}

// Session drives one pass-and-play game on a caller-supplied clock. It owns
// the challenge runtime, the input mapper and the audio context, and applies
// the Controller's rules between challenges. Not safe for concurrent use.
type Session struct {
	ctrl     *Controller
	catalog  *challenge.Catalog
	runtime  *challenge.Runtime
	mapper   *input.Mapper
	audio    *audio.Context
	settings domain.Settings

	feedbackDelay   time.Duration
	resumeCountdown int

	game      *domain.Session
	clock     time.Duration
	feedback  time.Duration // time left showing the last outcome
	countdown time.Duration // time left before a resume takes effect
	last      *ChallengeResolvedPayload
	deferred  []Event // released once feedback ends
}

// NewSession builds a session. The game starts with Start.
func NewSession(cfg SessionConfig) (*Session, error) {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Settings == (domain.Settings{}) {
		cfg.Settings = domain.DefaultSettings()
	}
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	cat := cfg.Catalog
	if cat == nil {
		var err error
		if cat, err = challenge.NewCatalog(rng); err != nil {
			return nil, err
		}
	}
	if cfg.FeedbackDelay <= 0 {
		cfg.FeedbackDelay = DefaultFeedbackDelay
	}
	switch {
	case cfg.ResumeCountdown == 0:
		cfg.ResumeCountdown = DefaultResumeCountdown
	case cfg.ResumeCountdown < 0:
		cfg.ResumeCountdown = 0
	}

	ac := audio.NewContext(cfg.Audio, cfg.Settings)
	return &Session{
		ctrl:            NewController(),
		catalog:         cat,
		runtime:         challenge.NewRuntime(rng, ac),
		mapper:          input.NewMapper(input.ModeTap),
		audio:           ac,
		settings:        cfg.Settings,
		feedbackDelay:   cfg.FeedbackDelay,
		resumeCountdown: cfg.ResumeCountdown,
	}, nil
}

// Game exposes the underlying domain session, nil before Start.
func (s *Session) Game() *domain.Session { return s.game }

// Runtime exposes the challenge runtime.
func (s *Session) Runtime() *challenge.Runtime { return s.runtime }

// Clock returns the session's virtual time.
func (s *Session) Clock() time.Duration { return s.clock }

// Start begins a game with the given seats and the first challenge.
func (s *Session) Start(seats []Seat) ([]Event, error) {
	game, events, err := s.ctrl.Start(seats, s.settings.TotalRounds)
	if err != nil {
		return nil, err
	}
	s.reset(game)
	return append(events, s.beginChallenge()...), nil
}

func (s *Session) reset(game *domain.Session) {
	s.runtime.Teardown()
	s.game = game
	s.feedback, s.countdown = 0, 0
	s.last = nil
	s.deferred = nil
}

// UpdateSettings applies new settings. Mode and round changes take effect
// from the next challenge and the next game respectively.
func (s *Session) UpdateSettings(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.settings = settings
	s.audio.Apply(settings)
	return nil
}

func (s *Session) beginChallenge() []Event {
	player := s.game.ActivePlayer()
	if player == nil {
		return nil
	}
	spec := s.catalog.Pick(challenge.Kind(s.game.LastChallengeKind))
	rc := challenge.NewRoundContext(s.game.CurrentRound, s.settings.GameMode)
	inst, err := s.runtime.Begin(spec, rc)
	if err != nil {
		// Catalog specs always have a state; nothing to run.
		return nil
	}
	s.game.LastChallengeKind = string(spec.Kind)
	s.mapper.Reset(spec.Input)

	payload := ChallengeStartedPayload{
		PlayerID:    player.ID,
		Round:       s.game.CurrentRound,
		Kind:        spec.Kind,
		Instruction: spec.Instruction,
		Duration:    rc.Duration,
		Generation:  inst.Generation,
	}
	if s.settings.ShowHints {
		payload.Hint = spec.Hint
	}
	return []Event{{Kind: EventChallengeStarted, Payload: payload}}
}

// Tick advances the session clock. Nothing moves while paused or during the
// resume countdown; an outcome on screen holds the next turn back.
func (s *Session) Tick(elapsed time.Duration) []Event {
	if s.game == nil || elapsed <= 0 {
		return nil
	}
	if s.game.Phase == domain.PhasePaused {
		return nil
	}
	s.clock += elapsed

	if s.game.Phase == domain.PhaseComplete {
		if s.feedback > 0 {
			return s.tickFeedback(elapsed)
		}
		return nil
	}
	if s.countdown > 0 {
		return s.tickCountdown(elapsed)
	}
	if s.feedback > 0 {
		return s.tickFeedback(elapsed)
	}
	if s.runtime.Current() == nil {
		return s.beginChallenge()
	}
	if o, ok := s.runtime.Tick(elapsed); ok {
		return s.resolve(o)
	}
	return nil
}

func (s *Session) tickCountdown(elapsed time.Duration) []Event {
	before := secondsLeft(s.countdown)
	s.countdown -= elapsed
	if s.countdown <= 0 {
		s.countdown = 0
		return []Event{{Kind: EventResumed}}
	}
	if after := secondsLeft(s.countdown); after != before {
		s.audio.Play(audio.CueCountdownTick)
		return []Event{{Kind: EventResumeCountdown, Payload: ResumeCountdownPayload{Remaining: after}}}
	}
	return nil
}

func secondsLeft(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

func (s *Session) tickFeedback(elapsed time.Duration) []Event {
	s.feedback -= elapsed
	if s.feedback > 0 {
		return nil
	}
	s.feedback = 0
	s.last = nil
	s.runtime.Teardown()
	events := s.deferred
	s.deferred = nil
	if s.game.Phase == domain.PhasePlaying {
		events = append(events, s.beginChallenge()...)
	}
	return events
}

// resolve applies an outcome: score, then turn advance, then the feedback
// hold before the next selection.
func (s *Session) resolve(o challenge.Outcome) []Event {
	player := s.game.ActivePlayer()
	inst := s.runtime.Current()
	ctrlEvents, err := s.ctrl.ApplyOutcome(s.game, o.Points)
	if err != nil {
		return nil
	}

	payload := ChallengeResolvedPayload{Success: o.Success, Points: o.Points}
	if player != nil {
		payload.PlayerID = player.ID
		payload.Score = player.Score
	}
	if inst != nil {
		payload.Generation = inst.Generation
	}
	s.last = &payload
	s.feedback = s.feedbackDelay

	events := []Event{{Kind: EventChallengeResolved, Payload: payload}}
	for _, ev := range ctrlEvents {
		if ev.Kind == EventGameEnded {
			s.deferred = append(s.deferred, ev)
			s.audio.Play(audio.CueWin)
			continue
		}
		events = append(events, ev)
	}
	return events
}

// HandlePointer feeds a raw pointer event, stamped with the session clock,
// through the input mapper into the running challenge.
func (s *Session) HandlePointer(ev input.PointerEvent) []Event {
	if s.game == nil || s.game.Phase != domain.PhasePlaying || s.countdown > 0 || s.feedback > 0 {
		return nil
	}
	if s.runtime.Current() == nil {
		return nil
	}
	ev.At = s.clock
	var events []Event
	for _, g := range s.mapper.Handle(ev) {
		if o, ok := s.runtime.Input(g); ok {
			events = append(events, s.resolve(o)...)
			break
		}
	}
	return events
}

// Pause suspends the game. Timers keep their remaining time.
func (s *Session) Pause() ([]Event, error) {
	if s.game == nil {
		return nil, ErrNoSession
	}
	events, err := s.ctrl.Pause(s.game)
	if err != nil {
		return nil, err
	}
	s.mapper.Reset(s.runtime.InputMode())
	s.countdown = 0
	return events, nil
}

// Resume continues a paused game, after the resume countdown when enabled.
func (s *Session) Resume() ([]Event, error) {
	if s.game == nil {
		return nil, ErrNoSession
	}
	events, err := s.ctrl.Resume(s.game)
	if err != nil {
		return nil, err
	}
	if s.resumeCountdown <= 0 {
		return events, nil
	}
	s.countdown = time.Duration(s.resumeCountdown) * time.Second
	return []Event{{Kind: EventResumeCountdown, Payload: ResumeCountdownPayload{Remaining: s.resumeCountdown}}}, nil
}

// Quit ends the game immediately, dropping any running challenge and any
// outcome still on screen.
func (s *Session) Quit() []Event {
	if s.game == nil {
		return nil
	}
	s.runtime.Teardown()
	s.feedback, s.countdown = 0, 0
	s.last = nil
	s.deferred = nil
	return s.ctrl.Quit(s.game)
}

// PlayerQuit takes a player out. If it was their turn the running challenge
// is discarded and the next player is up.
func (s *Session) PlayerQuit(playerID string) ([]Event, error) {
	if s.game == nil {
		return nil, ErrNoSession
	}
	wasTurn := false
	if p := s.game.ActivePlayer(); p != nil && p.ID == playerID && s.feedback == 0 {
		wasTurn = true
	}
	events, err := s.ctrl.MarkOut(s.game, playerID)
	if err != nil {
		return nil, err
	}
	if s.game.Phase == domain.PhaseComplete {
		s.runtime.Teardown()
		s.feedback = 0
		s.deferred = nil
		return events, nil
	}
	if wasTurn {
		s.runtime.Teardown()
		if s.game.Phase == domain.PhasePlaying && s.countdown == 0 {
			events = append(events, s.beginChallenge()...)
		}
	}
	return events, nil
}

// StopEndless ends an endless game.
func (s *Session) StopEndless() ([]Event, error) {
	if s.game == nil {
		return nil, ErrNoSession
	}
	events, err := s.ctrl.StopEndless(s.game)
	if err != nil {
		return nil, err
	}
	s.runtime.Teardown()
	s.feedback, s.countdown = 0, 0
	s.deferred = nil
	return events, nil
}

// PlayAgain starts a new game with the same players once this one is over.
func (s *Session) PlayAgain() ([]Event, error) {
	if s.game == nil {
		return nil, ErrNoSession
	}
	if s.feedback > 0 {
		return nil, ErrNotComplete
	}
	game, events, err := s.ctrl.PlayAgain(s.game)
	if err != nil {
		return nil, err
	}
	s.reset(game)
	return append(events, s.beginChallenge()...), nil
}

// Close releases the audio context.
func (s *Session) Close() error {
	s.runtime.Teardown()
	return s.audio.Close()
}

// Snapshot is the render and automation view of a session.
type Snapshot struct {
	Phase          domain.Phase              `json:"phase"`
	Round          int                       `json:"round"`
	TotalRounds    int                       `json:"total_rounds"`
	ActivePlayerID string                    `json:"active_player_id,omitempty"`
	Players        []PlayerResult            `json:"players"`
	Challenge      *challenge.View           `json:"challenge,omitempty"`
	LastOutcome    *ChallengeResolvedPayload `json:"last_outcome,omitempty"`
	Countdown      int                       `json:"countdown,omitempty"`
	EndReason      string                    `json:"end_reason,omitempty"`
	Clock          time.Duration             `json:"clock"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	if s.game == nil {
		return Snapshot{Phase: domain.PhaseSetup}
	}
	snap := Snapshot{
		Phase:       s.game.Phase,
		Round:       s.game.CurrentRound,
		TotalRounds: s.game.TotalRounds,
		Players:     playerResults(s.game.Players),
		LastOutcome: s.last,
		EndReason:   s.game.EndReason,
		Clock:       s.clock,
	}
	if s.countdown > 0 {
		snap.Countdown = secondsLeft(s.countdown)
	}
	if p := s.game.ActivePlayer(); p != nil && s.game.Phase != domain.PhaseComplete {
		snap.ActivePlayerID = p.ID
	}
	if inst := s.runtime.Current(); inst != nil {
		v := inst.View()
		snap.Challenge = &v
	}
	return snap
}
