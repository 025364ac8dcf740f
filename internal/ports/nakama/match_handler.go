package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"buttonblitz/internal/app"
	"buttonblitz/internal/audio"
	"buttonblitz/internal/bot"
	"buttonblitz/internal/config"
	"buttonblitz/internal/domain"
	"buttonblitz/internal/input"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	// MaxLocalSeats caps humans plus bots in one pass-and-play match.
	MaxLocalSeats = 8
	// MaxNameLength caps a local player's display name.
	MaxNameLength = 16
	// emptyGraceSeconds is how long a match survives with nobody connected.
	emptyGraceSeconds = 60
	// matchParamConfig is the MatchCreate param carrying LocalMatchConfig as JSON.
	matchParamConfig = "config"
)

var errMatchConfig = errors.New("invalid local match config")

// LocalMatchConfig describes a pass-and-play match created by create_local_match.
type LocalMatchConfig struct {
	Owner     string      `json:"owner"`
	Players   []string    `json:"players"`
	Bots      int         `json:"bots"`
	BotLevel  string      `json:"bot_level"`
	Mode      domain.Mode `json:"mode"`
	Rounds    int         `json:"rounds"`
	ShowHints *bool       `json:"show_hints,omitempty"`
}

func (c *LocalMatchConfig) normalize() error {
	if c.Owner == "" {
		return fmt.Errorf("%w: owner is required", errMatchConfig)
	}
	names := c.Players[:0]
	for _, n := range c.Players {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if len([]rune(n)) > MaxNameLength {
			n = string([]rune(n)[:MaxNameLength])
		}
		names = append(names, n)
	}
	c.Players = names
	if c.Bots < 0 {
		c.Bots = 0
	}
	total := len(c.Players) + c.Bots
	if total < domain.MinPlayers || total > MaxLocalSeats {
		return fmt.Errorf("%w: need %d-%d players, got %d", errMatchConfig, domain.MinPlayers, MaxLocalSeats, total)
	}
	if c.Mode == "" {
		c.Mode = domain.ModeParty
	}
	if c.Rounds == 0 {
		c.Rounds = domain.DefaultSettings().TotalRounds
	}
	return nil
}

// settings derives session settings from the config.
func (c LocalMatchConfig) settings() (domain.Settings, error) {
	s := domain.DefaultSettings()
	s.GameMode = c.Mode
	s.TotalRounds = c.Rounds
	if c.ShowHints != nil {
		s.ShowHints = *c.ShowHints
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%w: %v", errMatchConfig, err)
	}
	return s, nil
}

func parseLocalMatchConfig(params map[string]interface{}) (LocalMatchConfig, error) {
	var c LocalMatchConfig
	raw, ok := params[matchParamConfig].(string)
	if !ok {
		return c, fmt.Errorf("%w: missing %q param", errMatchConfig, matchParamConfig)
	}
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return c, fmt.Errorf("%w: %v", errMatchConfig, err)
	}
	return c, c.normalize()
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	OwnerID       string
	Mode          domain.Mode
	Seats         []app.Seat
	Presences     map[string]runtime.Presence // UserId -> Presence
	Session       *app.Session
	Recorder      *audio.Recorder
	Bots          map[string]*bot.Agent
	Tick          int64
	TickRate      int
	TickInterval  time.Duration
	SnapshotEvery int64
	EmptySince    int64 // tick the match became empty, -1 while occupied
	LabelPhase    domain.Phase
}

// Phase returns the session phase, setup before the first start.
func (ms *MatchState) Phase() domain.Phase {
	if g := ms.Session.Game(); g != nil {
		return g.Phase
	}
	return domain.PhaseSetup
}

func newMatchState(c LocalMatchConfig, cfg config.GameConfig, rng *rand.Rand) (*MatchState, error) {
	settings, err := c.settings()
	if err != nil {
		return nil, err
	}
	level := bot.LevelSmart
	if c.BotLevel != "" {
		if level, err = bot.ParseLevel(c.BotLevel); err != nil {
			return nil, fmt.Errorf("%w: %v", errMatchConfig, err)
		}
	}

	rec := audio.NewRecorder()
	session, err := app.NewSession(app.SessionConfig{
		Settings:      settings,
		Rand:          rng,
		Audio:         rec.Factory(),
		FeedbackDelay: cfg.FeedbackDelay(),
	})
	if err != nil {
		return nil, err
	}

	state := &MatchState{
		OwnerID:       c.Owner,
		Mode:          c.Mode,
		Presences:     make(map[string]runtime.Presence),
		Session:       session,
		Recorder:      rec,
		Bots:          make(map[string]*bot.Agent),
		TickRate:      cfg.TickRate,
		TickInterval:  cfg.TickInterval(),
		SnapshotEvery: int64(cfg.SnapshotEveryTicks),
		EmptySince:    0,
		LabelPhase:    domain.PhaseSetup,
	}
	for _, name := range c.Players {
		state.Seats = append(state.Seats, app.Seat{
			ID:          "local-" + uuid.NewString(),
			DisplayName: name,
			Color:       domain.ColorForIndex(len(state.Seats)),
		})
	}
	for i := 0; i < c.Bots; i++ {
		identity := bot.GetBotIdentity(i)
		id := fmt.Sprintf("%s-%d", identity.UserID, i)
		agent, err := bot.NewAgent(id, identity.DisplayName, level, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			return nil, err
		}
		state.Bots[id] = agent
		state.Seats = append(state.Seats, agent.Seat(domain.ColorForIndex(len(state.Seats))))
	}
	return state, nil
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		cfg = cfg.WithEnv(env)
	}

	lc, err := parseLocalMatchConfig(params)
	if err != nil {
		logger.Error("MatchInit: %v", err)
		return nil, 0, ""
	}
	state, err := newMatchState(lc, cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		logger.Error("MatchInit: Failed to build match state: %v", err)
		return nil, 0, ""
	}

	label, err := encodeLabel(matchLabel(state))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	logger.Info("MatchInit: Local match for %s with %d seats (%d bots), mode %s.", lc.Owner, len(state.Seats), len(state.Bots), lc.Mode)
	return state, state.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if presence.GetUserId() != matchState.OwnerID {
		return state, false, "Local match is private"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
	}
	matchState.EmptySince = -1

	mh.sendSnapshot(matchState, dispatcher, logger, presences)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		matchState.EmptySince = tick
		if matchState.Phase() == domain.PhasePlaying {
			// Nobody is watching the timer; hold the game until the owner is back.
			if _, err := matchState.Session.Pause(); err != nil {
				logger.Warn("MatchLeave: Failed to pause: %v", err)
			}
			logger.Debug("MatchLeave: Owner left, game paused.")
		}
		mh.updateLabel(matchState, dispatcher, logger)
	}
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	if matchState.EmptySince >= 0 && tick-matchState.EmptySince >= int64(emptyGraceSeconds*matchState.TickRate) {
		logger.Info("MatchLoop: Terminating match with nobody connected.")
		return nil
	}

	for _, msg := range messages {
		if msg.GetUserId() != matchState.OwnerID {
			continue
		}
		mh.handleMessage(matchState, dispatcher, logger, msg)
	}

	for _, agent := range matchState.Bots {
		mh.broadcastEvents(matchState, dispatcher, logger, agent.Play(matchState.Session))
	}
	mh.broadcastEvents(matchState, dispatcher, logger, matchState.Session.Tick(matchState.TickInterval))
	mh.flushCues(matchState, dispatcher, logger)

	if matchState.SnapshotEvery > 0 && tick%matchState.SnapshotEvery == 0 && len(matchState.Presences) > 0 {
		mh.sendSnapshot(matchState, dispatcher, logger, nil)
	}
	if matchState.Phase() != matchState.LabelPhase {
		mh.updateLabel(matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	body, err := decodePayload(msg.GetData())
	if err != nil {
		logger.Warn("MatchLoop: Bad payload for opcode %d: %v", msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}

	var events []app.Event
	s := state.Session
	switch msg.GetOpCode() {
	case OpPointerDown, OpPointerMove, OpPointerUp:
		phase := input.PointerDown
		switch msg.GetOpCode() {
		case OpPointerMove:
			phase = input.PointerMove
		case OpPointerUp:
			phase = input.PointerUp
		}
		events = s.HandlePointer(input.PointerEvent{
			Phase: phase,
			Point: input.Point{X: numberField(body, "x"), Y: numberField(body, "y")},
		})
	case OpStartGame:
		if s.Game() != nil {
			err = errors.New("game already started")
			break
		}
		events, err = s.Start(state.Seats)
		if err == nil {
			logger.Info("StartGame: Game started with %d players.", len(state.Seats))
		}
	case OpPause:
		events, err = s.Pause()
	case OpResume:
		events, err = s.Resume()
	case OpQuit:
		events = s.Quit()
	case OpPlayerQuit:
		events, err = s.PlayerQuit(stringField(body, "player_id"))
	case OpPlayAgain:
		events, err = s.PlayAgain()
	case OpStopEndless:
		events, err = s.StopEndless()
	case OpRequestSnapshot:
		if p, ok := state.Presences[msg.GetUserId()]; ok {
			mh.sendSnapshot(state, dispatcher, logger, []runtime.Presence{p})
		}
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	if err != nil {
		logger.Warn("MatchLoop: Opcode %d from %s rejected: %v", msg.GetOpCode(), msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, msg.GetUserId(), 400, err.Error())
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
}

var eventOpCodes = map[app.EventKind]int64{
	app.EventGameStarted:       OpGameStarted,
	app.EventChallengeStarted:  OpChallengeStarted,
	app.EventChallengeResolved: OpChallengeResolved,
	app.EventTurnPassed:        OpTurnPassed,
	app.EventRoundAdvanced:     OpRoundAdvanced,
	app.EventPlayerOut:         OpPlayerOut,
	app.EventPaused:            OpPaused,
	app.EventResumeCountdown:   OpResumeCountdown,
	app.EventResumed:           OpResumed,
	app.EventGameEnded:         OpGameEnded,
}

func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}
	if ev.Kind == app.EventGameEnded {
		if p, ok := ev.Payload.(app.GameEndedPayload); ok {
			logger.Info("GameEnded: reason=%s winners=%v", p.Reason, p.Winners)
		}
	}

	data, err := encodePayload(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Targeted events with nobody connected are dropped, never broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Warn("Failed to broadcast %v: %v", ev.Kind, err)
	}
}

type cueMessage struct {
	Cue       audio.Cue `json:"cue,omitempty"`
	Gain      float64   `json:"gain,omitempty"`
	VibrateMs int64     `json:"vibrate_ms,omitempty"`
}

// flushCues forwards recorded sound and haptic output to the device.
func (mh *matchHandler) flushCues(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for _, e := range state.Recorder.Drain() {
		data, err := encodePayload(cueMessage{Cue: e.Cue, Gain: e.Gain, VibrateMs: e.Vibrate.Milliseconds()})
		if err != nil {
			logger.Error("Failed to marshal cue: %v", err)
			continue
		}
		_ = dispatcher.BroadcastMessage(OpCue, data, nil, nil, false)
	}
}

type snapshotMessage struct {
	app.Snapshot
	Tick int64 `json:"tick"`
}

func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, to []runtime.Presence) {
	snap := snapshotMessage{Snapshot: state.Session.Snapshot(), Tick: state.Tick}
	if snap.Players == nil {
		snap.Players = seatResults(state.Seats)
	}
	data, err := encodePayload(snap)
	if err != nil {
		logger.Error("Failed to marshal snapshot: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpSnapshot, data, to, nil, true); err != nil {
		logger.Warn("Failed to send snapshot: %v", err)
	}
}

func seatResults(seats []app.Seat) []app.PlayerResult {
	out := make([]app.PlayerResult, 0, len(seats))
	for _, s := range seats {
		out = append(out, app.PlayerResult{ID: s.ID, DisplayName: s.DisplayName, Color: s.Color, Status: domain.StatusActive})
	}
	return out
}

type errorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := encodePayload(errorMessage{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	_ = dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

type localMatchLabel struct {
	Game      string       `json:"game"`
	Owner     string       `json:"owner"`
	Mode      domain.Mode  `json:"mode"`
	Phase     domain.Phase `json:"phase"`
	Seats     int          `json:"seats"`
	Connected bool         `json:"connected"`
}

func matchLabel(state *MatchState) localMatchLabel {
	return localMatchLabel{
		Game:      GameLabel,
		Owner:     state.OwnerID,
		Mode:      state.Mode,
		Phase:     state.Phase(),
		Seats:     len(state.Seats),
		Connected: len(state.Presences) > 0,
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := encodeLabel(matchLabel(state))
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.LabelPhase = state.Phase()
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	if matchState, ok := state.(*MatchState); ok {
		_ = matchState.Session.Close()
	}
	return state
}

// MatchSignal answers "snapshot" with the current snapshot as JSON.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok || data != "snapshot" {
		return state, ""
	}
	b, err := json.Marshal(matchState.Session.Snapshot())
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
		return state, ""
	}
	return state, string(b)
}
