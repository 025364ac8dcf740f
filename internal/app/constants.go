package app

import "time"

// Reasons a game ends, carried in GameEndedPayload.Reason and
// domain.Session.EndReason.
const (
	EndRoundsComplete   = "rounds_complete"
	EndNotEnoughPlayers = "not_enough_players"
	EndQuit             = "quit"
	EndStopped          = "stopped"
)

// DefaultFeedbackDelay is how long an outcome is shown before the next turn.
const DefaultFeedbackDelay = 1500 * time.Millisecond

// DefaultResumeCountdown is the number of seconds counted down on resume.
const DefaultResumeCountdown = 3
