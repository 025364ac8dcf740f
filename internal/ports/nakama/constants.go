package nakama

const (
	// MatchNameLocal is the authoritative pass-and-play match handler registered with Nakama.
	MatchNameLocal = "button_blitz_local"

	// GameLabel tags every match label so listings can filter on it.
	GameLabel = "button_blitz"
)

// RPC ids.
const (
	RpcCreateRoom       = "create_room"
	RpcJoinRoom         = "join_room"
	RpcListRooms        = "list_rooms"
	RpcLeaveRoom        = "leave_room"
	RpcStartRoom        = "start_room"
	RpcPollRoom         = "poll_room"
	RpcCompleteTask     = "complete_task"
	RpcPlayAgain        = "play_again"
	RpcUpdateRoom       = "update_room"
	RpcRoomInvite       = "room_invite"
	RpcUploadAvatar     = "upload_avatar"
	RpcCreateLocalMatch = "create_local_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpPointerDown     int64 = 1
	OpPointerMove     int64 = 2
	OpPointerUp       int64 = 3
	OpStartGame       int64 = 4
	OpPause           int64 = 5
	OpResume          int64 = 6
	OpQuit            int64 = 7
	OpPlayerQuit      int64 = 8
	OpPlayAgain       int64 = 9
	OpStopEndless     int64 = 10
	OpRequestSnapshot int64 = 11

	// Server -> Client events
	OpGameStarted       int64 = 101
	OpChallengeStarted  int64 = 102
	OpChallengeResolved int64 = 103
	OpTurnPassed        int64 = 104
	OpRoundAdvanced     int64 = 105
	OpPlayerOut         int64 = 106
	OpPaused            int64 = 107
	OpResumeCountdown   int64 = 108
	OpResumed           int64 = 109
	OpGameEnded         int64 = 110
	OpSnapshot          int64 = 111
	OpCue               int64 = 112 // unreliable
	OpGameError         int64 = 113 // send privately
)
