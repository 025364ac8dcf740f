package integration

import (
	"context"
	"testing"
	"time"

	"buttonblitz/internal/ports/nakama"
)

func TestLocalMatchWithBotsPlaysToEnd(t *testing.T) {
	owner := NewTestClient(t)
	defer owner.Close()

	var created struct {
		MatchID string `json:"match_id"`
	}
	req := map[string]interface{}{"bots": 2, "bot_level": "god", "rounds": 1}
	if err := owner.Call(t, nakama.RpcCreateLocalMatch, req, &created); err != nil {
		t.Fatalf("create_local_match: %v", err)
	}

	snapshots := owner.Expect(nakama.OpSnapshot)
	if _, err := owner.Socket.JoinMatch(context.Background(), nil, created.MatchID, nil); err != nil {
		t.Fatalf("join: %v", err)
	}
	Wait(t, snapshots, 5*time.Second)

	started := owner.Expect(nakama.OpGameStarted)
	ended := owner.Expect(nakama.OpGameEnded)
	owner.Send(t, created.MatchID, nakama.OpStartGame, map[string]interface{}{})

	game := Wait(t, started, 5*time.Second)
	if players, _ := game["players"].([]interface{}); len(players) != 2 {
		t.Fatalf("expected 2 bot seats, got %v", game["players"])
	}
	result := Wait(t, ended, 60*time.Second)
	if result["reason"] != "rounds_complete" {
		t.Fatalf("unexpected end %v", result)
	}
}

func TestStrangerCannotJoinLocalMatch(t *testing.T) {
	owner := NewTestClient(t)
	defer owner.Close()
	stranger := NewTestClient(t)
	defer stranger.Close()

	var created struct {
		MatchID string `json:"match_id"`
	}
	if err := owner.Call(t, nakama.RpcCreateLocalMatch, map[string]interface{}{"players": []string{"Ann", "Ben"}}, &created); err != nil {
		t.Fatalf("create_local_match: %v", err)
	}
	if _, err := stranger.Socket.JoinMatch(context.Background(), nil, created.MatchID, nil); err == nil {
		t.Fatalf("expected stranger to be rejected")
	}
}

type roomReply struct {
	Room struct {
		ID        string `json:"id"`
		RoomCode  string `json:"room_code"`
		HostID    string `json:"host_id"`
		GameState string `json:"game_state"`
		RoundSeq  int64  `json:"round_seq"`
		Players   []struct {
			UserID string `json:"user_id"`
			Score  int    `json:"score"`
		} `json:"players"`
	} `json:"room"`
}

func TestOnlineRoomFlow(t *testing.T) {
	host := NewTestClient(t)
	defer host.Close()
	guest := NewTestClient(t)
	defer guest.Close()

	var created roomReply
	if err := host.Call(t, nakama.RpcCreateRoom, map[string]interface{}{"total_rounds": 1}, &created); err != nil {
		t.Fatalf("create_room: %v", err)
	}
	var joined roomReply
	if err := guest.Call(t, nakama.RpcJoinRoom, map[string]interface{}{"code": created.Room.RoomCode}, &joined); err != nil {
		t.Fatalf("join_room: %v", err)
	}
	if len(joined.Room.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(joined.Room.Players))
	}

	roomID := map[string]interface{}{"room_id": created.Room.ID}
	if err := guest.Call(t, nakama.RpcStartRoom, roomID, nil); err == nil {
		t.Fatalf("guest must not start the room")
	}
	var started roomReply
	if err := host.Call(t, nakama.RpcStartRoom, roomID, &started); err != nil {
		t.Fatalf("start_room: %v", err)
	}

	for _, c := range []*TestClient{host, guest} {
		done := map[string]interface{}{"room_id": created.Room.ID, "round_seq": started.Room.RoundSeq, "points": 100}
		if err := c.Call(t, nakama.RpcCompleteTask, done, nil); err != nil {
			t.Fatalf("complete_task: %v", err)
		}
	}

	var polled struct {
		Status  string   `json:"status"`
		IsHost  bool     `json:"is_host"`
		Notices []string `json:"notices"`
	}
	if err := host.Call(t, nakama.RpcPollRoom, roomID, &polled); err != nil {
		t.Fatalf("poll_room: %v", err)
	}
	if polled.Status != "connected" || !polled.IsHost {
		t.Fatalf("unexpected poll %+v", polled)
	}
	finished := false
	for _, n := range polled.Notices {
		if n == "game_finished" {
			finished = true
		}
	}
	if !finished {
		t.Fatalf("expected the host poll to finish a one-round game, notices %v", polled.Notices)
	}
}
