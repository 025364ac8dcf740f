package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/rtapi"
	"github.com/heroiclabs/nakama-go/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServerKey = "defaultkey"
	HttpKey   = "defaulthttpkey"
	Host      = "127.0.0.1"
	Port      = 7350
)

type TestClient struct {
	Client  *nakama.Client
	Session *nakama.Session
	Socket  *nakama.Socket
	UserID  string

	mu      sync.Mutex
	waiters map[int64][]chan *rtapi.MatchData
}

func NewTestClient(t *testing.T) *TestClient {
	client := nakama.NewClient(ServerKey, Host, Port, false)

	deviceID := fmt.Sprintf("test_device_%d", time.Now().UnixNano())

	session, err := client.AuthenticateDevice(context.Background(), deviceID, true, "")
	if err != nil {
		t.Fatalf("Failed to authenticate: %v", err)
	}

	tc := &TestClient{
		Client:  client,
		Session: session,
		UserID:  session.UserId,
		waiters: map[int64][]chan *rtapi.MatchData{},
	}

	socket := client.NewSocket()
	socket.OnMatchData = tc.dispatch
	if err := socket.Connect(context.Background(), session, true); err != nil {
		t.Fatalf("Failed to connect socket: %v", err)
	}
	tc.Socket = socket
	return tc
}

func (tc *TestClient) Close() {
	if tc.Socket != nil {
		tc.Socket.Close()
	}
}

func (tc *TestClient) dispatch(data *rtapi.MatchData) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	for _, ch := range tc.waiters[data.OpCode] {
		select {
		case ch <- data:
		default:
		}
	}
}

// Expect registers interest in opCode before the message can arrive.
func (tc *TestClient) Expect(opCode int64) <-chan *rtapi.MatchData {
	ch := make(chan *rtapi.MatchData, 64)
	tc.mu.Lock()
	tc.waiters[opCode] = append(tc.waiters[opCode], ch)
	tc.mu.Unlock()
	return ch
}

// Wait blocks for the next message on ch and decodes its payload.
func Wait(t *testing.T, ch <-chan *rtapi.MatchData, timeout time.Duration) map[string]interface{} {
	t.Helper()
	select {
	case data := <-ch:
		var s structpb.Struct
		if err := proto.Unmarshal(data.Data, &s); err != nil {
			t.Fatalf("Failed to decode op %d: %v", data.OpCode, err)
		}
		return s.AsMap()
	case <-time.After(timeout):
		t.Fatalf("Timeout after %s", timeout)
		return nil
	}
}

// Call invokes an RPC with req encoded as JSON and decodes the reply into out.
func (tc *TestClient) Call(t *testing.T, id string, req, out interface{}) error {
	t.Helper()
	payload := ""
	if req != nil {
		b, err := json.Marshal(req)
		if err != nil {
			t.Fatalf("marshal %s: %v", id, err)
		}
		payload = string(b)
	}
	rpc, err := tc.Client.RpcFunc(context.Background(), tc.Session, id, payload)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal([]byte(rpc.Payload), out); err != nil {
			t.Fatalf("unmarshal %s reply %q: %v", id, rpc.Payload, err)
		}
	}
	return nil
}

// Send encodes body as a Struct and sends it to the match.
func (tc *TestClient) Send(t *testing.T, matchID string, opCode int64, body map[string]interface{}) {
	t.Helper()
	s, err := structpb.NewStruct(body)
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	data, err := proto.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := tc.Socket.SendMatchState(context.Background(), matchID, opCode, data, nil); err != nil {
		t.Fatalf("Failed to send op %d: %v", opCode, err)
	}
}
