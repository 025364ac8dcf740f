package nakama

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"buttonblitz/internal/app/online"
	"buttonblitz/internal/config"
	"buttonblitz/internal/domain"
	"buttonblitz/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gRPC status codes used by runtime.NewError.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeAborted            = 10
	codeInternal           = 13
	codeUnavailable        = 14
	codeUnauthenticated    = 16
)

var errBadPayload = errors.New("invalid payload")

var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcCreateRoom:       rpcCreateRoom,
		RpcJoinRoom:         rpcJoinRoom,
		RpcListRooms:        rpcListRooms,
		RpcLeaveRoom:        rpcLeaveRoom,
		RpcStartRoom:        rpcStartRoom,
		RpcPollRoom:         rpcPollRoom,
		RpcCompleteTask:     rpcCompleteTask,
		RpcPlayAgain:        rpcPlayAgain,
		RpcUpdateRoom:       rpcUpdateRoom,
		RpcRoomInvite:       rpcRoomInvite,
		RpcUploadAvatar:     rpcUploadAvatar,
		RpcCreateLocalMatch: rpcCreateLocalMatch,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return fmt.Errorf("register rpc %s: %w", id, err)
		}
	}
	return nil
}

// rpcEnv is the per-call wiring of ports and services.
type rpcEnv struct {
	cfg      config.GameConfig
	rooms    ports.RoomStore
	identity *NakamaIdentityAdapter
	uploads  ports.UploadPort
	svc      *online.Service
	user     ports.User
}

func newRPCEnv(ctx context.Context, nk runtime.NakamaModule) (*rpcEnv, error) {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg := config.GetGameConfig().WithEnv(env)
	e := &rpcEnv{
		cfg:      cfg,
		rooms:    NewStorageRoomStore(nk),
		identity: NewNakamaIdentityAdapter(nk),
		uploads:  NewStorageUploadAdapter(nk),
	}
	user, err := e.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	e.user = user
	svc, err := online.NewService(e.rooms, online.Config{
		LivenessTimeout: cfg.LivenessTimeout(),
		MaxPlayers:      cfg.MaxRoomPlayers,
	}, nil)
	if err != nil {
		return nil, err
	}
	e.svc = svc
	return e, nil
}

func (e *rpcEnv) member() online.Member {
	return online.Member{UserID: e.user.ID, Name: e.user.DisplayName}
}

// rpcError converts service errors into runtime errors with gRPC codes.
func rpcError(logger runtime.Logger, op string, err error) error {
	code := codeInternal
	switch {
	case errors.Is(err, ports.ErrNotLoggedIn):
		code = codeUnauthenticated
	case errors.Is(err, ports.ErrRoomNotFound):
		code = codeNotFound
	case errors.Is(err, online.ErrNotHost), errors.Is(err, online.ErrNotInRoom), errors.Is(err, online.ErrPlayerOut):
		code = codePermissionDenied
	case errors.Is(err, errBadPayload), errors.Is(err, online.ErrInvalidCode), errors.Is(err, online.ErrInvalidSettings),
		errors.Is(err, errMatchConfig):
		code = codeInvalidArgument
	case errors.Is(err, online.ErrRoomFull), errors.Is(err, online.ErrRoomStarted), errors.Is(err, online.ErrTooFewPlayers),
		errors.Is(err, online.ErrNotPlaying), errors.Is(err, online.ErrNotFinished), errors.Is(err, online.ErrStaleRound):
		code = codeFailedPrecondition
	case errors.Is(err, online.ErrBusy), errors.Is(err, ports.ErrVersionConflict):
		code = codeAborted
	case errors.Is(err, online.ErrCodeExhausted):
		code = codeUnavailable
	}
	if code == codeInternal {
		logger.Error("%s: %v", op, err)
		return runtime.NewError("internal error", code)
	}
	logger.Debug("%s: %v", op, err)
	return runtime.NewError(err.Error(), code)
}

func decodeRequest(payload string, v interface{}) error {
	if strings.TrimSpace(payload) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return nil
}

func encodeResponse(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// roomCall is the boilerplate shared by every room RPC: wire env, decode the
// request, run fn, encode the result.
func roomCall[Req any](op string, fn func(ctx context.Context, e *rpcEnv, req Req) (interface{}, error)) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		e, err := newRPCEnv(ctx, nk)
		if err != nil {
			return "", rpcError(logger, op, err)
		}
		var req Req
		if err := decodeRequest(payload, &req); err != nil {
			return "", rpcError(logger, op, err)
		}
		out, err := fn(ctx, e, req)
		if err != nil {
			return "", rpcError(logger, op, err)
		}
		return encodeResponse(out)
	}
}

type roomRequest struct {
	RoomID string `json:"room_id"`
}

type roomOptionsRequest struct {
	RoomID      string      `json:"room_id,omitempty"`
	IsPublic    bool        `json:"is_public"`
	TotalRounds int         `json:"total_rounds"`
	Mode        domain.Mode `json:"mode"`
}

func (r roomOptionsRequest) options() online.RoomOptions {
	opts := online.RoomOptions{IsPublic: r.IsPublic, TotalRounds: r.TotalRounds, Mode: r.Mode}
	if opts.Mode == "" {
		opts.Mode = domain.ModeParty
	}
	if opts.TotalRounds == 0 {
		opts.TotalRounds = domain.DefaultSettings().TotalRounds
	}
	return opts
}

type roomResponse struct {
	Room *domain.Room `json:"room"`
}

func requireRoomID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: room_id is required", errBadPayload)
	}
	return nil
}

var rpcCreateRoom = roomCall("RpcCreateRoom", func(ctx context.Context, e *rpcEnv, req roomOptionsRequest) (interface{}, error) {
	room, err := e.svc.CreateRoom(ctx, e.member(), req.options())
	if err != nil {
		return nil, err
	}
	return roomResponse{Room: room}, nil
})

type joinRequest struct {
	Code string `json:"code"`
}

var rpcJoinRoom = roomCall("RpcJoinRoom", func(ctx context.Context, e *rpcEnv, req joinRequest) (interface{}, error) {
	room, err := e.svc.JoinByCode(ctx, e.member(), req.Code)
	if err != nil {
		return nil, err
	}
	return roomResponse{Room: room}, nil
})

type listResponse struct {
	Rooms []*domain.Room `json:"rooms"`
}

var rpcListRooms = roomCall("RpcListRooms", func(ctx context.Context, e *rpcEnv, _ struct{}) (interface{}, error) {
	rooms, err := e.svc.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []*domain.Room{}
	}
	return listResponse{Rooms: rooms}, nil
})

var rpcLeaveRoom = roomCall("RpcLeaveRoom", func(ctx context.Context, e *rpcEnv, req roomRequest) (interface{}, error) {
	if err := requireRoomID(req.RoomID); err != nil {
		return nil, err
	}
	room, err := e.svc.Leave(ctx, req.RoomID, e.user.ID)
	if err != nil {
		return nil, err
	}
	return roomResponse{Room: room}, nil
})

var rpcStartRoom = roomCall("RpcStartRoom", func(ctx context.Context, e *rpcEnv, req roomRequest) (interface{}, error) {
	if err := requireRoomID(req.RoomID); err != nil {
		return nil, err
	}
	room, err := e.svc.StartGame(ctx, req.RoomID, e.user.ID)
	if err != nil {
		return nil, err
	}
	return roomResponse{Room: room}, nil
})

type pollResponse struct {
	online.PollResult
	PollIntervalMs int `json:"poll_interval_ms"`
}

var rpcPollRoom = roomCall("RpcPollRoom", func(ctx context.Context, e *rpcEnv, req roomRequest) (interface{}, error) {
	if err := requireRoomID(req.RoomID); err != nil {
		return nil, err
	}
	res, err := e.svc.Poll(ctx, req.RoomID, e.user.ID)
	if err != nil {
		return nil, err
	}
	return pollResponse{PollResult: res, PollIntervalMs: e.cfg.PollIntervalMs}, nil
})

type completeRequest struct {
	RoomID   string `json:"room_id"`
	RoundSeq int64  `json:"round_seq"`
	Points   int    `json:"points"`
}

var rpcCompleteTask = roomCall("RpcCompleteTask", func(ctx context.Context, e *rpcEnv, req completeRequest) (interface{}, error) {
	if err := requireRoomID(req.RoomID); err != nil {
		return nil, err
	}
	if req.Points < 0 {
		return nil, fmt.Errorf("%w: points must not be negative", errBadPayload)
	}
	room, err := e.svc.CompleteTask(ctx, req.RoomID, e.user.ID, req.RoundSeq, req.Points)
	if err != nil {
		return nil, err
	}
	return roomResponse{Room: room}, nil
})

var rpcPlayAgain = roomCall("RpcPlayAgain", func(ctx context.Context, e *rpcEnv, req roomRequest) (interface{}, error) {
	if err := requireRoomID(req.RoomID); err != nil {
		return nil, err
	}
	room, err := e.svc.PlayAgain(ctx, req.RoomID, e.user.ID)
	if err != nil {
		return nil, err
	}
	return roomResponse{Room: room}, nil
})

var rpcUpdateRoom = roomCall("RpcUpdateRoom", func(ctx context.Context, e *rpcEnv, req roomOptionsRequest) (interface{}, error) {
	if err := requireRoomID(req.RoomID); err != nil {
		return nil, err
	}
	room, err := e.svc.UpdateSettings(ctx, req.RoomID, e.user.ID, req.options())
	if err != nil {
		return nil, err
	}
	return roomResponse{Room: room}, nil
})

type inviteResponse struct {
	Code  string `json:"code"`
	Link  string `json:"link"`
	QRPng string `json:"qr_png"`
}

var rpcRoomInvite = roomCall("RpcRoomInvite", func(ctx context.Context, e *rpcEnv, req roomRequest) (interface{}, error) {
	if err := requireRoomID(req.RoomID); err != nil {
		return nil, err
	}
	room, err := e.rooms.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if _, _, ok := room.Player(e.user.ID); !ok {
		return nil, online.ErrNotInRoom
	}
	link, png, err := online.InviteQR(room.RoomCode, online.DefaultQRSize)
	if err != nil {
		return nil, err
	}
	return inviteResponse{Code: room.RoomCode, Link: link, QRPng: base64.StdEncoding.EncodeToString(png)}, nil
})

type uploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

type uploadResponse struct {
	AvatarURL string     `json:"avatar_url"`
	User      ports.User `json:"user"`
}

var rpcUploadAvatar = roomCall("RpcUploadAvatar", func(ctx context.Context, e *rpcEnv, req uploadRequest) (interface{}, error) {
	if !allowedAvatarTypes[req.ContentType] {
		return nil, fmt.Errorf("%w: unsupported content type %q", errBadPayload, req.ContentType)
	}
	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: data is not base64", errBadPayload)
	}
	if len(data) == 0 || len(data) > e.cfg.AvatarMaxBytes {
		return nil, fmt.Errorf("%w: avatar must be 1-%d bytes", errBadPayload, e.cfg.AvatarMaxBytes)
	}
	url, err := e.uploads.Upload(ctx, e.user.ID, req.Filename, req.ContentType, data)
	if err != nil {
		return nil, err
	}
	user, err := e.identity.UpdateUser(ctx, ports.UserUpdate{AvatarURL: &url})
	if err != nil {
		return nil, err
	}
	return uploadResponse{AvatarURL: url, User: user}, nil
})

type localMatchResponse struct {
	MatchID string `json:"match_id"`
}

// rpcCreateLocalMatch starts a pass-and-play match owned by the caller.
func rpcCreateLocalMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", rpcError(logger, "RpcCreateLocalMatch", ports.ErrNotLoggedIn)
	}
	var c LocalMatchConfig
	if err := decodeRequest(payload, &c); err != nil {
		return "", rpcError(logger, "RpcCreateLocalMatch", err)
	}
	c.Owner = userID
	if err := c.normalize(); err != nil {
		return "", rpcError(logger, "RpcCreateLocalMatch", err)
	}
	if _, err := c.settings(); err != nil {
		return "", rpcError(logger, "RpcCreateLocalMatch", err)
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return "", rpcError(logger, "RpcCreateLocalMatch", err)
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameLocal, map[string]interface{}{matchParamConfig: string(raw)})
	if err != nil {
		return "", rpcError(logger, "RpcCreateLocalMatch", err)
	}
	logger.Info("RpcCreateLocalMatch [User:%s]: Created match %s", userID, matchID)
	return encodeResponse(localMatchResponse{MatchID: matchID})
}
