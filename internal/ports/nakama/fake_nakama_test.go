package nakama

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

type storageKey struct {
	collection, userID, key string
}

// fakeNakama implements the slice of runtime.NakamaModule the adapters use.
// Calling anything else panics on the nil embedded interface.
type fakeNakama struct {
	runtime.NakamaModule

	rev      int
	objects  map[storageKey]*api.StorageObject
	users    map[string]*api.User
	matches  []map[string]interface{}
	writeErr error
}

func newFakeNakama() *fakeNakama {
	return &fakeNakama{
		objects: map[storageKey]*api.StorageObject{},
		users:   map[string]*api.User{},
	}
}

func (f *fakeNakama) addUser(id, username, displayName string) {
	f.users[id] = &api.User{Id: id, Username: username, DisplayName: displayName}
}

func (f *fakeNakama) nextVersion() string {
	f.rev++
	return "v" + strconv.Itoa(f.rev)
}

func (f *fakeNakama) checkVersion(k storageKey, version string) error {
	cur, exists := f.objects[k]
	switch {
	case version == "":
		return nil
	case version == "*":
		if exists {
			return runtime.ErrStorageRejectedVersion
		}
	case !exists || cur.Version != version:
		return runtime.ErrStorageRejectedVersion
	}
	return nil
}

func (f *fakeNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	for _, w := range writes {
		if err := f.checkVersion(storageKey{w.Collection, w.UserID, w.Key}, w.Version); err != nil {
			return nil, err
		}
	}
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		obj := &api.StorageObject{
			Collection: w.Collection,
			Key:        w.Key,
			UserId:     w.UserID,
			Value:      w.Value,
			Version:    f.nextVersion(),
		}
		f.objects[storageKey{w.Collection, w.UserID, w.Key}] = obj
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID, Version: obj.Version})
	}
	return acks, nil
}

func (f *fakeNakama) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	var out []*api.StorageObject
	for _, r := range reads {
		if obj, ok := f.objects[storageKey{r.Collection, r.UserID, r.Key}]; ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (f *fakeNakama) StorageDelete(ctx context.Context, deletes []*runtime.StorageDelete) error {
	for _, d := range deletes {
		if err := f.checkVersion(storageKey{d.Collection, d.UserID, d.Key}, d.Version); err != nil {
			return err
		}
	}
	for _, d := range deletes {
		delete(f.objects, storageKey{d.Collection, d.UserID, d.Key})
	}
	return nil
}

// StorageList pages through objects ordered by key; the cursor is an offset.
func (f *fakeNakama) StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error) {
	var all []*api.StorageObject
	for k, obj := range f.objects {
		if k.collection == collection && k.userID == userID {
			all = append(all, obj)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	start, _ := strconv.Atoi(cursor)
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end >= len(all) {
		return all[start:], "", nil
	}
	return all[start:end], strconv.Itoa(end), nil
}

func (f *fakeNakama) AccountGetId(ctx context.Context, userID string) (*api.Account, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, runtime.NewError("account not found", codeNotFound)
	}
	cp := *u
	return &api.Account{User: &cp}, nil
}

func (f *fakeNakama) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	u, ok := f.users[userID]
	if !ok {
		return runtime.NewError("account not found", codeNotFound)
	}
	if username != "" {
		u.Username = username
	}
	if displayName != "" {
		u.DisplayName = displayName
	}
	if avatarUrl != "" {
		u.AvatarUrl = avatarUrl
	}
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		u.Metadata = string(b)
	}
	return nil
}

func (f *fakeNakama) MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error) {
	for _, w := range storageWrites {
		if err := f.checkVersion(storageKey{w.Collection, w.UserID, w.Key}, w.Version); err != nil {
			return nil, nil, err
		}
	}
	acks, err := f.StorageWrite(ctx, storageWrites)
	if err != nil {
		return nil, nil, err
	}
	for _, a := range accountUpdates {
		if err := f.AccountUpdateId(ctx, a.UserID, a.Username, a.Metadata, a.DisplayName, "", "", "", a.AvatarUrl); err != nil {
			return nil, nil, err
		}
	}
	return acks, nil, nil
}

func (f *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	f.matches = append(f.matches, params)
	return module + "." + strconv.Itoa(len(f.matches)), nil
}

func userContext(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}
