package identity

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/go-faster/errors"
)

const (
	deviceIDPrefix   = "EBD-"
	platformIDPrefix = "TG-"
	deviceIDLength   = 9
	deviceIDCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	defaultUsername = "Earner"
)

// Store is the durable local storage collaborator: a single key holding the
// generated device identifier.
type Store interface {
	Load() (string, error)
	Save(id string) error
}

// HostBridge is the surrounding mini-app shell. It may know who the user is;
// absence degrades to an anonymous device identity.
type HostBridge interface {
	UserID() (int64, bool)
	Username() (string, bool)
}

type Resolver struct {
	bridge HostBridge
	store  Store
}

func NewResolver(bridge HostBridge, store Store) *Resolver {
	return &Resolver{bridge: bridge, store: store}
}

// ResolveUserID returns a stable identifier for this device. A host-supplied
// platform id wins; otherwise a previously persisted id is reused; otherwise a
// fresh one is generated and persisted. The generated id is not globally
// unique, only unlikely to collide.
func (r *Resolver) ResolveUserID() (string, error) {
	if id, ok := r.bridge.UserID(); ok {
		return platformIDPrefix + strconv.FormatInt(id, 10), nil
	}
	saved, err := r.store.Load()
	if err != nil {
		return "", errors.Wrap(err, "store.Load failed: ")
	}
	if saved != "" {
		return saved, nil
	}
	id, err := generateDeviceID()
	if err != nil {
		return "", errors.Wrap(err, "generateDeviceID failed: ")
	}
	if err := r.store.Save(id); err != nil {
		return "", errors.Wrap(err, "store.Save failed: ")
	}
	return id, nil
}

// ResolveUsername returns the host-supplied display name, or the default.
func (r *Resolver) ResolveUsername() string {
	if name, ok := r.bridge.Username(); ok && name != "" {
		return name
	}
	return defaultUsername
}

func generateDeviceID() (string, error) {
	buf := make([]byte, deviceIDLength)
	max := big.NewInt(int64(len(deviceIDCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "rand.Int failed: ")
		}
		buf[i] = deviceIDCharset[n.Int64()]
	}
	return deviceIDPrefix + string(buf), nil
}

// StaticBridge is a HostBridge fed from configuration. A zero id means the
// host supplied nothing.
type StaticBridge struct {
	ID   int64
	Name string
}

func (b StaticBridge) UserID() (int64, bool) {
	return b.ID, b.ID != 0
}

func (b StaticBridge) Username() (string, bool) {
	return b.Name, b.Name != ""
}
