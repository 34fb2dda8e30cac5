package core

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TempIDPrefix marks IDs generated client-side that await server confirmation.
const TempIDPrefix = "temp-"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewNodeID generates a ULID string for server-assigned nodes.
func NewNodeID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewTempID generates a client-side placeholder ID.
func NewTempID() string {
	return TempIDPrefix + strings.ToLower(NewNodeID())
}

// IsTempID reports whether id was produced by NewTempID.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}
