// Identity values referenced by index from the change log.
package quire

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// MaxActorSize is the maximum length of an ActorID in hex characters.
const MaxActorSize = 64

// UnresolvedIndex marks a table reference that could not be resolved while
// loading under Skip.
const UnresolvedIndex = -1

// ActorID identifies a replica. It is a lowercase hex string.
type ActorID string

// UnknownActor is reported for an op whose actor index did not resolve.
const UnknownActor ActorID = ""

// NewActorID returns a random actor id.
func NewActorID() ActorID {
	u := uuid.New()
	return ActorID(hex.EncodeToString(u[:]))
}

// ParseActorID validates s as an actor id.
func ParseActorID(s string) (ActorID, error) {
	a := ActorID(s)
	if !a.valid() {
		return UnknownActor, fmt.Errorf("%w: %q", ErrInvalidActor, s)
	}
	return a, nil
}

func (a ActorID) valid() bool {
	if len(a) < 2 || len(a) > MaxActorSize || len(a)%2 != 0 {
		return false
	}
	for i := 0; i < len(a); i++ {
		c := a[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}

// IsUnknown reports whether a is the unknown identity.
func (a ActorID) IsUnknown() bool { return a == UnknownActor }

// OpID identifies an operation by its counter and the index of its actor in
// the owning document's actor table.
type OpID struct {
	Counter uint64
	Actor   int
}

// ObjID is the OpID of the operation that created a map object.
type ObjID = OpID

// Root is the document's root map.
var Root = ObjID{}

// IsRoot reports whether id is the root object.
func (id OpID) IsRoot() bool { return id.Counter == 0 }

func (id OpID) String() string {
	if id.IsRoot() {
		return "_root"
	}
	return fmt.Sprintf("%d@%d", id.Counter, id.Actor)
}
