package components

import (
	"fmt"
	"sync"
)

// Kind identifies the type of an arena body. Kinds form a tree through
// their parent link so that a matcher can test "is a" without reflection.
type Kind uint16

// Built-in kinds.
const (
	KindNone Kind = iota
	KindObject
	KindAnimat
	KindSensor
)

type kindInfo struct {
	name   string
	parent Kind
}

var (
	kindMu sync.RWMutex
	kinds  = []kindInfo{
		KindNone:   {name: "none", parent: KindNone},
		KindObject: {name: "object", parent: KindNone},
		KindAnimat: {name: "animat", parent: KindObject},
		KindSensor: {name: "sensor", parent: KindObject},
	}
)

// RegisterKind adds a new kind derived from parent and returns its id.
func RegisterKind(name string, parent Kind) Kind {
	kindMu.Lock()
	defer kindMu.Unlock()
	if int(parent) >= len(kinds) {
		panic(fmt.Sprintf("components: unknown parent kind %d for %q", parent, name))
	}
	kinds = append(kinds, kindInfo{name: name, parent: parent})
	return Kind(len(kinds) - 1)
}

// Parent returns the kind k was derived from.
func (k Kind) Parent() Kind {
	kindMu.RLock()
	defer kindMu.RUnlock()
	if int(k) >= len(kinds) {
		return KindNone
	}
	return kinds[k].parent
}

// IsA reports whether k equals ancestor or derives from it.
func (k Kind) IsA(ancestor Kind) bool {
	kindMu.RLock()
	defer kindMu.RUnlock()
	for cur := k; int(cur) < len(kinds); {
		if cur == ancestor {
			return true
		}
		if cur == KindNone {
			return false
		}
		cur = kinds[cur].parent
	}
	return false
}

func (k Kind) String() string {
	kindMu.RLock()
	defer kindMu.RUnlock()
	if int(k) >= len(kinds) {
		return fmt.Sprintf("kind(%d)", k)
	}
	return kinds[k].name
}
