package sensors

import (
	"github.com/pthm-cable/beast/components"
	"github.com/pthm-cable/beast/world"
)

// Matcher decides whether a sensor notices a body. Any func(world.Body) bool
// converts to a Matcher directly.
type Matcher func(world.Body) bool

// KindOf matches bodies whose kind is k or derives from it.
func KindOf(k components.Kind) Matcher {
	return func(b world.Body) bool { return b.Kind().IsA(k) }
}

// Exact matches bodies of kind k only, not its subkinds.
func Exact(k components.Kind) Matcher {
	return func(b world.Body) bool { return b.Kind() == k }
}

// Specific matches one particular body.
func Specific(target world.Body) Matcher {
	t := target.Base()
	return func(b world.Body) bool { return b.Base() == t }
}

// And matches when every matcher does.
func And(ms ...Matcher) Matcher {
	return func(b world.Body) bool {
		for _, m := range ms {
			if !m(b) {
				return false
			}
		}
		return true
	}
}

// Or matches when any matcher does.
func Or(ms ...Matcher) Matcher {
	return func(b world.Body) bool {
		for _, m := range ms {
			if m(b) {
				return true
			}
		}
		return false
	}
}
