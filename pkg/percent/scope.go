package percent

import "github.com/coinwatch/topn/pkg/value"

// Scope is the pair of values a directive key is resolved against. Local is
// the current %EACH% element and is nil outside of iteration.
type Scope struct {
	Root  value.Value
	Local value.Value
}

// Resolve looks key up in the local value first, then in the root.
func (s Scope) Resolve(key string) (value.Value, bool) {
	if key == "" {
		return nil, false
	}
	if s.Local != nil {
		if v, ok := s.Local.Member(key); ok {
			return v, true
		}
	}
	if s.Root == nil {
		return nil, false
	}
	return s.Root.Member(key)
}

// with returns a scope bound to a new iteration element.
func (s Scope) with(local value.Value) Scope {
	return Scope{Root: s.Root, Local: local}
}
