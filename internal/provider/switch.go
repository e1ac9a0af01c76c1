package provider

import (
	"context"
	"encoding/json"
	"sync"
)

// Switch is a Provider that forwards to whichever wallet page is currently
// attached, or behaves as an absent provider when none is. Subscribers stay
// registered across attach/detach, so a bridge can subscribe once for its
// whole lifetime while pages come and go.
type Switch struct {
	mu      sync.RWMutex
	current Provider
	unsub   func()
	events  Emitter
}

// NewSwitch returns a Switch with nothing attached.
func NewSwitch() *Switch {
	return &Switch{current: NewAbsent(), unsub: func() {}}
}

// Attach makes p the active provider and returns the one it replaced.
func (s *Switch) Attach(p Provider) Provider {
	s.mu.Lock()
	prev := s.current
	s.unsub()
	s.current = p
	s.unsub = p.Subscribe(s.events.Emit)
	s.mu.Unlock()
	return prev
}

// Detach reverts to the absent provider if p is still the active one.
// It reports whether p was detached.
func (s *Switch) Detach(p Provider) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != p {
		return false
	}
	s.unsub()
	s.current = NewAbsent()
	s.unsub = func() {}
	return true
}

// Current returns the active provider.
func (s *Switch) Current() Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Request forwards to the active provider.
func (s *Switch) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return s.Current().Request(ctx, method, params)
}

// Subscribe registers fn for events from any attached provider.
func (s *Switch) Subscribe(fn func(Event)) func() {
	return s.events.Subscribe(fn)
}

// Info describes the active provider.
func (s *Switch) Info() Info {
	switch c := Detect(s.Current()).(type) {
	case Present:
		return c.Info
	default:
		return Info{}
	}
}
