package provider

import (
	"context"
	"encoding/json"
)

// Info is what the wallet page reports about the injected provider.
type Info struct {
	Installed  bool   `json:"installed"`
	IsMetaMask bool   `json:"isMetaMask"`
	Name       string `json:"name,omitempty"`
}

// Capability is the result of provider detection. It is either Present or
// Absent; callers switch on the concrete type.
type Capability interface {
	capability()
}

// Present carries a usable provider.
type Present struct {
	Provider Provider
	Info     Info
}

// Absent records why no provider is usable.
type Absent struct {
	Reason string
}

func (Present) capability() {}
func (Absent) capability()  {}

// Describer is implemented by providers that know what sits behind them.
type Describer interface {
	Info() Info
}

// Detect classifies p. A nil provider, or one that describes itself as not
// installed, is Absent.
func Detect(p Provider) Capability {
	if p == nil {
		return Absent{Reason: "no wallet page attached"}
	}
	if _, ok := p.(absentProvider); ok {
		return Absent{Reason: ErrProviderAbsent.Error()}
	}
	info := Info{Installed: true}
	if d, ok := p.(Describer); ok {
		info = d.Info()
		if !info.Installed {
			return Absent{Reason: ErrProviderAbsent.Error()}
		}
	}
	return Present{Provider: p, Info: info}
}

// Installed reports whether c is Present.
func Installed(c Capability) bool {
	_, ok := c.(Present)
	return ok
}

type absentProvider struct{}

// NewAbsent returns a provider that rejects every request with
// ErrProviderAbsent and never emits events.
func NewAbsent() Provider {
	return absentProvider{}
}

func (absentProvider) Request(context.Context, string, any) (json.RawMessage, error) {
	return nil, ErrProviderAbsent
}

func (absentProvider) Subscribe(func(Event)) func() {
	return func() {}
}
