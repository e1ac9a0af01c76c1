// Package providertest provides a scriptable in-memory wallet provider.
package providertest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Mohsinsiddi/w3mask/internal/provider"
)

// Handler answers one request. The returned value is JSON-encoded.
type Handler func(ctx context.Context, params json.RawMessage) (any, error)

// Call is one recorded request.
type Call struct {
	Method string
	Params json.RawMessage
}

// Fake is a provider.Provider whose answers are set per method by the test.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
	info     provider.Info
	events   provider.Emitter
}

// New returns an installed MetaMask-like fake with no handlers.
func New() *Fake {
	return &Fake{
		handlers: make(map[string]Handler),
		info:     provider.Info{Installed: true, IsMetaMask: true, Name: "fake"},
	}
}

// Handle sets the handler for method.
func (f *Fake) Handle(method string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
	return f
}

// Returns makes method answer with v.
func (f *Fake) Returns(method string, v any) *Fake {
	return f.Handle(method, func(context.Context, json.RawMessage) (any, error) { return v, nil })
}

// Fails makes method answer with err.
func (f *Fake) Fails(method string, err error) *Fake {
	return f.Handle(method, func(context.Context, json.RawMessage) (any, error) { return nil, err })
}

// SetInfo replaces what the fake reports about itself.
func (f *Fake) SetInfo(info provider.Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.info = info
}

// Info implements provider.Describer.
func (f *Fake) Info() provider.Info {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info
}

// Request records the call and runs the method's handler.
func (f *Fake) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: method, Params: raw})
	h, ok := f.handlers[method]
	f.mu.Unlock()

	if !ok {
		return nil, &provider.Error{Code: provider.CodeUnsupported, Message: "the requested method is not supported: " + method}
	}
	v, err := h(ctx, raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Subscribe implements provider.Provider.
func (f *Fake) Subscribe(fn func(provider.Event)) func() {
	return f.events.Subscribe(fn)
}

// Subscribers returns how many subscriptions are live.
func (f *Fake) Subscribers() int {
	return f.events.Len()
}

// Emit sends a notification to every subscriber.
func (f *Fake) Emit(name string, data any) {
	ev := provider.Event{Name: name}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			panic(err)
		}
		ev.Data = raw
	}
	f.events.Emit(ev)
}

// Calls returns a copy of the recorded requests.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// LastCall returns the most recent request for method.
func (f *Fake) LastCall(method string) (Call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Method == method {
			return f.calls[i], true
		}
	}
	return Call{}, false
}

// Gate is a handler that blocks until released, for simulating a wallet
// prompt the user has not answered yet.
type Gate struct {
	Entered chan struct{}
	release chan struct{}
	result  any
	err     error
	once    sync.Once
}

// NewGate returns a gate that answers with result or err once released.
func NewGate(result any, err error) *Gate {
	return &Gate{
		Entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		result:  result,
		err:     err,
	}
}

// Handler returns the blocking handler.
func (g *Gate) Handler() Handler {
	return func(ctx context.Context, _ json.RawMessage) (any, error) {
		select {
		case g.Entered <- struct{}{}:
		default:
		}
		select {
		case <-g.release:
			return g.result, g.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Release lets the pending request answer.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}
