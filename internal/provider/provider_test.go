package provider_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Mohsinsiddi/w3mask/internal/provider"
	"github.com/Mohsinsiddi/w3mask/internal/provider/providertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	installed := providertest.New()
	notInstalled := providertest.New()
	notInstalled.SetInfo(provider.Info{Installed: false})

	tests := []struct {
		name    string
		p       provider.Provider
		present bool
	}{
		{"nil provider", nil, false},
		{"absent provider", provider.NewAbsent(), false},
		{"describer not installed", notInstalled, false},
		{"installed wallet", installed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := provider.Detect(tt.p)
			assert.Equal(t, tt.present, provider.Installed(c))
			switch c := c.(type) {
			case provider.Present:
				assert.Same(t, tt.p, c.Provider)
			case provider.Absent:
				assert.NotEmpty(t, c.Reason)
			default:
				t.Fatalf("unexpected capability %T", c)
			}
		})
	}
}

func TestDetectReportsInfo(t *testing.T) {
	p := providertest.New()
	p.SetInfo(provider.Info{Installed: true, IsMetaMask: true, Name: "MetaMask"})

	c, ok := provider.Detect(p).(provider.Present)
	require.True(t, ok)
	assert.True(t, c.Info.IsMetaMask)
	assert.Equal(t, "MetaMask", c.Info.Name)
}

func TestDetectAcceptsOtherWallets(t *testing.T) {
	p := providertest.New()
	p.SetInfo(provider.Info{Installed: true, IsMetaMask: false, Name: "Rabby"})

	c, ok := provider.Detect(p).(provider.Present)
	require.True(t, ok, "any injected EIP-1193 wallet counts as installed")
	assert.False(t, c.Info.IsMetaMask)
	assert.Equal(t, "Rabby", c.Info.Name)
}

func TestAbsentRejectsEverything(t *testing.T) {
	p := provider.NewAbsent()
	for _, m := range []string{
		provider.MethodRequestAccounts,
		provider.MethodSendTransaction,
		provider.MethodWatchAsset,
	} {
		_, err := p.Request(context.Background(), m, nil)
		assert.ErrorIs(t, err, provider.ErrProviderAbsent, m)
	}
	// Subscribing is harmless.
	p.Subscribe(func(provider.Event) { t.Fatal("absent provider emitted") })()
}

func TestErrorHelpers(t *testing.T) {
	rejected := &provider.Error{Code: provider.CodeUserRejected, Message: "User rejected the request."}
	wrapped := fmt.Errorf("connect: %w", rejected)

	assert.True(t, provider.IsUserRejected(rejected))
	assert.True(t, provider.IsUserRejected(wrapped))
	assert.False(t, provider.IsUserRejected(errors.New("boom")))
	assert.False(t, provider.IsUserRejected(&provider.Error{Code: provider.CodeInternal}))

	assert.Equal(t, "User rejected the request.", provider.Message(wrapped))
	assert.Equal(t, "boom", provider.Message(errors.New("boom")))
	assert.Equal(t, "provider error 4001: User rejected the request.", rejected.Error())
}

func TestEmitterSubscribeUnsubscribe(t *testing.T) {
	var e provider.Emitter
	var got []string

	unsub := e.Subscribe(func(ev provider.Event) { got = append(got, ev.Name) })
	assert.Equal(t, 1, e.Len())

	e.Emit(provider.Event{Name: "connect"})
	unsub()
	unsub() // second call is a no-op
	e.Emit(provider.Event{Name: "disconnect"})

	assert.Equal(t, []string{"connect"}, got)
	assert.Equal(t, 0, e.Len())
}

// ---------------------------------------------------------------------------
// Switch
// ---------------------------------------------------------------------------

func TestSwitchStartsAbsent(t *testing.T) {
	s := provider.NewSwitch()
	assert.False(t, provider.Installed(provider.Detect(s)))

	_, err := s.Request(context.Background(), provider.MethodRequestAccounts, nil)
	assert.ErrorIs(t, err, provider.ErrProviderAbsent)
}

func TestSwitchForwardsToAttached(t *testing.T) {
	s := provider.NewSwitch()
	fake := providertest.New().Returns(provider.MethodRequestAccounts, []string{"0xabc"})

	s.Attach(fake)
	assert.True(t, provider.Installed(provider.Detect(s)))

	raw, err := s.Request(context.Background(), provider.MethodRequestAccounts, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `["0xabc"]`, string(raw))
}

func TestSwitchKeepsSubscribersAcrossPages(t *testing.T) {
	s := provider.NewSwitch()
	var got []string
	s.Subscribe(func(ev provider.Event) { got = append(got, ev.Name) })

	first := providertest.New()
	second := providertest.New()

	s.Attach(first)
	first.Emit(provider.EventConnect, map[string]string{"chainId": "0x1"})

	prev := s.Attach(second)
	assert.Same(t, first, prev)
	first.Emit(provider.EventAccountsChanged, []string{}) // detached: ignored
	second.Emit(provider.EventDisconnect, nil)

	assert.Equal(t, []string{provider.EventConnect, provider.EventDisconnect}, got)
	assert.Equal(t, 0, first.Subscribers())
	assert.Equal(t, 1, second.Subscribers())
}

func TestSwitchDetachOnlyCurrent(t *testing.T) {
	s := provider.NewSwitch()
	first := providertest.New()
	second := providertest.New()

	s.Attach(first)
	s.Attach(second)
	assert.False(t, s.Detach(first))
	assert.Same(t, second, s.Current())

	assert.True(t, s.Detach(second))
	assert.False(t, provider.Installed(provider.Detect(s)))
}
