package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3mask/internal/bridge"
	"github.com/Mohsinsiddi/w3mask/internal/provider"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(id string) string {
	if id == "0x1" {
		return "Ethereum"
	}
	return ""
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

func TestSessionConnected(t *testing.T) {
	s := bridge.State{
		Installed: true, Wallet: "MetaMask", Active: true, ChainID: "0x1",
		Accounts: []string{"0xabc", "0xdef"}, Generation: 3,
	}
	result := Session(s, labels)
	assert.Contains(t, result, "MetaMask")
	assert.Contains(t, result, "connected")
	assert.Contains(t, result, "Ethereum (0x1)")
	assert.Contains(t, result, "0xabc")
	assert.Contains(t, result, "0xdef")
	assert.Contains(t, result, "#3")
}

func TestSessionPairsDisconnected(t *testing.T) {
	pairs := SessionPairs(bridge.State{ChainID: "0x2105"}, labels)
	got := map[string]string{}
	for _, p := range pairs {
		got[p[0]] = p[1]
	}
	assert.Equal(t, "not installed", got["Wallet"])
	assert.Contains(t, got["Status"], "not connected")
	assert.Equal(t, "0x2105", got["Chain"])
	assert.Equal(t, "-", got["Account"])
	assert.NotContains(t, got, "Other accounts")
}

func TestSessionWithoutLabeler(t *testing.T) {
	result := Session(bridge.State{ChainID: "0x1"}, nil)
	assert.Contains(t, result, "0x1")
	assert.NotContains(t, result, "Ethereum")
}

// ---------------------------------------------------------------------------
// Dashboard
// ---------------------------------------------------------------------------

func TestDashboardShowsFetchedState(t *testing.T) {
	fetch := func(context.Context) (bridge.State, error) {
		return bridge.State{Installed: true, Active: true, ChainID: "0x1", Accounts: []string{"0xabc"}}, nil
	}
	m := newDashboardModel(time.Second, time.Second, fetch, labels)
	assert.Contains(t, m.View(), "Waiting for the daemon")

	msg := m.fetchCmd()()
	next, _ := m.Update(msg)
	view := next.View()
	assert.Contains(t, view, "0xabc")
	assert.Contains(t, view, "Ethereum (0x1)")
	assert.NotContains(t, view, "Waiting")
}

func TestDashboardShowsFetchError(t *testing.T) {
	fetch := func(context.Context) (bridge.State, error) {
		return bridge.State{}, provider.ErrProviderAbsent
	}
	m := newDashboardModel(time.Second, time.Second, fetch, nil)
	next, _ := m.Update(m.fetchCmd()())
	assert.Contains(t, next.View(), "wallet provider not installed")
}

func TestDashboardErrorClearsOnSuccess(t *testing.T) {
	m := newDashboardModel(time.Second, time.Second, nil, nil)
	next, _ := m.Update(stateErrorMsg{errors.New("daemon down")})
	require.Contains(t, next.View(), "daemon down")

	next, _ = next.Update(stateFetchedMsg(bridge.State{Installed: true}))
	view := next.View()
	assert.NotContains(t, view, "daemon down")
	assert.Contains(t, view, "w3mask connect")
}

func TestDashboardFetchHonoursTimeout(t *testing.T) {
	fetch := func(ctx context.Context) (bridge.State, error) {
		<-ctx.Done()
		return bridge.State{}, ctx.Err()
	}
	m := newDashboardModel(time.Second, 20*time.Millisecond, fetch, nil)
	msg := m.fetchCmd()()
	em, ok := msg.(stateErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, em.err, context.DeadlineExceeded)
}

func TestDashboardQuit(t *testing.T) {
	m := newDashboardModel(time.Second, time.Second, nil, nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Empty(t, next.View())
}

// ---------------------------------------------------------------------------
// Confirm / Spinner
// ---------------------------------------------------------------------------

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		assert.Equal(t, tt.want, Confirm(strings.NewReader(tt.input), &out, "Send?"), "input %q", tt.input)
		assert.Contains(t, out.String(), "Send?")
	}
}

func TestConfirmDanger(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, ConfirmDanger(strings.NewReader("y\n"), &out, "Broadcast?"))
	assert.Contains(t, out.String(), "⚠")
}

type syncBuffer struct {
	mu  chan struct{}
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu <- struct{}{}
	defer func() { <-b.mu }()
	return b.buf.Write(p)
}

func TestSpinnerStopWithMsg(t *testing.T) {
	out := &syncBuffer{mu: make(chan struct{}, 1)}
	s := NewSpinner(out, "Waiting for the wallet")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.StopWithMsg("done")
	s.Stop()

	assert.Contains(t, out.buf.String(), "Waiting for the wallet")
	assert.True(t, strings.HasSuffix(out.buf.String(), "done\n"))
}

func TestReadSecretFromPipe(t *testing.T) {
	var out bytes.Buffer
	got, err := ReadSecret(strings.NewReader("  0xabc  \n"), &out, "Key:")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", got)
	assert.Contains(t, out.String(), "Key:")

	got, err = ReadSecret(strings.NewReader("no-newline"), &out, "Key:")
	require.NoError(t, err)
	assert.Equal(t, "no-newline", got)

	_, err = ReadSecret(strings.NewReader(""), &out, "Key:")
	assert.Error(t, err)
}
