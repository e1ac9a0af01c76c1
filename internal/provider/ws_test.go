package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// pagePair starts a websocket server wrapping each connection in a WS and
// dials it as the wallet page would. It returns the Go-side provider and the
// page-side connection.
func pagePair(t *testing.T) (*WS, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	got := make(chan *WS, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		got <- NewWS(conn, zaptest.NewLogger(t))
	}))
	t.Cleanup(srv.Close)

	page, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { page.Close() })

	select {
	case ws := <-got:
		t.Cleanup(ws.Close)
		return ws, page
	case <-time.After(5 * time.Second):
		t.Fatal("server never accepted the page")
		return nil, nil
	}
}

type pageRequest struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func readRequest(t *testing.T, page *websocket.Conn) pageRequest {
	t.Helper()
	var req pageRequest
	require.NoError(t, page.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, page.ReadJSON(&req))
	return req
}

func requestAsync(ws *WS, method string, params any) <-chan wsResult {
	out := make(chan wsResult, 1)
	go func() {
		res, err := ws.Request(context.Background(), method, params)
		out <- wsResult{result: res, err: err}
	}()
	return out
}

func waitResult(t *testing.T, ch <-chan wsResult) wsResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("request never completed")
		return wsResult{}
	}
}

// ---------------------------------------------------------------------------
// request / response
// ---------------------------------------------------------------------------

func TestWSRequestRoundTrip(t *testing.T) {
	ws, page := pagePair(t)

	res := requestAsync(ws, MethodRequestAccounts, nil)

	req := readRequest(t, page)
	assert.Equal(t, MethodRequestAccounts, req.Method)
	assert.Empty(t, req.Params)

	require.NoError(t, page.WriteJSON(map[string]any{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  []string{"0xabc"},
	}))

	r := waitResult(t, res)
	require.NoError(t, r.err)
	assert.JSONEq(t, `["0xabc"]`, string(r.result))
}

func TestWSRequestSendsParams(t *testing.T) {
	ws, page := pagePair(t)

	res := requestAsync(ws, MethodSwitchEthereumChain, []map[string]string{{"chainId": "0x1"}})

	req := readRequest(t, page)
	assert.Equal(t, MethodSwitchEthereumChain, req.Method)
	assert.JSONEq(t, `[{"chainId":"0x1"}]`, string(req.Params))

	require.NoError(t, page.WriteJSON(map[string]any{"id": req.ID, "result": nil}))
	r := waitResult(t, res)
	require.NoError(t, r.err)
}

func TestWSRequestProviderError(t *testing.T) {
	ws, page := pagePair(t)

	res := requestAsync(ws, MethodRequestAccounts, nil)
	req := readRequest(t, page)
	require.NoError(t, page.WriteJSON(map[string]any{
		"id": req.ID,
		"error": map[string]any{
			"code":    4001,
			"message": "User rejected the request.",
		},
	}))

	r := waitResult(t, res)
	require.Error(t, r.err)
	assert.True(t, IsUserRejected(r.err))
	assert.Equal(t, "User rejected the request.", Message(r.err))
}

func TestWSResponsesMatchedByID(t *testing.T) {
	ws, page := pagePair(t)

	first := requestAsync(ws, MethodGetPermissions, nil)
	reqA := readRequest(t, page)
	second := requestAsync(ws, MethodScanQRCode, nil)
	reqB := readRequest(t, page)
	require.NotEqual(t, reqA.ID, reqB.ID)

	// Answer in reverse order.
	require.NoError(t, page.WriteJSON(map[string]any{"id": reqB.ID, "result": "B:" + reqB.Method}))
	require.NoError(t, page.WriteJSON(map[string]any{"id": reqA.ID, "result": "A:" + reqA.Method}))

	ra := waitResult(t, first)
	rb := waitResult(t, second)
	assert.JSONEq(t, `"A:wallet_getPermissions"`, string(ra.result))
	assert.JSONEq(t, `"B:wallet_scanQRCode"`, string(rb.result))
}

func TestWSRequestContextCancelled(t *testing.T) {
	ws, page := pagePair(t)

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan error, 1)
	go func() {
		_, err := ws.Request(ctx, MethodRequestAccounts, nil)
		out <- err
	}()
	readRequest(t, page)
	cancel()

	select {
	case err := <-out:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("request ignored cancellation")
	}
}

// ---------------------------------------------------------------------------
// notifications
// ---------------------------------------------------------------------------

func TestWSHelloSetsInfo(t *testing.T) {
	ws, page := pagePair(t)

	require.NoError(t, page.WriteJSON(map[string]any{
		"jsonrpc": "2.0",
		"method":  "hello",
		"params":  map[string]any{"installed": true, "isMetaMask": true, "name": "MetaMask"},
	}))

	select {
	case <-ws.Hello():
	case <-time.After(5 * time.Second):
		t.Fatal("hello not processed")
	}
	info := ws.Info()
	assert.True(t, info.Installed)
	assert.True(t, info.IsMetaMask)
	assert.Equal(t, "MetaMask", info.Name)
	assert.True(t, Installed(Detect(ws)))
}

func TestWSWithoutHelloIsAbsent(t *testing.T) {
	ws, _ := pagePair(t)
	assert.False(t, Installed(Detect(ws)))
}

func TestWSEventsReachSubscribers(t *testing.T) {
	ws, page := pagePair(t)

	got := make(chan Event, 1)
	ws.Subscribe(func(ev Event) {
		if ev.Name == EventAccountsChanged {
			got <- ev
		}
	})

	require.NoError(t, page.WriteJSON(map[string]any{
		"method": "event",
		"params": map[string]any{"name": "accountsChanged", "data": []string{"0x1", "0x2"}},
	}))

	select {
	case ev := <-got:
		assert.JSONEq(t, `["0x1","0x2"]`, string(ev.Data))
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestWSPageGoneFailsPendingAndEmitsDisconnect(t *testing.T) {
	ws, page := pagePair(t)

	disconnected := make(chan struct{}, 1)
	ws.Subscribe(func(ev Event) {
		if ev.Name == EventDisconnect {
			disconnected <- struct{}{}
		}
	})

	res := requestAsync(ws, MethodRequestAccounts, nil)
	readRequest(t, page)
	require.NoError(t, page.Close())

	r := waitResult(t, res)
	require.Error(t, r.err)
	var pe *Error
	require.ErrorAs(t, r.err, &pe)
	assert.Equal(t, CodeDisconnected, pe.Code)

	select {
	case <-disconnected:
	case <-time.After(5 * time.Second):
		t.Fatal("no synthetic disconnect event")
	}

	_, err := ws.Request(context.Background(), MethodRequestAccounts, nil)
	assert.ErrorIs(t, err, ErrConnectionLost)
}
