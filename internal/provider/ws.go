package provider

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

const (
	// Message limit for the receiving side.
	wsReadLimit = 1024 * 1024

	// Disconnection timeout.
	wsPongLimit = 60 * time.Second

	// Ping period for connection liveness check.
	wsPingPeriod = wsPongLimit / 2

	// Write deadline.
	wsWriteLimit = wsPingPeriod / 2
)

// Notification methods sent by the wallet page.
const (
	notifyHello = "hello"
	notifyEvent = "event"
)

// ErrConnectionLost is returned for requests made after the page went away.
var ErrConnectionLost = &Error{Code: CodeDisconnected, Message: "wallet page disconnected"}

type wsRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// wsMessage is anything the page can send: a response to one of our
// requests (ID set) or a notification (Method set, no ID).
type wsMessage struct {
	ID     *uint64         `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

type wsResult struct {
	result json.RawMessage
	err    error
}

// WS is a Provider backed by a wallet page connected over a websocket. The
// page relays each request to its injected provider and pushes the
// provider's notifications back.
type WS struct {
	conn   *websocket.Conn
	log    *zap.Logger
	nextID atomic.Uint64

	pending  *xsync.Map[uint64, chan wsResult]
	requests chan *wsRequest
	events   Emitter

	infoMu    sync.RWMutex
	info      Info
	hello     chan struct{}
	helloOnce sync.Once

	shutdown  chan struct{}
	closeOnce sync.Once
	done      chan struct{} // reader stopped
	finished  chan struct{} // pending requests failed and disconnect emitted
}

// NewWS wraps an established websocket connection and starts its reader and
// writer goroutines.
func NewWS(conn *websocket.Conn, log *zap.Logger) *WS {
	if log == nil {
		log = zap.NewNop()
	}
	w := &WS{
		conn:     conn,
		log:      log,
		pending:  xsync.NewMap[uint64, chan wsResult](),
		requests: make(chan *wsRequest),
		hello:    make(chan struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go w.reader()
	go w.writer()
	return w
}

// Info returns what the page reported in its hello message.
func (w *WS) Info() Info {
	w.infoMu.RLock()
	defer w.infoMu.RUnlock()
	return w.info
}

// Hello is closed once the page has described its provider.
func (w *WS) Hello() <-chan struct{} {
	return w.hello
}

// Done is closed when the connection is gone and its disconnect event has
// been delivered.
func (w *WS) Done() <-chan struct{} {
	return w.finished
}

// Close tears the connection down. In-flight requests fail with
// ErrConnectionLost.
func (w *WS) Close() {
	w.closeOnce.Do(func() { close(w.shutdown) })
	<-w.finished
}

// Subscribe registers fn for wallet notifications.
func (w *WS) Subscribe(fn func(Event)) func() {
	return w.events.Subscribe(fn)
}

// Request relays one call to the page and waits for its answer.
func (w *WS) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := &wsRequest{JSONRPC: "2.0", ID: w.nextID.Add(1), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		req.Params = raw
	}

	ch := make(chan wsResult, 1)
	w.pending.Store(req.ID, ch)
	defer w.pending.Delete(req.ID)

	select {
	case <-w.done:
		return nil, ErrConnectionLost
	case <-ctx.Done():
		return nil, ctx.Err()
	case w.requests <- req:
	}

	select {
	case <-w.done:
		// The reader delivers before it closes done.
		select {
		case res := <-ch:
			return res.result, res.err
		default:
			return nil, ErrConnectionLost
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.result, res.err
	}
}

func (w *WS) reader() {
	w.conn.SetReadLimit(wsReadLimit)
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(wsPongLimit))
	})
	for {
		var msg wsMessage
		w.conn.SetReadDeadline(time.Now().Add(wsPongLimit)) //nolint:errcheck
		if err := w.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				w.log.Debug("wallet page read failed", zap.Error(err))
			}
			break
		}
		switch {
		case msg.ID != nil:
			w.deliver(*msg.ID, msg)
		case msg.Method == notifyHello:
			w.handleHello(msg.Params)
		case msg.Method == notifyEvent:
			var ev Event
			if err := json.Unmarshal(msg.Params, &ev); err != nil || ev.Name == "" {
				w.log.Warn("malformed wallet event", zap.ByteString("params", msg.Params))
				continue
			}
			w.log.Debug("wallet event", zap.String("name", ev.Name), zap.ByteString("data", ev.Data))
			w.events.Emit(ev)
		default:
			w.log.Warn("unexpected message from wallet page", zap.String("method", msg.Method))
		}
	}
	close(w.done)

	w.pending.Range(func(id uint64, ch chan wsResult) bool {
		select {
		case ch <- wsResult{err: ErrConnectionLost}:
		default:
		}
		return true
	})
	w.events.Emit(Event{Name: EventDisconnect})
	close(w.finished)
}

func (w *WS) deliver(id uint64, msg wsMessage) {
	ch, ok := w.pending.LoadAndDelete(id)
	if !ok {
		w.log.Warn("response for unknown request", zap.Uint64("id", id))
		return
	}
	res := wsResult{result: msg.Result}
	if msg.Error != nil {
		res = wsResult{err: msg.Error}
	}
	ch <- res
}

func (w *WS) handleHello(params json.RawMessage) {
	var info Info
	if err := json.Unmarshal(params, &info); err != nil {
		w.log.Warn("malformed hello", zap.Error(err))
		return
	}
	w.infoMu.Lock()
	w.info = info
	w.infoMu.Unlock()
	w.log.Info("wallet page attached",
		zap.Bool("installed", info.Installed),
		zap.Bool("metamask", info.IsMetaMask),
		zap.String("name", info.Name),
	)
	w.helloOnce.Do(func() { close(w.hello) })
}

func (w *WS) writer() {
	pingTicker := time.NewTicker(wsPingPeriod)
	defer w.conn.Close()
	defer pingTicker.Stop()
	for {
		select {
		case <-w.shutdown:
			w.conn.SetWriteDeadline(time.Now().Add(wsWriteLimit)) //nolint:errcheck
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			w.conn.WriteMessage(websocket.CloseMessage, msg) //nolint:errcheck
			return
		case <-w.done:
			return
		case req := <-w.requests:
			w.conn.SetWriteDeadline(time.Now().Add(wsWriteLimit)) //nolint:errcheck
			if err := w.conn.WriteJSON(req); err != nil {
				w.log.Debug("wallet page write failed", zap.Error(err))
				return
			}
		case <-pingTicker.C:
			w.conn.SetWriteDeadline(time.Now().Add(wsWriteLimit)) //nolint:errcheck
			if err := w.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}
