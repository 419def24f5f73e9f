package notifiers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daniacca/nextreaction/internal/nrm"
)

// outboundBuffer is the per-client queue depth. A trajectory can emit
// thousands of events in a burst; a client that falls this far behind is
// disconnected rather than allowed to stall the run.
const outboundBuffer = 256

const writeDeadline = 10 * time.Second

// wsClient is one connected viewer. Each client owns a writer goroutine
// draining its send queue, so a broken or slow connection only ever
// affects itself.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WebSocketNotifier streams jump events to connected WebSocket clients.
// Delivery is per-run in-order: the manager may redeliver an event after a
// transient failure, so the notifier tracks the highest sequence number
// broadcast per run and drops anything at or below it.
type WebSocketNotifier struct {
	id       string
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	lastSeq map[string]int
	closed  bool
}

// NewWebSocketNotifier creates the notifier. No background machinery is
// started until a client connects.
func NewWebSocketNotifier(id string) *WebSocketNotifier {
	return &WebSocketNotifier{
		id:      id,
		clients: make(map[*wsClient]struct{}),
		lastSeq: make(map[string]int),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ID returns the notifier ID.
func (wsn *WebSocketNotifier) ID() string {
	return wsn.id
}

// Type returns the notifier type.
func (wsn *WebSocketNotifier) Type() string {
	return "websocket"
}

// RegisterClient adopts an upgraded connection and starts its writer.
func (wsn *WebSocketNotifier) RegisterClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	client := &wsClient{conn: conn, send: make(chan []byte, outboundBuffer)}

	wsn.mu.Lock()
	if wsn.closed {
		wsn.mu.Unlock()
		conn.Close()
		return
	}
	wsn.clients[client] = struct{}{}
	wsn.mu.Unlock()

	go wsn.writeLoop(client)
}

// UnregisterClient disconnects the client owning conn, if still present.
func (wsn *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	wsn.mu.Lock()
	for client := range wsn.clients {
		if client.conn == conn {
			wsn.dropLocked(client)
			break
		}
	}
	wsn.mu.Unlock()
}

// Notify fans the event out to every connected client. Stale or duplicate
// events (sequence at or below what this run already broadcast) are
// acknowledged without sending, so manager retries cannot replay history
// to viewers.
func (wsn *WebSocketNotifier) Notify(ctx context.Context, event nrm.JumpEvent) error {
	payload, err := event.JSON()
	if err != nil {
		return fmt.Errorf("websocket %s: encode event: %w", wsn.id, err)
	}

	wsn.mu.Lock()
	if wsn.closed {
		wsn.mu.Unlock()
		return fmt.Errorf("websocket %s: notifier closed", wsn.id)
	}
	if event.Seq <= wsn.lastSeq[event.RunID] {
		wsn.mu.Unlock()
		return nil
	}
	wsn.lastSeq[event.RunID] = event.Seq

	for client := range wsn.clients {
		select {
		case client.send <- payload:
		default:
			// Queue full: the client cannot keep up with the run.
			wsn.dropLocked(client)
		}
	}
	wsn.mu.Unlock()
	return nil
}

// writeLoop drains one client's queue. A write error or a closed send
// channel ends the connection; nothing else is affected.
func (wsn *WebSocketNotifier) writeLoop(client *wsClient) {
	for payload := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			wsn.mu.Lock()
			wsn.dropLocked(client)
			wsn.mu.Unlock()
			return
		}
	}
}

// dropLocked removes a client and tears down its connection and writer.
// Callers hold wsn.mu. Safe to call twice for the same client.
func (wsn *WebSocketNotifier) dropLocked(client *wsClient) {
	if _, ok := wsn.clients[client]; !ok {
		return
	}
	delete(wsn.clients, client)
	close(client.send)
	client.conn.Close()
}

// Close disconnects every client and rejects further use.
func (wsn *WebSocketNotifier) Close() error {
	wsn.mu.Lock()
	defer wsn.mu.Unlock()
	if wsn.closed {
		return nil
	}
	wsn.closed = true
	for client := range wsn.clients {
		wsn.dropLocked(client)
	}
	return nil
}

// Upgrader returns the WebSocket upgrader for HTTP handlers.
func (wsn *WebSocketNotifier) Upgrader() websocket.Upgrader {
	return wsn.upgrader
}
