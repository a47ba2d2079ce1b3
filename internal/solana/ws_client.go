package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	ReconnectDelay    time.Duration // initial delay before reconnect attempt
	MaxReconnectDelay time.Duration // cap for reconnect backoff
	PingInterval      time.Duration // interval for ping frames
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	HandshakeTimeout  time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
	}
}

// WSClientImpl implements WSClient using gorilla/websocket.
//
// The client holds at most one active logs subscription. On connection loss
// it reconnects with exponential backoff and resubscribes with the last
// filter; the notification channel stays open across reconnects.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	notifyCh chan LogNotification
	filter   LogsFilter
	subID    atomic.Int64
	// pendingSub receives the subscription ID confirmation for the
	// in-flight logsSubscribe request.
	pendingSub   chan int64
	pendingSubMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClientImpl{
		endpoint: endpoint,
		config:   cfg,
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

// Compile-time interface check.
var _ WSClient = (*WSClientImpl)(nil)

// connect establishes the WebSocket connection.
func (c *WSClientImpl) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: c.config.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// SubscribeLogs subscribes to program logs matching the filter.
func (c *WSClientImpl) SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}
	if c.notifyCh != nil {
		return nil, fmt.Errorf("already subscribed")
	}

	c.filter = filter
	// Large buffer absorbs bursts; the read loop drops on overflow
	// rather than stalling the connection.
	c.notifyCh = make(chan LogNotification, 10000)

	if err := c.sendSubscribe(ctx, filter); err != nil {
		c.notifyCh = nil
		return nil, err
	}

	return c.notifyCh, nil
}

// sendSubscribe sends a logsSubscribe request and waits for confirmation.
func (c *WSClientImpl) sendSubscribe(ctx context.Context, filter LogsFilter) error {
	reqID := c.requestID.Add(1)

	mentionsFilter := make(map[string]interface{})
	if len(filter.Mentions) > 0 {
		mentionsFilter["mentions"] = filter.Mentions
	} else {
		mentionsFilter["all"] = nil
	}

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "logsSubscribe",
		Params: []interface{}{
			mentionsFilter,
			map[string]string{"commitment": "confirmed"},
		},
	}

	confirmCh := make(chan int64, 1)
	c.pendingSubMu.Lock()
	c.pendingSub = confirmCh
	c.pendingSubMu.Unlock()

	c.connMu.Lock()
	if c.conn == nil {
		c.connMu.Unlock()
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	err := c.conn.WriteJSON(req)
	c.connMu.Unlock()
	if err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}

	select {
	case subID := <-confirmCh:
		c.subID.Store(subID)
		return nil
	case <-time.After(30 * time.Second):
		return fmt.Errorf("subscription timeout after 30s")
	case <-c.done:
		return fmt.Errorf("client closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the WebSocket connection and the notification channel.
func (c *WSClientImpl) Close() error {
	if c.closed.Swap(true) {
		return nil // already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()

	if c.notifyCh != nil {
		close(c.notifyCh)
	}
	return nil
}

// readLoop reads messages and dispatches notifications until close.
func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}
			reconnectDelay *= 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay
		c.handleMessage(message)
	}
}

// reconnect re-dials and resubscribes with the stored filter.
func (c *WSClientImpl) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		return // the read loop will trigger another attempt
	}

	if c.notifyCh != nil {
		_ = c.sendSubscribe(ctx, c.filter)
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// wsMessage is the union of subscription confirmations and notifications.
type wsMessage struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Method string          `json:"method"`
	Params *wsNotifyParams `json:"params"`
}

type wsNotifyParams struct {
	Subscription int64          `json:"subscription"`
	Result       wsNotifyResult `json:"result"`
}

type wsNotifyResult struct {
	Context struct {
		Slot int64 `json:"slot"`
	} `json:"context"`
	Value struct {
		Signature string      `json:"signature"`
		Logs      []string    `json:"logs"`
		Err       interface{} `json:"err"`
	} `json:"value"`
}

// handleMessage routes one raw WebSocket message.
func (c *WSClientImpl) handleMessage(message []byte) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	switch {
	case msg.Method == "logsNotification" && msg.Params != nil:
		notif := LogNotification{
			Signature: msg.Params.Result.Value.Signature,
			Slot:      msg.Params.Result.Context.Slot,
			Logs:      msg.Params.Result.Value.Logs,
			Err:       msg.Params.Result.Value.Err,
		}
		if c.notifyCh != nil {
			select {
			case c.notifyCh <- notif:
			default:
				// consumer is stalled; drop rather than block the reader
			}
		}

	case msg.ID != 0 && len(msg.Result) > 0:
		var subID int64
		if err := json.Unmarshal(msg.Result, &subID); err != nil {
			return
		}
		c.pendingSubMu.Lock()
		ch := c.pendingSub
		c.pendingSub = nil
		c.pendingSubMu.Unlock()
		if ch != nil {
			ch <- subID
		}
	}
}
