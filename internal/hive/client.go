package hive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const defaultNode = "https://api.hive.blog"

// rpcTimeout bounds a single request/response exchange on either transport.
const rpcTimeout = 30 * time.Second

// Client is a minimal Hive JSON-RPC 2.0 client. Nodes are reachable over
// HTTPS or over WebSocket; the URL scheme picks the transport. The WebSocket
// connection is kept open across calls and re-dialed after an error.
type Client struct {
	node       string
	httpClient *http.Client
	reqID      atomic.Int64

	mu sync.Mutex
	ws *websocket.Conn
}

// NewClient creates a client for the given API node. An empty node defaults
// to https://api.hive.blog.
func NewClient(node string) *Client {
	if node == "" {
		node = defaultNode
	}
	return &Client{
		node: node,
		httpClient: &http.Client{
			Timeout: rpcTimeout,
		},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	ID     int64           `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call invokes a JSON-RPC method and returns the raw result.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.reqID.Add(1),
	}

	var (
		resp *rpcResponse
		err  error
	)
	if strings.HasPrefix(c.node, "ws://") || strings.HasPrefix(c.node, "wss://") {
		resp, err = c.callWebsocket(ctx, req)
	} else {
		resp, err = c.callHTTP(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// Broadcast submits a single signed operation to the node. The signing and
// broadcast mechanics are one opaque call from the caller's point of view; a
// nil error means the node accepted the transaction.
func (c *Client) Broadcast(ctx context.Context, operation string, body any) error {
	params := map[string]any{
		"trx": map[string]any{
			"operations": []any{[]any{operation, body}},
		},
	}
	if _, err := c.Call(ctx, "network_broadcast_api.broadcast_transaction", params); err != nil {
		return fmt.Errorf("broadcast %s: %w", operation, err)
	}
	return nil
}

func (c *Client) callHTTP(ctx context.Context, req rpcRequest) (*rpcResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.node, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "hive-checkin-bot/1.0")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp rpcResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, nil
}

func (c *Client) callWebsocket(ctx context.Context, req rpcRequest) (*rpcResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// WriteJSON/ReadJSON do not watch ctx once the connection is up, so the
	// exchange is bounded by connection deadlines instead. A silent node then
	// fails the call rather than wedging the poll loop.
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(rpcTimeout)
	}

	if c.ws == nil {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.node, nil)
		if err != nil {
			return nil, fmt.Errorf("dial node: %w", err)
		}
		c.ws = conn
	}

	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		c.resetWebsocket()
		return nil, fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.ws.WriteJSON(req); err != nil {
		c.resetWebsocket()
		return nil, fmt.Errorf("write request: %w", err)
	}

	if err := c.ws.SetReadDeadline(deadline); err != nil {
		c.resetWebsocket()
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	var resp rpcResponse
	if err := c.ws.ReadJSON(&resp); err != nil {
		c.resetWebsocket()
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &resp, nil
}

// resetWebsocket drops the connection so the next call re-dials. Callers must
// hold mu.
func (c *Client) resetWebsocket() {
	if c.ws != nil {
		c.ws.Close()
		c.ws = nil
	}
}

// Close releases the WebSocket connection if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetWebsocket()
	return nil
}
