package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/frstrtr/mongotron/internal/session"
)

const (
	defaultRequestTimeout   = 10 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
)

// Options configures the subscription API client.
type Options struct {
	// APIBase is the HTTP base URL, e.g. http://localhost:8080.
	APIBase string
	// WSBase is the WebSocket base URL. Derived from APIBase when empty.
	WSBase string
	// RequestTimeout bounds each subscription CRUD call.
	RequestTimeout time.Duration
	// HandshakeTimeout bounds the WebSocket dial.
	HandshakeTimeout time.Duration
}

// Client talks to the upstream subscription+streaming API. It performs no
// retries and no reconnects; failures surface to the owning session.
type Client struct {
	apiBase string
	wsBase  string
	http    *http.Client
	dialer  *websocket.Dialer
	logger  *zap.Logger
}

// createRequest is the subscription creation payload. StartBlock -1 asks
// the server to start from the latest block.
type createRequest struct {
	Address    string                 `json:"address"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
	StartBlock int64                  `json:"startBlock"`
}

type createResponse struct {
	SubscriptionID string `json:"subscriptionId"`
	ID             string `json:"id"`
}

func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.APIBase == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	apiBase := strings.TrimRight(opts.APIBase, "/")
	wsBase := strings.TrimRight(opts.WSBase, "/")
	if wsBase == "" {
		derived, err := deriveWSBase(apiBase)
		if err != nil {
			return nil, err
		}
		wsBase = derived
	}

	requestTimeout := opts.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	handshakeTimeout := opts.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}

	return &Client{
		apiBase: apiBase,
		wsBase:  wsBase,
		http:    &http.Client{Timeout: requestTimeout},
		dialer:  &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		logger:  logger,
	}, nil
}

// CreateSubscription registers a subscription for the address and returns
// the server-assigned id. Both 200 and 201 are success; the id is accepted
// under either the subscriptionId or id key.
func (c *Client) CreateSubscription(ctx context.Context, address string, filters map[string]interface{}) (string, error) {
	payload, err := json.Marshal(createRequest{
		Address:    address,
		Filters:    filters,
		StartBlock: -1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/api/v1/subscriptions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create subscription: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create subscription: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	subID := created.SubscriptionID
	if subID == "" {
		subID = created.ID
	}
	if subID == "" {
		return "", fmt.Errorf("no subscription id in response")
	}

	c.logger.Debug("subscription created",
		zap.String("address", address),
		zap.String("subscription_id", subID),
		zap.String("request_id", requestID),
	)
	return subID, nil
}

// DeleteSubscription removes a subscription server-side.
func (c *Client) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	target := fmt.Sprintf("%s/api/v1/subscriptions/%s", c.apiBase, url.PathEscape(subscriptionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete subscription: status %d", resp.StatusCode)
	}
	return nil
}

// Stream opens the persistent event stream for a subscription id.
func (c *Client) Stream(ctx context.Context, subscriptionID string) (session.MessageStream, error) {
	target := fmt.Sprintf("%s/api/v1/events/stream/%s", c.wsBase, url.PathEscape(subscriptionID))

	conn, resp, err := c.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &wsStream{conn: conn}, nil
}

// wsStream adapts a websocket connection to the session MessageStream.
type wsStream struct {
	conn *websocket.Conn
}

// Next blocks until the next text frame. Any read error, including one
// caused by Close, terminates the stream.
func (s *wsStream) Next() ([]byte, error) {
	_, frame, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return frame, nil
}

func (s *wsStream) Close() error {
	// best-effort close handshake before dropping the connection
	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return s.conn.Close()
}

// deriveWSBase maps an http(s) base URL onto its ws(s) counterpart.
func deriveWSBase(apiBase string) (string, error) {
	parsed, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("parse api base: %w", err)
	}
	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme: %s", parsed.Scheme)
	}
	return parsed.String(), nil
}
