package feedclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"MacroTilt/internal/domain/models"
	"MacroTilt/pkg/logger"
)

// Client subscribes to the live signal feed of a running server.
type Client struct {
	baseURL      string
	tickers      []string
	pingInterval time.Duration
	log          *logger.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a feed client for baseURL (http(s) or ws(s) scheme, no path).
func New(baseURL string, tickers []string, pingInterval time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:      baseURL,
		tickers:      tickers,
		pingInterval: pingInterval,
		log:          log,
	}
}

// FeedURL builds the websocket URL for the given tickers.
func FeedURL(base string, tickers []string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse feed url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws", "":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported feed scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/signals"
	u.RawQuery = url.Values{"tickers": {strings.Join(tickers, ",")}}.Encode()
	return u.String(), nil
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u, err := FeedURL(c.baseURL, c.tickers)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.log.Info("feed connected", logger.String("url", u))
	return nil
}

// Read streams feed messages until ctx ends or the server closes the connection.
// The error channel receives at most one error and is closed with the message channel.
func (c *Client) Read(ctx context.Context) (<-chan models.FeedMessage, <-chan error) {
	msgs := make(chan models.FeedMessage, 64)
	errs := make(chan error, 1)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		errs <- fmt.Errorf("feed not connected")
		close(msgs)
		close(errs)
		return msgs, errs
	}

	// ping loop
	if c.pingInterval > 0 {
		go func() {
			ticker := time.NewTicker(c.pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
						return
					}
				}
			}
		}()
	}

	// unblock ReadMessage when ctx ends
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	// read loop
	go func() {
		defer close(msgs)
		defer close(errs)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					errs <- fmt.Errorf("feed read: %w", err)
				}
				return
			}
			var m models.FeedMessage
			if err := json.Unmarshal(b, &m); err != nil {
				c.log.Debug("feed frame ignored", logger.Error(err))
				continue
			}
			select {
			case msgs <- m:
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgs, errs
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
