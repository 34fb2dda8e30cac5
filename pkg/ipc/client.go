package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Client issues requests over a single socket connection. Calls are serialised.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

// Dial connects to the daemon socket at path.
func Dial(ctx context.Context, path string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", path, err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Call sends method with params and decodes the result into out (when non-nil).
// A structured daemon failure is returned as *Error.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.roundTrip(ctx, method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// Subscribe turns the connection into an event stream. The returned channel
// closes when ctx ends or the daemon hangs up; the client is unusable for
// Call afterwards.
func (c *Client) Subscribe(ctx context.Context, method string, params any) (<-chan []byte, error) {
	c.mu.Lock()
	resp, err := c.roundTrip(ctx, method, params)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if resp.Error != nil {
		c.mu.Unlock()
		return nil, resp.Error
	}
	_ = c.conn.SetDeadline(time.Time{})

	out := make(chan []byte, 16)
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()
	go func() {
		defer c.mu.Unlock()
		defer close(out)
		for {
			frame, err := ReadFrame(c.conn)
			if err != nil {
				return
			}
			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *Client) roundTrip(ctx context.Context, method string, params any) (*Response, error) {
	if c == nil || c.conn == nil {
		return nil, errors.New("client not connected")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}
	req := Request{ID: "cli-" + uuid.NewString(), Type: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		req.Params = raw
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := WriteFrame(c.conn, payload); err != nil {
		return nil, err
	}
	respBytes, err := ReadFrame(c.conn)
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
