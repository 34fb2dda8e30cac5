package ipc

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte(`{"type":"ping"}`)))
	require.NoError(t, WriteFrame(&buf, nil))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"ping"}`, string(got))
	got, err = ReadFrame(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadFrameRejectsOversize(t *testing.T) {
	header := []byte{0xff, 0xff, 0xff, 0x7f}
	_, err := ReadFrame(bytes.NewReader(header))
	assert.Error(t, err)
}

func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	// Unix socket paths are length-limited; keep them short.
	dir, err := os.MkdirTemp("", "nav")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(nil)
	srv.Register("echo", func(ctx context.Context, params json.RawMessage) (any, *Error) {
		var in map[string]string
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, Errorf(CodeInvalidRequest, "bad params", nil)
		}
		return in, nil
	})
	srv.Register("fail", func(ctx context.Context, params json.RawMessage) (any, *Error) {
		return nil, Errorf(CodeValidationFailed, "depth limit exceeded", nil)
	})
	events := make(chan []byte, 2)
	events <- []byte(`{"type":"tree_changed"}`)
	close(events)
	srv.RegisterStream("subscribe", func(ctx context.Context, params json.RawMessage) (<-chan []byte, *Error) {
		return events, nil
	})
	require.NoError(t, srv.Start(ctx, path))
	t.Cleanup(func() {
		cancel()
		srv.Stop()
	})
	return srv, path
}

func TestClientServerRoundTrip(t *testing.T) {
	_, path := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, path)
	require.NoError(t, err)
	defer client.Close()

	var out map[string]string
	require.NoError(t, client.Call(ctx, "echo", map[string]string{"name": "Reports"}, &out))
	assert.Equal(t, "Reports", out["name"])

	err = client.Call(ctx, "fail", nil, nil)
	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, CodeValidationFailed, rpcErr.Code)

	err = client.Call(ctx, "missing", nil, nil)
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, CodeInvalidRequest, rpcErr.Code)
}

func TestResponsesCarryUniqueTraceIDs(t *testing.T) {
	_, path := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, path)
	require.NoError(t, err)
	defer client.Close()

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		resp, err := client.roundTrip(ctx, "echo", map[string]string{"name": "Reports"})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(resp.TraceID, "ipc-"), resp.TraceID)
		_, err = uuid.Parse(strings.TrimPrefix(resp.TraceID, "ipc-"))
		require.NoError(t, err)
		assert.False(t, seen[resp.TraceID])
		seen[resp.TraceID] = true
	}
}

func TestSubscribeStreamsEvents(t *testing.T) {
	_, path := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, path)
	require.NoError(t, err)
	defer client.Close()

	events, err := client.Subscribe(ctx, "subscribe", nil)
	require.NoError(t, err)
	select {
	case ev := <-events:
		assert.JSONEq(t, `{"type":"tree_changed"}`, string(ev))
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}
