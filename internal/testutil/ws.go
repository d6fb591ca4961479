package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// WSEnvelope mirrors the gateway's wire frame without importing it, keeping
// the test client usable from any package.
type WSEnvelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSClient is a websocket test client for gateway integration tests.
type WSClient struct {
	conn *websocket.Conn
	t    *testing.T
}

// NewWSClient dials the given ws:// URL and returns a test client.
//
// Precondition: url must point at a listening gateway.
// Postcondition: Returns a connected WSClient or fails the test.
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() {
		conn.Close(websocket.StatusNormalClosure, "")
	})
	return &WSClient{conn: conn, t: t}
}

// Send writes one event envelope. The payload is marshalled to JSON.
//
// Precondition: payload must marshal cleanly; nil sends an empty payload.
func (c *WSClient) Send(event string, payload any) {
	c.t.Helper()
	env := WSEnvelope{Event: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatalf("marshalling %s payload: %v", event, err)
		}
		env.Payload = raw
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, c.conn, env); err != nil {
		c.t.Fatalf("sending %s: %v", event, err)
	}
}

// Recv reads the next envelope, failing the test on timeout.
func (c *WSClient) Recv(timeout time.Duration) WSEnvelope {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var env WSEnvelope
	if err := wsjson.Read(ctx, c.conn, &env); err != nil {
		c.t.Fatalf("reading envelope: %v", err)
	}
	return env
}

// RecvEvent reads envelopes until one matches the wanted event, failing the
// test if an error envelope or the timeout arrives first.
func (c *WSClient) RecvEvent(event string, timeout time.Duration) WSEnvelope {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			c.t.Fatalf("timed out waiting for %q", event)
		}
		env := c.Recv(remaining)
		if env.Event == event {
			return env
		}
		if env.Event == "error" {
			c.t.Fatalf("waiting for %q, got error envelope: %s", event, env.Payload)
		}
	}
}
