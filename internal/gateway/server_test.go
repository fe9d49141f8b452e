package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetgate/assetgate/internal/protocol"
	"github.com/assetgate/assetgate/internal/registry"
	"github.com/assetgate/assetgate/internal/schema"
	"github.com/assetgate/assetgate/internal/session"
)

// testFixture bundles a server over a registry with one tool and one
// resource, enough to exercise the whole delivery path.
type testFixture struct {
	reg       *registry.Registry
	transport *session.Transport
	ts        *httptest.Server
}

func newFixture(t *testing.T, handler registry.ToolHandler) *testFixture {
	t.Helper()
	reg := registry.New(nil)
	require.NoError(t, reg.RegisterTool(registry.ToolDefinition{
		Name:        "getAsset",
		Description: "fetch one asset",
		Input: schema.Shape{Fields: []schema.Field{
			{Name: "publicKey", Type: schema.TypeString, Required: true},
		}},
		Handler: handler,
	}))
	require.NoError(t, reg.RegisterResource(registry.ResourceTemplate{
		URI:      "das://docs/overview",
		Name:     "overview",
		MIMEType: "text/plain",
		Fetch: func(_ context.Context, _ string) (string, error) {
			return "the docs", nil
		},
	}))

	transport := session.NewTransport(reg, nil)
	server := New(reg, transport, nil)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return &testFixture{reg: reg, transport: transport, ts: ts}
}

// openStream connects to /sse and decodes "message" events into a
// channel. The returned cancel closes the client side of the stream.
func (f *testFixture) openStream(t *testing.T) (<-chan protocol.Response, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.ts.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan protocol.Response, 16)
	go func() {
		defer resp.Body.Close()
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		currentEvent := ""
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				currentEvent = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				if currentEvent != "message" {
					continue
				}
				var pushed protocol.Response
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &pushed); err == nil {
					events <- pushed
				}
			}
		}
	}()

	// Establishment happens after the endpoint event is written; wait
	// until the transport reports the session as connected.
	require.Eventually(t, func() bool {
		return f.transport.State() == session.StateConnected
	}, 2*time.Second, 10*time.Millisecond, "session never connected")

	return events, cancel
}

func (f *testFixture) postMessage(t *testing.T, req protocol.Request) (*http.Response, protocol.Ack) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(f.ts.URL+"/messages", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var ack protocol.Ack
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	return resp, ack
}

func awaitPush(t *testing.T, events <-chan protocol.Response) protocol.Response {
	t.Helper()
	select {
	case resp, ok := <-events:
		require.True(t, ok, "stream closed before a response arrived")
		return resp
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a pushed response")
		return protocol.Response{}
	}
}

func TestGateway_EndToEnd_ToolCallIsPushedBack(t *testing.T) {
	fixture := newFixture(t, func(_ context.Context, args map[string]any) (any, error) {
		return map[string]any{"id": args["publicKey"], "interface": "V1_NFT"}, nil
	})

	events, cancel := fixture.openStream(t)
	defer cancel()

	httpResp, ack := fixture.postMessage(t, protocol.Request{
		RequestID: "1",
		Method:    "tool:getAsset",
		Params:    json.RawMessage(`{"publicKey":"So11111111111111111111111111111111111111112"}`),
	})
	assert.Equal(t, http.StatusAccepted, httpResp.StatusCode)
	assert.Equal(t, protocol.AckAccepted, ack.Status)

	pushed := awaitPush(t, events)
	assert.Equal(t, "1", pushed.RequestID)
	require.Nil(t, pushed.Error)

	var result map[string]any
	require.NoError(t, json.Unmarshal(pushed.Result, &result))
	assert.Equal(t, "So11111111111111111111111111111111111111112", result["id"])
}

func TestGateway_EndToEnd_BackendFailureIsPushedAsError(t *testing.T) {
	fixture := newFixture(t, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("rpc node unreachable")
	})

	events, cancel := fixture.openStream(t)
	defer cancel()

	_, ack := fixture.postMessage(t, protocol.Request{
		RequestID: "2",
		Method:    "tool:getAsset",
		Params:    json.RawMessage(`{"publicKey":"abc"}`),
	})
	assert.Equal(t, protocol.AckAccepted, ack.Status)

	pushed := awaitPush(t, events)
	assert.Equal(t, "2", pushed.RequestID)
	require.NotNil(t, pushed.Error)
	assert.Contains(t, pushed.Error.Message, "rpc node unreachable")
}

func TestGateway_NoActiveSession_AcknowledgesWithoutPush(t *testing.T) {
	fixture := newFixture(t, func(_ context.Context, _ map[string]any) (any, error) {
		t.Error("handler must not run without a session")
		return nil, nil
	})

	httpResp, ack := fixture.postMessage(t, protocol.Request{
		RequestID: "1",
		Method:    "tool:getAsset",
		Params:    json.RawMessage(`{"publicKey":"abc"}`),
	})
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)
	assert.Equal(t, protocol.AckNoActiveSession, ack.Status)
	assert.Equal(t, "1", ack.RequestID)
}

func TestGateway_SessionTakeover_SecondStreamReceivesPushes(t *testing.T) {
	fixture := newFixture(t, func(_ context.Context, _ map[string]any) (any, error) {
		return "ok", nil
	})

	eventsA, cancelA := fixture.openStream(t)
	defer cancelA()
	eventsB, cancelB := fixture.openStream(t)
	defer cancelB()

	// The takeover closes stream A server-side.
	select {
	case _, open := <-eventsA:
		assert.False(t, open, "stream A should be closed by the takeover")
	case <-time.After(3 * time.Second):
		t.Fatal("stream A was not closed after the takeover")
	}

	_, ack := fixture.postMessage(t, protocol.Request{
		RequestID: "3",
		Method:    "tool:getAsset",
		Params:    json.RawMessage(`{"publicKey":"abc"}`),
	})
	assert.Equal(t, protocol.AckAccepted, ack.Status)

	pushed := awaitPush(t, eventsB)
	assert.Equal(t, "3", pushed.RequestID)
}

func TestGateway_ResourceMethod_PushesContent(t *testing.T) {
	fixture := newFixture(t, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, nil
	})

	events, cancel := fixture.openStream(t)
	defer cancel()

	_, ack := fixture.postMessage(t, protocol.Request{
		RequestID: "4",
		Method:    "resource:das://docs/overview",
	})
	assert.Equal(t, protocol.AckAccepted, ack.Status)

	pushed := awaitPush(t, events)
	require.Nil(t, pushed.Error)
	var content registry.ResourceContent
	require.NoError(t, json.Unmarshal(pushed.Result, &content))
	assert.Equal(t, "the docs", content.Text)
}

func TestGateway_MalformedBody_IsRejected(t *testing.T) {
	fixture := newFixture(t, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, nil
	})

	resp, err := http.Post(fixture.ts.URL+"/messages", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(fixture.ts.URL+"/messages", "application/json", strings.NewReader(`{"method":"tool:x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "requestId is required")
}

func TestGateway_ToolListing_DescribesCatalog(t *testing.T) {
	fixture := newFixture(t, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, nil
	})

	resp, err := http.Get(fixture.ts.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Len(t, listing.Tools, 1)
	assert.Equal(t, "getAsset", listing.Tools[0].Name)
	assert.Equal(t, "object", listing.Tools[0].InputSchema["type"])
}

func TestGateway_Health_ReportsSessionState(t *testing.T) {
	fixture := newFixture(t, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, nil
	})

	resp, err := http.Get(fixture.ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, session.StateIdle, health["session"])
}
