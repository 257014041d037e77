package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boardwalk-dev/boardwalk/internal/middleware"
	"github.com/boardwalk-dev/boardwalk/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBoardID = "6f1c2a4e-8a51-4a3b-9d4e-2f0a1b3c4d5e"

type staticLayouts struct {
	lists []types.ListLayout
}

func (s staticLayouts) Layout(context.Context, string) ([]types.ListLayout, error) {
	return s.lists, nil
}

type ownerOnly struct {
	owner string
}

func (o ownerOnly) Authorize(_ context.Context, _, ownerID string) error {
	if ownerID != o.owner {
		return types.ErrForbidden
	}
	return nil
}

func newHubServer(t *testing.T, hub *Hub, userID string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/ws/:boardId", func(c *gin.Context) {
		c.Set(types.ContextUserKey, middleware.AuthenticatedUser{ID: userID})
	}, hub.WebSocket(ownerOnly{owner: "user-1"}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, boardID string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + boardID
}

func TestHub_PublishesLayout(t *testing.T) {
	layout := []types.ListLayout{{ID: "list-a", Position: 0, TaskIDs: []string{"t1", "t2"}}}
	hub := NewHub(staticLayouts{lists: layout}, nil)
	srv := newHubServer(t, hub, "user-1")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, testBoardID), nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello map[string]string
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "connected", hello["type"])
	assert.Equal(t, testBoardID, hello["boardId"])
	require.Equal(t, 1, hub.Subscribers(testBoardID))

	hub.Publish(context.Background(), testBoardID, "task.moved")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"boardId":"`+testBoardID+`"`)
	assert.Contains(t, string(raw), `"taskIds":["t1","t2"]`)

	var event types.BoardEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "board.updated", event.Type)
	assert.Equal(t, "task.moved", event.Reason)
	assert.Equal(t, layout, event.Lists)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers(testBoardID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsForeignBoard(t *testing.T) {
	hub := NewHub(staticLayouts{}, nil)
	srv := newHubServer(t, hub, "intruder")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, testBoardID), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.Subscribers(testBoardID))
}

func TestHub_ChecksOrigin(t *testing.T) {
	hub := NewHub(staticLayouts{}, []string{"http://allowed.test"})
	srv := newHubServer(t, hub, "user-1")

	header := http.Header{"Origin": []string{"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, testBoardID), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://allowed.test")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, testBoardID), header)
	require.NoError(t, err)
	conn.Close()
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	hub := NewHub(staticLayouts{}, nil)
	s := &subscriber{send: make(chan types.BoardEvent, 1)}
	hub.subscribe(testBoardID, s)

	hub.Broadcast(types.BoardEvent{BoardID: testBoardID})
	assert.Equal(t, 1, hub.Subscribers(testBoardID))

	hub.Broadcast(types.BoardEvent{BoardID: testBoardID})
	assert.Equal(t, 0, hub.Subscribers(testBoardID))

	_, open := <-s.send
	assert.True(t, open)
	_, open = <-s.send
	assert.False(t, open)
}

func TestHub_PublishWithoutSubscribersSkipsLayout(t *testing.T) {
	hub := NewHub(nil, nil)
	assert.NotPanics(t, func() {
		hub.Publish(context.Background(), testBoardID, "board.updated")
	})
}
