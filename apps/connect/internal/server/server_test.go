package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CommunityBoard/apps/connect/internal/handler"
	"CommunityBoard/apps/connect/internal/manager"
	"CommunityBoard/apps/connect/internal/svc"
	"CommunityBoard/config"
	"CommunityBoard/pkg/logger"
	"CommunityBoard/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *manager.ConnectionManager, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.ReplaceGlobal(zap.NewNop())
	util.InitJWT(config.JWTConfig{Secret: "ws-test", ExpireTime: time.Hour})
	t.Cleanup(func() { util.InitJWT(config.DefaultJWTConfig()) })

	connManager := manager.NewConnectionManager()
	wsHandler := handler.NewWSHandler(connManager, svc.NewConnectService(nil))
	ts := httptest.NewServer(NewEngine(wsHandler))
	t.Cleanup(func() {
		connManager.Shutdown()
		ts.Close()
	})

	token, err := util.GenerateToken("alice", "dev-1")
	require.NoError(t, err)
	return ts, connManager, token
}

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(raw, &frame))
	return frame
}

func TestWebSocketHandshake(t *testing.T) {
	ts, _, token := newTestServer(t)

	t.Run("missing_token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "device_id=dev-1"), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid_token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "token=bad&device_id=dev-1"), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("heartbeat_ack", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "token="+token+"&device_id=dev-1"), nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"heartbeat"}`)))
		assert.Equal(t, svc.EnvelopeHeartbeatAck, readFrame(t, conn)["type"])

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat"}`)))
		assert.Equal(t, svc.EnvelopeError, readFrame(t, conn)["type"])
	})
}

func TestWebSocketPush(t *testing.T) {
	ts, connManager, token := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "token="+token+"&device_id=dev-1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return connManager.Online("alice") }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, connManager.SendToUser("alice", []byte(`{"type":"notification"}`)))
	assert.Equal(t, svc.EnvelopeNotification, readFrame(t, conn)["type"])
}

func TestHealth(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
