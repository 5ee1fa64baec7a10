package handler

import (
	"context"
	"errors"
	"net/http"

	"CommunityBoard/apps/connect/internal/manager"
	"CommunityBoard/apps/connect/internal/svc"
	"CommunityBoard/pkg/ctxmeta"
	"CommunityBoard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// WebSocket 协议层业务错误码（仅用于 ws 帧内的 error 消息，不是 HTTP 状态码）。
	wsMessageInvalidFormatCode = 10001
	wsMessageUnsupportedCode   = 10002
)

// WSHandler /ws 接入：握手鉴权、协议升级、上行帧处理。
// 下行的通知推送由 svc.EventConsumer 经 ConnectionManager 完成。
type WSHandler struct {
	connManager *manager.ConnectionManager
	connectSvc  *svc.ConnectService
	upgrader    websocket.Upgrader
}

// NewWSHandler 创建 WebSocket 入口处理器。
// allowedOrigins 为空时不校验来源。
func NewWSHandler(connManager *manager.ConnectionManager, connectSvc *svc.ConnectService, allowedOrigins ...string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WSHandler{
		connManager: connManager,
		connectSvc:  connectSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// ServeWS 处理握手：token/device_id 取自 query，鉴权通过后升级协议
func (h *WSHandler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	deviceID := c.Query("device_id")
	clientIP := c.ClientIP()

	session, err := h.connectSvc.Authenticate(c.Request.Context(), token, deviceID, clientIP)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	connCtx := context.Background()
	if traceID := ctxmeta.TraceIDFromGin(c); traceID != "" {
		connCtx = ctxmeta.WithTraceID(connCtx, traceID)
	}
	connCtx = ctxmeta.WithUserUUID(connCtx, session.UserUUID)
	connCtx = ctxmeta.WithDeviceID(connCtx, session.DeviceID)
	connCtx = ctxmeta.WithClientIP(connCtx, session.ClientIP)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(connCtx, "WebSocket 升级失败",
			logger.ErrorField("error", err),
		)
		return
	}

	h.handleConnection(connCtx, conn, session)
}

// handleConnection 单个连接的生命周期，同设备重复连接时新连接替换旧连接
func (h *WSHandler) handleConnection(ctx context.Context, conn *websocket.Conn, session *svc.Session) {
	client := manager.NewClient(conn, session.UserUUID, session.DeviceID)
	replaced, ok := h.connManager.Register(client)
	if !ok {
		client.Close()
		return
	}
	if replaced != nil {
		replaced.Close()
	}

	h.connectSvc.OnConnect(ctx, session)
	logger.Info(ctx, "WebSocket 连接已建立",
		logger.String("user_uuid", session.UserUUID),
		logger.String("device_id", session.DeviceID),
		logger.String("client_ip", session.ClientIP),
		logger.Int("online_count", h.connManager.Count()),
	)

	client.Run(ctx, func(raw []byte) {
		h.handleMessage(ctx, client, session, raw)
	}, func() {
		h.connManager.Unregister(client)
		h.connectSvc.OnDisconnect(ctx, session)
		logger.Info(ctx, "WebSocket 连接已断开",
			logger.String("user_uuid", session.UserUUID),
			logger.String("device_id", session.DeviceID),
			logger.Int("online_count", h.connManager.Count()),
		)
	})
}

// handleMessage 处理客户端上行帧，目前只有心跳
func (h *WSHandler) handleMessage(ctx context.Context, client *manager.Client, session *svc.Session, raw []byte) {
	envelope, err := h.connectSvc.ParseEnvelope(raw)
	if err != nil {
		h.sendErrorFrame(ctx, client, wsMessageInvalidFormatCode, "invalid frame format")
		return
	}

	switch envelope.Type {
	case "heartbeat":
		h.connectSvc.OnHeartbeat(ctx, session)
		ack, marshalErr := h.connectSvc.MarshalEnvelope(svc.EnvelopeHeartbeatAck, nil)
		if marshalErr != nil {
			logger.Warn(ctx, "心跳应答序列化失败",
				logger.ErrorField("error", marshalErr),
			)
			return
		}
		if !client.Enqueue(ack) {
			client.Close()
		}
	default:
		h.sendErrorFrame(ctx, client, wsMessageUnsupportedCode, "unsupported message type")
	}
}

// sendErrorFrame 发送错误帧，写队列不可用时关闭连接
func (h *WSHandler) sendErrorFrame(ctx context.Context, client *manager.Client, code int, message string) {
	payload, err := h.connectSvc.MarshalEnvelope(svc.EnvelopeError, svc.ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		logger.Warn(ctx, "错误帧序列化失败",
			logger.Int("code", code),
			logger.ErrorField("error", err),
		)
		return
	}
	if !client.Enqueue(payload) {
		client.Close()
	}
}

// writeAuthError 握手阶段还是 HTTP，鉴权错误直接返回 JSON
func (h *WSHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, svc.ErrTokenRequired), errors.Is(err, svc.ErrDeviceIDRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": err.Error(),
		})
	case errors.Is(err, svc.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "token invalid or expired",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "internal error",
		})
	}
}
