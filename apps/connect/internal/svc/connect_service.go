package svc

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	rediskey "CommunityBoard/consts/redisKey"
	"CommunityBoard/pkg/logger"
	"CommunityBoard/pkg/util"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrTokenRequired 握手参数中缺少 token
	ErrTokenRequired = errors.New("token is required")
	// ErrDeviceIDRequired 握手参数中缺少 device_id
	ErrDeviceIDRequired = errors.New("device_id is required")
	// ErrTokenInvalid token 非法、已过期，或与设备不匹配
	ErrTokenInvalid = errors.New("token is invalid")
)

// 下行帧类型
const (
	EnvelopeHeartbeatAck = "heartbeat_ack"
	EnvelopeNotification = "notification"
	EnvelopeError        = "error"
)

// Session 连接鉴权后的身份信息，整个连接生命周期复用
type Session struct {
	UserUUID string
	DeviceID string
	ClientIP string
}

// Envelope WebSocket 消息包。Type 决定 Data 的结构。
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrorData type=error 时的 data
type ErrorData struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ConnectService 连接鉴权、心跳与帧编解码
type ConnectService struct {
	redisClient *redis.Client
}

// NewConnectService 创建服务实例，redisClient 可为 nil
func NewConnectService(redisClient *redis.Client) *ConnectService {
	return &ConnectService{redisClient: redisClient}
}

// Authenticate 校验握手参数：token 必须是 board 签发的有效 JWT，且设备号与 claims 一致。
func (s *ConnectService) Authenticate(ctx context.Context, token, deviceID, clientIP string) (*Session, error) {
	token = strings.TrimSpace(token)
	deviceID = strings.TrimSpace(deviceID)

	if token == "" {
		return nil, ErrTokenRequired
	}
	if deviceID == "" {
		return nil, ErrDeviceIDRequired
	}

	claims, err := util.ParseToken(token)
	if err != nil {
		logger.Debug(ctx, "连接鉴权失败", logger.ErrorField("error", err))
		return nil, ErrTokenInvalid
	}
	if claims.UserUUID == "" || claims.DeviceID != deviceID {
		return nil, ErrTokenInvalid
	}

	return &Session{
		UserUUID: claims.UserUUID,
		DeviceID: claims.DeviceID,
		ClientIP: strings.TrimSpace(clientIP),
	}, nil
}

// OnConnect 连接建立后记录设备活跃时间
func (s *ConnectService) OnConnect(ctx context.Context, session *Session) {
	s.touchActive(ctx, session.UserUUID, session.DeviceID)
}

// OnHeartbeat 收到心跳
func (s *ConnectService) OnHeartbeat(ctx context.Context, session *Session) {
	s.touchActive(ctx, session.UserUUID, session.DeviceID)
}

// OnDisconnect 连接断开时刷新最后活跃时间
func (s *ConnectService) OnDisconnect(ctx context.Context, session *Session) {
	s.touchActive(ctx, session.UserUUID, session.DeviceID)
}

// ParseEnvelope 解析客户端上行帧，type 缺失视为非法
func (s *ConnectService) ParseEnvelope(raw []byte) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}
	envelope.Type = strings.TrimSpace(envelope.Type)
	if envelope.Type == "" {
		return nil, errors.New("type is required")
	}
	return &envelope, nil
}

// MarshalEnvelope 序列化下行帧，data=nil 时省略 data 字段
func (s *ConnectService) MarshalEnvelope(msgType string, data any) ([]byte, error) {
	envelope := map[string]any{
		"type": msgType,
	}
	if data != nil {
		envelope["data"] = data
	}
	return json.Marshal(envelope)
}

// touchActive 写入设备活跃时间 user:devices:active:{user_uuid} -> {device_id: unix秒}，并续期 TTL
func (s *ConnectService) touchActive(ctx context.Context, userUUID, deviceID string) {
	if s.redisClient == nil || userUUID == "" || deviceID == "" {
		return
	}

	key := rediskey.DeviceActiveKey(userUUID)
	pipe := s.redisClient.Pipeline()
	pipe.HSet(ctx, key, deviceID, time.Now().Unix())
	pipe.Expire(ctx, key, rediskey.DeviceActiveTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn(ctx, "更新设备活跃时间失败",
			logger.String("user_uuid", userUUID),
			logger.String("device_id", deviceID),
			logger.ErrorField("error", err),
		)
	}
}
