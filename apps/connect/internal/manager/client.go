package manager

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultSendQueueSize = 64
	wsWriteTimeout       = 5 * time.Second
	wsPongWait           = 60 * time.Second
	wsPingPeriod         = wsPongWait * 9 / 10
	wsMaxMessageSize     = 4096
)

// MessageHandler 上行消息回调
type MessageHandler func(raw []byte)

// CloseHandler 连接关闭回调，读写循环都退出后调用
type CloseHandler func()

// Client 单条 WebSocket 连接。
// 写操作只在 writeLoop 中进行，其他 goroutine 通过 send 队列投递。
type Client struct {
	conn     *websocket.Conn
	userUUID string
	deviceID string
	send     chan []byte
	done     chan struct{}
	once     sync.Once
}

// NewClient 创建连接包装对象
func NewClient(conn *websocket.Conn, userUUID, deviceID string) *Client {
	return &Client{
		conn:     conn,
		userUUID: userUUID,
		deviceID: deviceID,
		send:     make(chan []byte, defaultSendQueueSize),
		done:     make(chan struct{}),
	}
}

// Key user_uuid:device_id
func (c *Client) Key() string {
	return buildKey(c.userUUID, c.deviceID)
}

func (c *Client) UserUUID() string { return c.userUUID }

func (c *Client) DeviceID() string { return c.deviceID }

// Done 连接关闭信号
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Enqueue 投递下行消息。连接已关闭或队列已满时返回 false，不阻塞调用方。
func (c *Client) Enqueue(msg []byte) bool {
	if len(msg) == 0 {
		return true
	}
	cloned := append([]byte(nil), msg...)
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- cloned:
		return true
	default:
		return false
	}
}

// Run 启动读写循环，阻塞到 readLoop 退出
func (c *Client) Run(ctx context.Context, onMessage MessageHandler, onClose CloseHandler) {
	defer func() {
		c.Close()
		if onClose != nil {
			onClose()
		}
	}()

	go c.writeLoop(ctx)
	c.readLoop(ctx, onMessage)
}

// Close 幂等关闭
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) readLoop(ctx context.Context, onMessage MessageHandler) {
	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		// 任何上行帧都视为存活
		_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))

		if onMessage != nil {
			onMessage(raw)
		}
	}
}

// writeLoop 串行写出 send 队列，并定时发送 ping
func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Close()
			return
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				c.Close()
				return
			}
		}
	}
}
