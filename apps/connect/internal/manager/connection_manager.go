package manager

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var onlineConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "connect",
	Name:      "online_connections",
	Help:      "当前在线 WebSocket 连接数",
})

// ConnectionManager 在线连接索引。
// byKey 按 user_uuid:device_id 精确定位，byUser 按用户扇出。
type ConnectionManager struct {
	mu       sync.RWMutex
	byKey    map[string]*Client
	byUser   map[string]map[string]*Client
	shutdown bool
}

// NewConnectionManager 创建连接管理器
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		byKey:  make(map[string]*Client),
		byUser: make(map[string]map[string]*Client),
	}
}

// Register 注册连接，返回被替换掉的同设备旧连接（由调用方关闭）。
// 已 Shutdown 时返回 false，调用方应直接关闭新连接。
func (m *ConnectionManager) Register(client *Client) (replaced *Client, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return nil, false
	}

	key := client.Key()
	if old, exists := m.byKey[key]; exists && old != client {
		replaced = old
	}

	m.byKey[key] = client
	devices, exists := m.byUser[client.UserUUID()]
	if !exists {
		devices = make(map[string]*Client)
		m.byUser[client.UserUUID()] = devices
	}
	devices[client.DeviceID()] = client
	onlineConnections.Set(float64(len(m.byKey)))
	return replaced, true
}

// Unregister 注销连接。只删除与入参相同的实例，避免误删替换后的新连接。
func (m *ConnectionManager) Unregister(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := client.Key()
	if current, ok := m.byKey[key]; !ok || current != client {
		return
	}

	delete(m.byKey, key)
	if devices, ok := m.byUser[client.UserUUID()]; ok {
		delete(devices, client.DeviceID())
		if len(devices) == 0 {
			delete(m.byUser, client.UserUUID())
		}
	}
	onlineConnections.Set(float64(len(m.byKey)))
}

// SendToUser 向用户所有在线设备推送，返回成功入队的设备数
func (m *ConnectionManager) SendToUser(userUUID string, msg []byte) int {
	m.mu.RLock()
	devices := m.byUser[userUUID]
	clients := make([]*Client, 0, len(devices))
	for _, client := range devices {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		if client.Enqueue(msg) {
			sent++
		}
	}
	return sent
}

// Online 用户是否有在线设备
func (m *ConnectionManager) Online(userUUID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byUser[userUUID]) > 0
}

// Count 在线连接数
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byKey)
}

// Shutdown 关闭全部连接并拒绝后续注册
func (m *ConnectionManager) Shutdown() {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return
	}
	m.shutdown = true

	clients := make([]*Client, 0, len(m.byKey))
	for _, client := range m.byKey {
		clients = append(clients, client)
	}
	m.byKey = make(map[string]*Client)
	m.byUser = make(map[string]map[string]*Client)
	onlineConnections.Set(0)
	m.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}

func buildKey(userUUID, deviceID string) string {
	return userUUID + ":" + deviceID
}
