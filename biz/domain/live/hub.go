package live

import (
	"sync"

	"github.com/hertz-contrib/websocket"
)

// wsConn 封装单个连接的并发写, 读仍然单协程
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(obj any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(obj)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// Hub 维护用户在线连接, 用于尽力而为地推送危机通知
// 同一用户重复连接时新连接顶替旧连接
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*wsConn
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*wsConn),
	}
}

// Register 注册一个用户连接
func (h *Hub) Register(userId string, conn *websocket.Conn) {
	wrapped := &wsConn{conn: conn}
	h.mu.Lock()
	old := h.conns[userId]
	h.conns[userId] = wrapped
	h.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
}

// Unregister 移除连接, 只移除仍指向该连接的注册项
func (h *Hub) Unregister(userId string, conn *websocket.Conn) {
	h.mu.Lock()
	if cur, ok := h.conns[userId]; ok && cur.conn == conn {
		delete(h.conns, userId)
	}
	h.mu.Unlock()
}

// Notify 向用户在线通道写入一条通知, 用户不在线不算错误
func (h *Hub) Notify(userId string, payload any) error {
	h.mu.RLock()
	conn, ok := h.conns[userId]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return conn.WriteJSON(payload)
}
