package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type client struct {
	itineraryID uint
	conn        *websocket.Conn
	send        chan []byte
	once        sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub 维护每个行程频道的 websocket 订阅者。
// 发送不阻塞发布方，缓冲区满的客户端会被断开。
type Hub struct {
	mu       sync.RWMutex
	rooms    map[uint]map[*client]struct{}
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewHub 创建订阅中心
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms: map[uint]map[*client]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log.With("component", "hub"),
	}
}

// Subscribe 升级连接并加入行程频道，调用方负责在此之前完成鉴权
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, itineraryID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade websocket: %w", err)
	}

	c := &client{itineraryID: itineraryID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	h.log.Debug("subscriber joined", "room", RoomName(itineraryID))

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// Publish 实现 Notifier
func (h *Hub) Publish(_ context.Context, itineraryID uint, event string, payload any) error {
	msg, err := NewEnvelope(itineraryID, event, payload).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.rooms[itineraryID] {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("subscriber too slow, dropping", "room", RoomName(itineraryID))
		h.unregister(c)
	}
	return nil
}

// Subscribers 当前频道订阅数
func (h *Hub) Subscribers(itineraryID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[itineraryID])
}

// Close 断开所有订阅者
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for c := range room {
			c.close()
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.itineraryID]
	if !ok {
		room = map[*client]struct{}{}
		h.rooms[c.itineraryID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[c.itineraryID]; ok {
		if _, ok := room[c]; ok {
			delete(room, c)
			c.close()
		}
		if len(room) == 0 {
			delete(h.rooms, c.itineraryID)
		}
	}
}

// readPump 只处理控制帧，客户端发送的内容被丢弃
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
