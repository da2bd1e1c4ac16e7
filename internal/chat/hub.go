package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/mc-community/internal/service"
	"go.uber.org/zap"
)

// Verifier 聊天令牌校验
type Verifier interface {
	VerifyToken(ctx context.Context, token string) (*service.ChatUser, error)
}

// Options 聊天室参数
type Options struct {
	Cooldown        time.Duration
	HistorySize     int
	ReadBufferSize  int
	WriteBufferSize int
	MaxMessageSize  int64
}

// Hub 网页聊天连接管理中心
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 每个连接最后一次发言时间，连接断开时清除
	lastSent   map[string]time.Time
	lastSentMu sync.Mutex

	history  *History
	verifier Verifier
	upgrader websocket.Upgrader
	opts     Options
	now      func() time.Time

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	logger *zap.Logger
}

// NewHub 创建Hub
func NewHub(verifier Verifier, opts Options, logger *zap.Logger) *Hub {
	if opts.Cooldown <= 0 {
		opts.Cooldown = 10 * time.Second
	}
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = 1024
	}
	if opts.WriteBufferSize <= 0 {
		opts.WriteBufferSize = 1024
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 4 * 1024
	}

	return &Hub{
		clients:  make(map[string]*Client),
		lastSent: make(map[string]time.Time),
		history:  NewHistory(opts.HistorySize),
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  opts.ReadBufferSize,
			WriteBufferSize: opts.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		opts:       opts,
		now:        time.Now,
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run 运行Hub，ctx取消后关闭所有连接
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case data := <-h.broadcast:
			h.broadcastMessage(data)
		}
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	h.clientsMu.Lock()
	for id, client := range h.clients {
		close(client.Send)
		delete(h.clients, id)
	}
	h.clientsMu.Unlock()

	h.lastSentMu.Lock()
	clear(h.lastSent)
	h.lastSentMu.Unlock()

	h.logger.Info("聊天室已关闭")
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("聊天客户端连接", zap.String("client_id", client.ID))
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.lastSentMu.Lock()
	delete(h.lastSent, client.ID)
	h.lastSentMu.Unlock()

	h.logger.Info("聊天客户端断开", zap.String("client_id", client.ID))
}

// broadcastMessage 广播消息
func (h *Hub) broadcastMessage(data []byte) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满", zap.String("client_id", client.ID))
		}
	}
}

// sendTo 发送给单个客户端，客户端已注销时返回ErrClientNotFound
func (h *Hub) sendTo(client *Client, data []byte) error {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	if _, ok := h.clients[client.ID]; !ok {
		return ErrClientNotFound
	}
	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Publish 记录并广播一条聊天消息
func (h *Hub) Publish(msg Message) error {
	data, err := encode(TypeMessage, msg, h.now())
	if err != nil {
		return err
	}
	h.history.Add(msg)

	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// History 最近的聊天记录
func (h *Hub) History() []Message {
	return h.history.Snapshot()
}

// OnlineCount 获取在线连接数
func (h *Hub) OnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// allow 检查并记录发言冷却
func (h *Hub) allow(clientID string) bool {
	h.lastSentMu.Lock()
	defer h.lastSentMu.Unlock()

	now := h.now()
	if last, ok := h.lastSent[clientID]; ok && now.Sub(last) < h.opts.Cooldown {
		return false
	}
	h.lastSent[clientID] = now
	return true
}

// ServeWS 升级HTTP连接并接入聊天室
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket升级失败", zap.Error(err))
		return
	}

	client := newClient(h, conn)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func encode(msgType string, payload interface{}, now time.Time) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Envelope{
		Type:      msgType,
		Data:      data,
		Timestamp: now.Unix(),
	})
}
