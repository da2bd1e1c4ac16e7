package chat

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/mc-community/internal/errors"
	"go.uber.org/zap"
)

// 错误定义
var (
	ErrClientNotFound = stderrors.New("客户端未找到")
	ErrSendBufferFull = stderrors.New("发送缓冲区已满")
	ErrHubClosed      = stderrors.New("聊天室已关闭")
)

// WebSocket配置
const (
	// 写超时
	writeWait = 10 * time.Second

	// 读取pong超时
	pongWait = 60 * time.Second

	// ping发送周期（必须小于pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 令牌校验超时
	verifyTimeout = 5 * time.Second
)

// Client 聊天客户端
type Client struct {
	ID   string
	hub  *Hub
	conn *websocket.Conn
	Send chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New().String(),
		hub:  hub,
		conn: conn,
		Send: make(chan []byte, 64),
	}
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump 写入消息，每条消息单独一帧
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub关闭了通道
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Client) handleMessage(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		c.sendError(errors.New(errors.ErrMessageFormat))
		return
	}

	switch env.Type {
	case TypeRequestHistory:
		c.send(TypeHistory, c.hub.History())

	case TypeSend:
		c.handleSend(env.Data)

	default:
		c.hub.logger.Debug("收到不支持的消息类型",
			zap.String("client_id", c.ID),
			zap.String("type", env.Type))
		c.sendError(errors.New(errors.ErrMessageFormat, "不支持的消息类型: "+env.Type))
	}
}

// handleSend 校验令牌和冷却后广播消息。
// 普通用户以令牌对应的Discord名发言，管理员令牌可自定义署名。
func (c *Client) handleSend(raw json.RawMessage) {
	var req SendRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.sendError(errors.New(errors.ErrMessageFormat))
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" || req.Token == "" {
		c.sendError(errors.New(errors.ErrInvalidParam, "消息或令牌为空"))
		return
	}

	if !c.hub.allow(c.ID) {
		c.hub.logger.Info("发言冷却中", zap.String("client_id", c.ID))
		c.sendError(errors.New(errors.ErrRateLimitExceeded))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	user, err := c.hub.verifier.VerifyToken(ctx, req.Token)
	if err != nil {
		c.hub.logger.Warn("聊天令牌校验失败", zap.String("client_id", c.ID), zap.Error(err))
		c.sendError(errors.Wrap(err, errors.ErrChatTokenInvalid))
		return
	}

	name := user.Name
	if user.Admin {
		name = strings.TrimSpace(req.AuthorName)
		if name == "" {
			name = AuthorTypeWeb
		}
	}

	text := fmt.Sprintf("<%s> %s", name, req.Message)
	if err := c.hub.Publish(Message{Text: text, AuthorType: AuthorTypeWeb}); err != nil {
		c.hub.logger.Warn("广播聊天消息失败", zap.Error(err))
		return
	}
	c.hub.logger.Info("网页聊天消息",
		zap.String("author", name),
		zap.String("discord_id", user.ID))
}

func (c *Client) send(msgType string, payload interface{}) {
	data, err := encode(msgType, payload, c.hub.now())
	if err != nil {
		c.hub.logger.Error("序列化消息失败", zap.Error(err))
		return
	}
	if err := c.hub.sendTo(c, data); err != nil {
		c.hub.logger.Debug("发送消息失败", zap.String("client_id", c.ID), zap.Error(err))
	}
}

// sendError 发送错误消息
func (c *Client) sendError(err *errors.AppError) {
	c.send(TypeError, &ErrorPayload{
		Code:  int(err.Code),
		Error: err.Message,
	})
}
