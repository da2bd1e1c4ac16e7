package chat

import "encoding/json"

// 消息类型
const (
	TypeRequestHistory = "request_chat_history"
	TypeHistory        = "chat_history"
	TypeSend           = "send_chat_message"
	TypeMessage        = "chat_message"
	TypeError          = "error"
)

// AuthorTypeWeb 网页端发出的消息
const AuthorTypeWeb = "web"

// Envelope WebSocket消息外层结构
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// SendRequest 客户端发送聊天消息
type SendRequest struct {
	Message    string `json:"message"`
	Token      string `json:"token"`
	AuthorName string `json:"author_name"`
}

// Message 广播给所有客户端的聊天消息
type Message struct {
	Text       string  `json:"text"`
	Image      *string `json:"image"`
	AuthorType string  `json:"author_type,omitempty"`
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}
