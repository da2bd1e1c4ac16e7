package chat

import "sync"

// DefaultHistorySize 默认保留的历史消息数
const DefaultHistorySize = 100

// History 最近聊天记录，超出上限时丢弃最旧的消息
type History struct {
	mu    sync.RWMutex
	items []Message
	limit int
}

// NewHistory 创建历史记录
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &History{
		items: make([]Message, 0, limit),
		limit: limit,
	}
}

// Add 追加消息
func (h *History) Add(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) == h.limit {
		copy(h.items, h.items[1:])
		h.items = h.items[:len(h.items)-1]
	}
	h.items = append(h.items, m)
}

// Snapshot 按时间顺序返回副本
func (h *History) Snapshot() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Message, len(h.items))
	copy(out, h.items)
	return out
}

// Len 当前条数
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}
